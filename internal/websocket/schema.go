package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionFaceReport Action = "face_report"
	ActionVisibility Action = "visibility"
	ActionFullscreen Action = "fullscreen"
	ActionKey        Action = "key"
	ActionPing       Action = "ping"
)

// RequestPayload carries every proctor event the display layer can report.
// Action selects which fields are meaningful.
type RequestPayload struct {
	Action Action `json:"action"`

	// face_report
	Detected bool `json:"detected,omitempty"`

	// visibility
	Hidden bool `json:"hidden,omitempty"`

	// fullscreen
	Active bool `json:"active,omitempty"`

	// key
	Key  string `json:"key,omitempty"`
	Ctrl bool   `json:"ctrl,omitempty"`
	Alt  bool   `json:"alt,omitempty"`
	Meta bool   `json:"meta,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventNotification Event = "notification"
	EventCommand      Event = "command"
	EventKeyDecision  Event = "key_decision"
	EventError        Event = "error"
	EventPong         Event = "pong"
)

// NotificationEvent mirrors the toast surface: title, message, severity.
type NotificationEvent struct {
	Event    Event  `json:"event"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Command names a display-layer action requested by the server.
type Command string

const (
	CommandEnterFullscreen Command = "enter_fullscreen"
	CommandExitFullscreen  Command = "exit_fullscreen"
	CommandReleaseCamera   Command = "release_camera"
)

// CommandEvent asks the display layer to perform a platform action.
type CommandEvent struct {
	Event   Event   `json:"event"`
	Command Command `json:"command"`
}

// KeyDecisionEvent answers a key action with the suppression verdict.
type KeyDecisionEvent struct {
	Event      Event `json:"event"`
	Suppressed bool  `json:"suppressed"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
