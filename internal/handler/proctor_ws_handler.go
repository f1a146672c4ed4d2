package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/teamcollar/stem-assessment/internal/monitor"
	"github.com/teamcollar/stem-assessment/internal/sensor"
	ws "github.com/teamcollar/stem-assessment/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) gorilla.Upgrader {
	return gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ProctorWSHandler streams proctoring traffic: sensor reports, visibility
// and fullscreen transitions, and key events inbound; notifications and
// display commands outbound through the Hub.
type ProctorWSHandler struct {
	hub      *Hub
	mon      *monitor.Monitor
	remote   *sensor.Remote
	log      zerolog.Logger
	upgrader gorilla.Upgrader
}

// NewProctorWSHandler creates a new ProctorWSHandler.
func NewProctorWSHandler(hub *Hub, mon *monitor.Monitor, remote *sensor.Remote, log zerolog.Logger, allowedOrigins []string) *ProctorWSHandler {
	return &ProctorWSHandler{
		hub:      hub,
		mon:      mon,
		remote:   remote,
		log:      log.With().Str("component", "proctor_ws").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/assessment/stream
// Upgrades to WebSocket for real-time proctor events and notifications.
func (h *ProctorWSHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.hub.add(conn)
	h.remote.Attach()
	defer func() {
		h.hub.remove(conn)
		if h.hub.ClientCount() == 0 {
			h.remote.Detach()
		}
	}()

	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("Display client connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseGoingAway, gorilla.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				h.log.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionFaceReport:
			h.remote.Report(msg.Detected)
		case ws.ActionVisibility:
			h.mon.ReportVisibility(msg.Hidden)
		case ws.ActionFullscreen:
			h.mon.ReportFullscreen(msg.Active)
		case ws.ActionKey:
			suppressed := h.mon.InterceptKey(msg.Key, msg.Ctrl, msg.Alt, msg.Meta)
			_ = ws.WriteTyped(conn, ws.KeyDecisionEvent{Event: ws.EventKeyDecision, Suppressed: suppressed})
		case ws.ActionPing:
			_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			h.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}
