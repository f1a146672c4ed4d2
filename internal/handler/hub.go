package handler

import (
	"context"
	"errors"
	"sync"

	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/teamcollar/stem-assessment/internal/notify"
	ws "github.com/teamcollar/stem-assessment/internal/websocket"
)

// ErrNoClient is returned when a display command has no connected client to
// deliver to.
var ErrNoClient = errors.New("no display client connected")

// Hub tracks connected proctor WebSocket clients and fans server events out
// to them. It implements notify.Notifier and the monitor's Display
// interface: notifications become toast events, exclusive-mode control
// becomes fullscreen commands.
type Hub struct {
	mu    sync.Mutex
	conns map[*gorilla.Conn]struct{}
	log   zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		conns: make(map[*gorilla.Conn]struct{}),
		log:   log.With().Str("component", "ws_hub").Logger(),
	}
}

func (h *Hub) add(conn *gorilla.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) remove(conn *gorilla.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// ClientCount returns the number of connected display clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// broadcast writes an event to every connected client, dropping clients
// whose writes fail.
func (h *Hub) broadcast(v interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.conns) == 0 {
		return ErrNoClient
	}
	for conn := range h.conns {
		if err := ws.WriteTyped(conn, v); err != nil {
			h.log.Debug().Err(err).Msg("Dropping unwritable client")
			conn.Close()
			delete(h.conns, conn)
		}
	}
	return nil
}

// Notify implements notify.Notifier. Fire-and-forget: delivery failures are
// logged, never propagated.
func (h *Hub) Notify(title, message string, severity notify.Severity) {
	err := h.broadcast(ws.NotificationEvent{
		Event:    ws.EventNotification,
		Title:    title,
		Message:  message,
		Severity: string(severity),
	})
	if err != nil && !errors.Is(err, ErrNoClient) {
		h.log.Warn().Err(err).Str("title", title).Msg("Notification delivery failed")
	}
}

// EnterExclusive implements the monitor's Display interface by commanding
// the display layer into fullscreen.
func (h *Hub) EnterExclusive(ctx context.Context) error {
	return h.broadcast(ws.CommandEvent{Event: ws.EventCommand, Command: ws.CommandEnterFullscreen})
}

// ExitExclusive commands the display layer out of fullscreen. Best-effort.
func (h *Hub) ExitExclusive() {
	_ = h.broadcast(ws.CommandEvent{Event: ws.EventCommand, Command: ws.CommandExitFullscreen})
}

// ReleaseCamera commands the display layer to stop the capture device.
func (h *Hub) ReleaseCamera() {
	_ = h.broadcast(ws.CommandEvent{Event: ws.EventCommand, Command: ws.CommandReleaseCamera})
}
