// Package notify defines the fire-and-forget notification surface the core
// uses for warnings, gating progress and termination notices. The display
// layer renders these as toasts; the core never waits on delivery.
package notify

import "github.com/rs/zerolog"

// Severity classifies a notification for the display layer.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Notifier receives (title, message, severity) events. Implementations must
// not block; delivery is best-effort.
type Notifier interface {
	Notify(title, message string, severity Severity)
}

// Log is a Notifier that writes notifications to the structured log. Used as
// a fallback when no display client is attached, and composed into Multi in
// normal operation so every notice leaves an audit trail.
type Log struct {
	log zerolog.Logger
}

// NewLog creates a log-backed notifier.
func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "notifier").Logger()}
}

// Notify implements Notifier.
func (l *Log) Notify(title, message string, severity Severity) {
	evt := l.log.Info()
	switch severity {
	case SeverityWarning:
		evt = l.log.Warn()
	case SeverityCritical:
		evt = l.log.Error()
	}
	evt.Str("title", title).Str("severity", string(severity)).Msg(message)
}

// Multi fans a notification out to every wrapped notifier.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(title, message string, severity Severity) {
	for _, n := range m {
		n.Notify(title, message, severity)
	}
}
