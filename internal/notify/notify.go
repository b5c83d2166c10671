// Package notify sends desktop notifications.
package notify

import (
	"io"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier sends a desktop notification when enabled. Failures are logged,
// never returned: a missing notification daemon must not fail a run.
type Notifier struct {
	enabled bool
	send    func(title, message string) error
	logger  *slog.Logger
}

func New(enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{
		enabled: enabled,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		logger: logger,
	}
}

func (n *Notifier) Send(title, message string) {
	if !n.enabled {
		return
	}
	if err := n.send(title, message); err != nil {
		n.logger.Warn("desktop notification failed", "error", err)
	}
}
