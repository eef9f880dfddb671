package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging the payload. It is used when
// no notification backend is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that only logs.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Send logs and discards the payload.
func (n *NoOpNotifier) Send(_ context.Context, p *Payload) error {
	n.log.Info("notification not delivered (no backend configured)",
		"kind", p.Kind,
		"title", p.Title,
		"url", p.URL,
	)
	return nil
}
