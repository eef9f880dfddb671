package client

import (
	"context"
	"fmt"

	"github.com/donaldgifford/ticket-watcher/internal/api/handlers"
)

// Status returns the run description and state of the watcher.
func (c *Client) Status(ctx context.Context) (*handlers.StatusBody, error) {
	var body handlers.StatusBody
	if err := c.get(ctx, "/status", &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// Healthz checks that the status server answers its liveness probe.
func (c *Client) Healthz(ctx context.Context) error {
	var body handlers.StatusResponse
	if err := c.get(ctx, "/healthz", &body); err != nil {
		return err
	}
	if body.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", body.Status)
	}
	return nil
}
