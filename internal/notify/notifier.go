// Package notify defines the notification interface and implementations
// for delivering watch results.
package notify

import (
	"context"
	"time"
)

// Kind classifies a payload.
type Kind string

// Payload kinds.
const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
	KindTest    Kind = "test"
)

// Payload is one outbound notification. Body is Markdown; backends that
// support rich text render it, the others send it as is.
type Payload struct {
	Kind      Kind
	Title     string
	Body      string
	URL       string
	URLTitle  string
	Timestamp time.Time
	ImageURL  string

	// Delivery parameters, honoured by backends that support them.
	Sound    string
	Priority int
	Expire   int // seconds
	Retry    int // seconds
}

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Send(ctx context.Context, p *Payload) error
}
