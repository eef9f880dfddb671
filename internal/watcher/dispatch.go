package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/ticket-watcher/internal/metrics"
	"github.com/donaldgifford/ticket-watcher/internal/notify"
)

// ErrAlreadyDispatched is returned by every Dispatch call after the first.
var ErrAlreadyDispatched = errors.New("result already dispatched")

// Dispatcher sends the single notification of a run.
type Dispatcher struct {
	notifier notify.Notifier
	cfg      PayloadConfig
	log      *slog.Logger
	now      func() time.Time

	once sync.Once
}

// DispatcherOption configures the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets a custom logger.
func WithDispatchLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// WithDispatchClock sets the clock used for payload timestamps.
func WithDispatchClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// NewDispatcher creates a Dispatcher that delivers through n.
func NewDispatcher(n notify.Notifier, cfg PayloadConfig, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		cfg:      cfg,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends the success or failure notification for res. Only the
// first call sends; a failed delivery is logged and returned but never
// retried.
func (d *Dispatcher) Dispatch(ctx context.Context, res *Result) error {
	err := ErrAlreadyDispatched
	d.once.Do(func() {
		err = d.send(ctx, res)
	})
	return err
}

func (d *Dispatcher) send(ctx context.Context, res *Result) error {
	var p notify.Payload
	if res.Phase == PhaseSucceeded && res.Movie != nil && res.Performance != nil {
		p = BuildSuccessPayload(&d.cfg, res.Movie, res.Performance, d.now())
	} else {
		p = BuildFailurePayload(&d.cfg, d.now())
	}

	if err := d.notifier.Send(ctx, &p); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		if p.Kind == notify.KindFailure {
			d.log.Error("run failed and the failure notification could not be sent", "error", err)
		} else {
			d.log.Error("could not send notification", "error", err)
		}
		return err
	}

	metrics.NotificationsSentTotal.WithLabelValues(string(p.Kind)).Inc()
	d.log.Info("notification sent", "kind", p.Kind, "title", p.Title)
	return nil
}
