package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/ticket-watcher/internal/metrics"
	"github.com/donaldgifford/ticket-watcher/internal/vue"
	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

const (
	defaultInterval        = 10 * time.Second
	defaultPerformancesURL = "https://www.vuecinemas.nl/performances.json"

	tracerName = "github.com/donaldgifford/ticket-watcher/internal/watcher"
)

// Phase is the state of a run.
type Phase int

// Run phases. Succeeded and Failed are terminal.
const (
	PhaseIdle Phase = iota
	PhasePolling
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePolling:
		return "polling"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhasePolling, PhaseSucceeded, PhaseFailed} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Terminal reports whether p ends the run.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// RunState is a snapshot of a run.
type RunState struct {
	Phase        Phase     `json:"phase"`
	PollInFlight bool      `json:"poll_in_flight"`
	Terminated   bool      `json:"terminated"`
	Attempts     int       `json:"attempts"`
	LastPollAt   time.Time `json:"last_poll_at,omitzero"`
}

// Result is the terminal outcome of a run.
type Result struct {
	Phase       Phase
	Movie       *domain.Movie
	Performance *domain.Performance
	Attempts    int
	// Err is the error that failed the run.
	Err error
}

// ExitCode maps the result to a process exit code.
func (r *Result) ExitCode() int {
	if r.Phase == PhaseSucceeded {
		return 0
	}
	return 1
}

// ResultDispatcher receives the terminal result of a run.
type ResultDispatcher interface {
	Dispatch(ctx context.Context, res *Result) error
}

// Loop polls the catalog until a performance qualifies or a fetch fails.
type Loop struct {
	catalog    vue.Catalog
	dispatcher ResultDispatcher
	target     domain.WatchTarget
	log        *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time

	interval          time.Duration
	performancesURL   string
	notifyOnInvisible bool

	mu    sync.Mutex
	state RunState
	movie *domain.Movie
	perf  *domain.Performance
	err   error
	done  chan struct{}
}

// LoopOption configures the Loop.
type LoopOption func(*Loop)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.interval = d
	}
}

// WithNotifyOnInvisible sets EvaluateOptions.NotifyOnInvisible for every poll.
func WithNotifyOnInvisible(v bool) LoopOption {
	return func(l *Loop) {
		l.notifyOnInvisible = v
	}
}

// WithClock sets the clock used to build the performances query.
func WithClock(now func() time.Time) LoopOption {
	return func(l *Loop) {
		l.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.log = log
	}
}

// WithTracer sets the tracer used for poll and dispatch spans.
func WithTracer(t trace.Tracer) LoopOption {
	return func(l *Loop) {
		l.tracer = t
	}
}

// WithPerformancesURL sets the base URL of the performances endpoint.
func WithPerformancesURL(u string) LoopOption {
	return func(l *Loop) {
		l.performancesURL = u
	}
}

// NewLoop creates a Loop for target. d receives the terminal result.
func NewLoop(
	c vue.Catalog,
	d ResultDispatcher,
	target domain.WatchTarget,
	opts ...LoopOption,
) *Loop {
	l := &Loop{
		catalog:         c,
		dispatcher:      d,
		target:          target,
		log:             slog.Default(),
		tracer:          otel.Tracer(tracerName),
		now:             time.Now,
		interval:        defaultInterval,
		performancesURL: defaultPerformancesURL,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Status returns a snapshot of the run state.
func (l *Loop) Status() RunState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Run fetches the movie, polls until the run reaches a terminal phase, and
// dispatches the result once. It returns ctx.Err() without dispatching if
// ctx is canceled first.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	l.log.Info("getting movie details", "movie_id", l.target.MovieID)

	movie, err := l.catalog.Movie(ctx, l.target.MovieID)
	if err == nil && (movie == nil || !movie.ID.IsSet()) {
		err = vue.ErrMissingMovieID
	}

	switch {
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		l.log.Error("could not retrieve movie details, make sure the movie id is correct",
			"movie_id", l.target.MovieID,
			"error", err,
		)
		l.finish(PhaseFailed, nil, fmt.Errorf("startup: %w", err))
	default:
		l.mu.Lock()
		l.movie = movie
		l.mu.Unlock()
		l.log.Info("movie details retrieved", "title", movie.Title)

		if err := l.poll(ctx); err != nil {
			return nil, err
		}
	}

	return l.dispatch(ctx)
}

// poll runs one immediate tick, then ticks on the interval until the run
// ends or ctx is canceled.
func (l *Loop) poll(ctx context.Context) error {
	l.Tick(ctx)
	if l.Status().Terminated {
		return nil
	}

	sched, err := NewScheduler(l.interval, func() { l.Tick(ctx) }, l.log)
	if err != nil {
		return fmt.Errorf("scheduling polls: %w", err)
	}
	sched.Start()
	defer func() {
		<-sched.Stop().Done()
	}()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		if l.Status().Terminated {
			return nil
		}
		l.log.Info("watch canceled", "attempts", l.Status().Attempts)
		return ctx.Err()
	}
}

func (l *Loop) dispatch(ctx context.Context) (*Result, error) {
	res := l.result()

	if l.dispatcher == nil {
		return res, nil
	}

	// Delivery outlives a cancel that arrives after the run ended.
	ctx, span := l.tracer.Start(context.WithoutCancel(ctx), "watcher.dispatch",
		trace.WithAttributes(attribute.String("phase", res.Phase.String())))
	defer span.End()

	if err := l.dispatcher.Dispatch(ctx, res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
	}

	l.log.Info("exiting", "phase", res.Phase, "attempts", res.Attempts)
	return res, nil
}

// Tick runs one fetch and evaluate cycle. It does nothing if the run has
// ended or another cycle is in flight.
func (l *Loop) Tick(ctx context.Context) {
	if !l.begin() {
		metrics.PollsSkippedTotal.Inc()
		return
	}

	ctx, span := l.tracer.Start(ctx, "watcher.poll")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.PollDuration.Observe(time.Since(start).Seconds())
	}()

	l.log.Info("checking status...")

	perfs, err := l.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			l.log.Debug("poll interrupted", "error", err)
			l.settle(PhaseIdle, false)
			return
		}

		l.log.Error("could not fetch performances", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		metrics.PollsTotal.WithLabelValues(metrics.PollError).Inc()
		l.finish(PhaseFailed, nil, err)
		return
	}

	metrics.PerformancesSeenTotal.Add(float64(len(perfs)))

	out := Evaluate(perfs, EvaluateOptions{NotifyOnInvisible: l.notifyOnInvisible})
	l.report(&out)

	span.SetAttributes(
		attribute.Int("performances", len(perfs)),
		attribute.Bool("qualified", out.IsQualified()),
	)

	if out.IsQualified() {
		l.log.Info("ticket availability: available!",
			"performance_id", out.Qualified.ID.String(),
			"start", out.Qualified.Start,
		)
		metrics.PollsTotal.WithLabelValues(metrics.PollQualified).Inc()
		l.finish(PhaseSucceeded, out.Qualified, nil)
		return
	}

	metrics.PollsTotal.WithLabelValues(metrics.PollNone).Inc()
	attempts := l.settle(PhaseIdle, true)
	l.log.Info("ticket availability: not available", "attempts", attempts)
}

func (l *Loop) fetch(ctx context.Context) ([]domain.Performance, error) {
	u, err := vue.BuildPerformancesURL(l.performancesURL, l.target, l.now())
	if err != nil {
		return nil, err
	}
	l.log.Debug("fetching performances", "url", u)
	return l.catalog.Performances(ctx, u)
}

func (l *Loop) report(out *Outcome) {
	for _, id := range out.Anomalies {
		l.log.Warn("could not find start or end date in performance", "performance_id", id)
	}
	metrics.AnomaliesTotal.Add(float64(len(out.Anomalies)))

	for _, id := range out.Invisible {
		l.log.Info("invisible performance rejected the cycle", "performance_id", id)
	}
	metrics.InvisibleRejectedTotal.Add(float64(len(out.Invisible)))
}

// begin claims the poll slot. It returns false if the run has ended or a
// poll is already in flight.
func (l *Loop) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.Terminated || l.state.PollInFlight {
		return false
	}
	l.state.PollInFlight = true
	l.setPhase(PhasePolling)
	return true
}

// settle releases the poll slot without ending the run and returns the
// attempt count.
func (l *Loop) settle(phase Phase, attempted bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.PollInFlight = false
	l.state.LastPollAt = l.now()
	if attempted {
		l.state.Attempts++
	}
	l.setPhase(phase)
	return l.state.Attempts
}

// finish moves the run to a terminal phase. Only the first call has effect.
func (l *Loop) finish(phase Phase, perf *domain.Performance, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.Terminated {
		return
	}

	l.state.PollInFlight = false
	l.state.Terminated = true
	l.state.LastPollAt = l.now()
	l.perf = perf
	l.err = err
	l.setPhase(phase)
	close(l.done)
}

// setPhase must be called with mu held.
func (l *Loop) setPhase(p Phase) {
	l.state.Phase = p
	metrics.RunPhase.Set(float64(p))
}

func (l *Loop) result() *Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &Result{
		Phase:       l.state.Phase,
		Movie:       l.movie,
		Performance: l.perf,
		Attempts:    l.state.Attempts,
		Err:         l.err,
	}
}
