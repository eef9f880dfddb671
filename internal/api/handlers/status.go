package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/ticket-watcher/internal/watcher"
	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

// StateProvider exposes the state of the running watch.
type StateProvider interface {
	Status() watcher.RunState
}

// RunInfo is the static description of a watch run.
type RunInfo struct {
	RunID     string        `json:"run_id"`
	Version   string        `json:"version"`
	MovieID   int           `json:"movie_id"`
	CinemaIDs []int         `json:"cinema_ids"`
	Interval  time.Duration `json:"-"`
	StartedAt time.Time     `json:"started_at"`
}

// StatusBody is the response for GET /status.
type StatusBody struct {
	RunInfo
	Interval string           `json:"interval"`
	Uptime   string           `json:"uptime"`
	State    watcher.RunState `json:"state"`
}

// StatusHandler serves the read-only run status.
type StatusHandler struct {
	state StateProvider
	info  RunInfo
	now   func() time.Time
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(state StateProvider, info RunInfo) *StatusHandler {
	return &StatusHandler{state: state, info: info, now: time.Now}
}

// NewRunInfo builds the RunInfo of a run watching target.
func NewRunInfo(runID, version string, target domain.WatchTarget, interval time.Duration, startedAt time.Time) RunInfo {
	return RunInfo{
		RunID:     runID,
		Version:   version,
		MovieID:   target.MovieID,
		CinemaIDs: target.CinemaIDs,
		Interval:  interval,
		StartedAt: startedAt,
	}
}

// Status returns the run description and a snapshot of its state.
func (h *StatusHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusBody{
		RunInfo:  h.info,
		Interval: h.info.Interval.String(),
		Uptime:   h.now().Sub(h.info.StartedAt).Round(time.Second).String(),
		State:    h.state.Status(),
	})
}
