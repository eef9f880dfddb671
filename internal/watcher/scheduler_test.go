package watcher

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewScheduler_RegistersCronEntry(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(10*time.Second, func() {}, quietLogger())
	require.NoError(t, err)

	entries := sched.Entries()
	require.Len(t, entries, 1)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	sched, err := NewScheduler(time.Second, func() { calls.Add(1) }, quietLogger())
	require.NoError(t, err)

	sched.Start()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)

	ctx := sched.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
