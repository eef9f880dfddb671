package watcher

import (
	"context"
	"sync"

	"github.com/donaldgifford/ticket-watcher/internal/notify"
	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

// catalogResponse is one scripted answer of fakeCatalog.Performances.
type catalogResponse struct {
	perfs []domain.Performance
	err   error
}

// fakeCatalog serves scripted responses in order, repeating the last one.
// When gate is set, Performances blocks until it is closed.
type fakeCatalog struct {
	movie    *domain.Movie
	movieErr error

	mu          sync.Mutex
	responses   []catalogResponse
	urls        []string
	inFlight    int
	maxInFlight int

	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeCatalog) Movie(_ context.Context, _ int) (*domain.Movie, error) {
	return f.movie, f.movieErr
}

func (f *fakeCatalog) Performances(ctx context.Context, u string) ([]domain.Performance, error) {
	f.mu.Lock()
	f.urls = append(f.urls, u)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	var resp catalogResponse
	if len(f.responses) > 0 {
		resp = f.responses[0]
		if len(f.responses) > 1 {
			f.responses = f.responses[1:]
		}
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return resp.perfs, resp.err
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

func (f *fakeCatalog) requestedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.urls))
	copy(out, f.urls)
	return out
}

func (f *fakeCatalog) peakInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// recordingNotifier records every payload it is asked to send.
type recordingNotifier struct {
	err error

	mu       sync.Mutex
	payloads []notify.Payload
}

func (r *recordingNotifier) Send(_ context.Context, p *notify.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, *p)
	return r.err
}

func (r *recordingNotifier) sent() []notify.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Payload, len(r.payloads))
	copy(out, r.payloads)
	return out
}
