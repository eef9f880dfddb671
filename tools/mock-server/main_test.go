package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, availableAfter int64) *httptest.Server {
	t.Helper()
	c := &catalog{title: "Oppenheimer", availableAfter: availableAfter}
	srv := httptest.NewServer(c.routes(testLogger()))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // test server URL
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // test cleanup
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp.StatusCode
}

const perfQuery = "/performances.json?movie_id=1&filters=&cinema_ids%5B%5D=13&dateOffset=2024-01-01+00%3A00%3A00&range=365"

func TestMovieHandler(t *testing.T) {
	srv := newTestServer(t, 0)

	var m movie
	if code := getJSON(t, srv.URL+"/movies.json?movie_id=43871", &m); code != http.StatusOK {
		t.Fatalf("status=%d, want %d", code, http.StatusOK)
	}
	if m.ID != 43871 {
		t.Errorf("id=%d, want 43871", m.ID)
	}
	if m.Title != "Oppenheimer" {
		t.Errorf("title=%q, want Oppenheimer", m.Title)
	}
	if m.Slug != "movie-43871" {
		t.Errorf("slug=%q, want movie-43871", m.Slug)
	}
}

func TestMovieHandler_UnknownMovieIsEmptyObject(t *testing.T) {
	srv := newTestServer(t, 0)

	var m map[string]any
	if code := getJSON(t, srv.URL+"/movies.json?movie_id=0", &m); code != http.StatusOK {
		t.Fatalf("status=%d, want %d", code, http.StatusOK)
	}
	if len(m) != 0 {
		t.Errorf("got %v, want empty object", m)
	}
}

func TestMovieHandler_BadID(t *testing.T) {
	srv := newTestServer(t, 0)

	if code := getJSON(t, srv.URL+"/movies.json?movie_id=abc", nil); code != http.StatusBadRequest {
		t.Errorf("status=%d, want %d", code, http.StatusBadRequest)
	}
}

func TestPerformancesHandler_BecomesAvailable(t *testing.T) {
	srv := newTestServer(t, 2)

	for poll := 1; poll <= 3; poll++ {
		var perfs []performance
		if code := getJSON(t, srv.URL+perfQuery, &perfs); code != http.StatusOK {
			t.Fatalf("poll %d: status=%d, want %d", poll, code, http.StatusOK)
		}

		visible := 0
		for _, p := range perfs {
			if p.Visible {
				visible++
			}
		}

		want := 0
		if poll > 2 {
			want = 1
		}
		if visible != want {
			t.Errorf("poll %d: visible=%d, want %d", poll, visible, want)
		}
	}
}

func TestPerformancesHandler_StartsOnRequestedDay(t *testing.T) {
	srv := newTestServer(t, 0)

	var perfs []performance
	getJSON(t, srv.URL+perfQuery, &perfs)
	if len(perfs) != 2 {
		t.Fatalf("got %d performances, want 2", len(perfs))
	}
	if perfs[1].Start != "2024-01-01T19:30:00" {
		t.Errorf("start=%q, want 2024-01-01T19:30:00", perfs[1].Start)
	}
	if perfs[1].End != "2024-01-01T22:30:00" {
		t.Errorf("end=%q, want 2024-01-01T22:30:00", perfs[1].End)
	}
}

func TestPerformancesHandler_BadRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "missing movie", query: "/performances.json?cinema_ids%5B%5D=13&dateOffset=2024-01-01+00%3A00%3A00"},
		{name: "missing cinemas", query: "/performances.json?movie_id=1&dateOffset=2024-01-01+00%3A00%3A00"},
		{name: "bad date", query: "/performances.json?movie_id=1&cinema_ids%5B%5D=13&dateOffset=tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, 0)
			if code := getJSON(t, srv.URL+tt.query, nil); code != http.StatusBadRequest {
				t.Errorf("status=%d, want %d", code, http.StatusBadRequest)
			}
		})
	}
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	req := httptest.NewRequest(http.MethodGet, "/movies.json", http.NoBody)
	w := httptest.NewRecorder()

	requestLogger(testLogger(), inner).ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("status=%d, want %d", w.Code, http.StatusTeapot)
	}
}
