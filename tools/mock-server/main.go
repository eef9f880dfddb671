// Package main implements a mock Vue Cinemas catalog for local development.
// It serves the movie and performances endpoints and starts offering a
// bookable performance after a configurable number of polls, so a full
// watch run can be exercised without hitting the real site.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"
)

const dateOffsetLayout = "2006-01-02 00:00:00"

type movie struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	URL   string `json:"vue_url"`
	Image string `json:"image"`
}

type performance struct {
	ID             int    `json:"id"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Visible        bool   `json:"visible"`
	TotalSeats     int    `json:"total_seats"`
	OccupiedSeats  int    `json:"occupied_seats"`
	HasBreak       bool   `json:"has_break"`
	Has2D          bool   `json:"has_2d"`
	HasOV          bool   `json:"has_ov"`
	Price          string `json:"price"`
	AuditoriumName string `json:"auditorium_name"`
	VariantName    string `json:"variant_name"`
}

type catalog struct {
	title          string
	availableAfter int64
	polls          atomic.Int64
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	title := flag.String("title", "Oppenheimer", "title of every served movie")
	availableAfter := flag.Int64("available-after", 3, "performance polls answered before a bookable performance appears")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := &catalog{title: *title, availableAfter: *availableAfter}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Vue catalog", "addr", addr, "available_after", *availableAfter)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, c.routes(logger)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (c *catalog) routes(logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /movies.json", c.movieHandler(logger))
	mux.HandleFunc("GET /performances.json", c.performancesHandler(logger))
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func (c *catalog) movieHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.URL.Query().Get("movie_id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "movie_id must be a number"})
			return
		}

		// The real catalog answers an unknown movie with an empty object.
		if id <= 0 {
			writeJSON(w, http.StatusOK, map[string]any{})
			logger.Info("movie not found", "movie_id", id)
			return
		}

		slug := fmt.Sprintf("movie-%d", id)
		writeJSON(w, http.StatusOK, movie{
			ID:    id,
			Title: c.title,
			Slug:  slug,
			URL:   "https://www.vuecinemas.nl/films/" + slug,
			Image: "https://www.vuecinemas.nl/images/" + slug + ".jpg",
		})
		logger.Info("served movie", "movie_id", id)
	}
}

func (c *catalog) performancesHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("movie_id") == "" || q.Get("cinema_ids[]") == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "movie_id and cinema_ids[] are required"})
			return
		}

		day, err := time.Parse(dateOffsetLayout, q.Get("dateOffset"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dateOffset must look like 2006-01-02 00:00:00"})
			return
		}

		poll := c.polls.Add(1)
		perfs := c.performances(day, poll)
		writeJSON(w, http.StatusOK, perfs)
		logger.Info("served performances", "poll", poll, "count", len(perfs))
	}
}

// performances returns a hidden preview showing until the threshold is
// reached and adds a bookable evening showing after it.
func (c *catalog) performances(day time.Time, poll int64) []performance {
	perfs := []performance{
		showing(9001, day.Add(14*time.Hour), false),
	}
	if poll > c.availableAfter {
		perfs = append(perfs, showing(9002, day.Add(19*time.Hour+30*time.Minute), true))
	}
	return perfs
}

func showing(id int, start time.Time, visible bool) performance {
	const layout = "2006-01-02T15:04:05"
	return performance{
		ID:             id,
		Start:          start.Format(layout),
		End:            start.Add(3 * time.Hour).Format(layout),
		Visible:        visible,
		TotalSeats:     120,
		OccupiedSeats:  35,
		HasBreak:       true,
		Has2D:          true,
		HasOV:          true,
		Price:          "12.99",
		AuditoriumName: "Zaal 1",
		VariantName:    "2D OV",
	}
}
