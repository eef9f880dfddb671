// Package api serves the optional read-only status endpoints of a watch run.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/ticket-watcher/internal/api/handlers"
	mw "github.com/donaldgifford/ticket-watcher/internal/api/middleware"
)

// Server is the status server.
type Server struct {
	echo *echo.Echo
	log  *slog.Logger
}

// NewServer builds the status server routes: /healthz, /status, /metrics.
func NewServer(state handlers.StateProvider, info handlers.RunInfo, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.Recovery(log))
	e.Use(mw.RequestLog(log))
	e.Use(mw.Metrics())

	status := handlers.NewStatusHandler(state, info)

	e.GET("/healthz", handlers.Healthz)
	e.GET("/status", status.Status)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{echo: e, log: log}
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr and serves in the background. It returns once the
// listener is bound, so a bad address is reported to the caller.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.echo.Listener = ln

	s.log.Info("status server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("status server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once Start has returned.
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down status server: %w", err)
	}
	return nil
}
