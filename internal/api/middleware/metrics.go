// Package middleware provides Echo middleware for the status server.
package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/ticket-watcher/internal/metrics"
)

// Metrics returns Echo middleware that counts requests by route and
// status. Scrapes of /metrics are not counted; /healthz updates the
// HealthzUp gauge instead.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			status := c.Response().Status

			switch path {
			case "/metrics":
			case "/healthz":
				if status >= 200 && status < 300 {
					metrics.HealthzUp.Set(1)
				} else {
					metrics.HealthzUp.Set(0)
				}
			default:
				metrics.HTTPRequestsTotal.
					WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).
					Inc()
			}

			return err
		}
	}
}
