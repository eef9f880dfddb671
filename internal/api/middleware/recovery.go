package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
)

const stackBufSize = 4096

// Recovery returns Echo middleware that turns a handler panic into a 500
// response. The watch itself keeps running.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				stack := make([]byte, stackBufSize)
				stack = stack[:runtime.Stack(stack, false)]

				log.Error("status handler panicked",
					"panic", fmt.Sprint(r),
					"path", c.Request().URL.Path,
					"request_id", c.Get("request_id"),
					"stack", string(stack),
				)

				err = c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}()
			return next(c)
		}
	}
}
