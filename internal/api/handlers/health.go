package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Healthz returns 200 while the process is running.
func Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}
