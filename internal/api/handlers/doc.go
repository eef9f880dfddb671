// Package handlers implements the HTTP handlers of the status server.
package handlers

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status"`
}
