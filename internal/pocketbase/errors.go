package pocketbase

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the error body the backend returns for non-2xx responses.
type APIError struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pocketbase: status %d", e.Status)
	}
	return fmt.Sprintf("pocketbase: %s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	s := statusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	return statusOf(err)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
