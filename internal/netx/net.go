// Package netx holds the HTTP plumbing shared by the storage client: error
// responses and bounded retries with exponential backoff.
package netx

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "request failed: " + e.Status
	}
	return fmt.Sprintf("request failed: %s; body: %s", e.Status, e.Message)
}

// Retryable reports whether the same request may succeed later.
func (e *StatusError) Retryable() bool {
	return IsRetryableStatus(e.Code)
}

// IsRetryableStatus is true for 5xx and 429.
func IsRetryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

// CheckResponse returns nil for 2xx responses and a *StatusError otherwise.
// The body is not closed.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Code:    resp.StatusCode,
		Status:  resp.Status,
		Message: strings.TrimSpace(string(b)),
	}
}
