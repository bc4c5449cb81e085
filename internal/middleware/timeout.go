package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds handler time. The websocket and metrics routes must stay
// outside it since http.TimeoutHandler does not support hijacking.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"error":"request timed out"}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
