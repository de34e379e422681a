package http

import (
	"fmt"
	"time"
)

// HTTPError represents a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http: status %d: %s", e.StatusCode, truncateBody(e.Body))
}

// RateLimitError indicates the server rejected the request due to rate
// limiting or anti-bot measures (429, 503, 403).
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
}

// RetryAfterHint reports the server-requested delay so retry scheduling
// can honor it.
func (e *RateLimitError) RetryAfterHint() time.Duration {
	return e.RetryAfter
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("http: rate limited (status %d), retry after %s", e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("http: rate limited (status %d)", e.StatusCode)
}

func truncateBody(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
