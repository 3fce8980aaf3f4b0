package textgen

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// RetryPolicy bounds how the gateway retries a failed call.
type RetryPolicy struct {
	MaxRetries int                             // additional attempts after the first
	Backoff    func(attempt int) time.Duration // wait before retry number attempt (1-based)
	Retryable  func(err error) bool
}

// DefaultRetryPolicy retries rate-limit errors 3 times, waiting 30s, 60s, 90s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Backoff:    LinearBackoff(30 * time.Second),
		Retryable:  IsRateLimit,
	}
}

// LinearBackoff waits base × attempt.
func LinearBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// IsRateLimit reports whether err signals a rate limit or exhausted quota.
func IsRateLimit(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return true
		}
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "429") ||
		strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "resource_exhausted")
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
