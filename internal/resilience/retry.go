// Package resilience provides the retry policy used for per-chunk
// synthesis attempts.
package resilience

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RetryConfig controls how many times an operation is attempted and how
// long to wait between attempts. The backoff is fixed; transient synthesis
// failures clear on reconnect, so growing the wait only delays the job.
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
	// OnRetry is invoked before each re-attempt with the attempt number
	// (1-based) and the error that triggered it.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig mirrors the service defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		Backoff:     time.Second,
	}
}

// IsRetryableError decides whether an error is worth another attempt.
type IsRetryableError func(error) bool

// Retry runs fn until it succeeds, the attempts are exhausted, a
// non-retryable error occurs, or the context is cancelled.
func Retry(ctx context.Context, fn func(context.Context) error, cfg *RetryConfig, isRetryable IsRetryableError) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if isRetryable != nil && !isRetryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Backoff):
		}
	}

	return lastErr
}

// IsRetryableNetworkError reports whether an error looks like a transient
// network or endpoint failure.
func IsRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	for _, substr := range []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"stream closed",
		"close 1006",
		"network is unreachable",
		"no route to host",
		"i/o timeout",
		"timeout",
		"unavailable",
		"rate limit",
		"too many connections",
	} {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
