package scanning

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// maxAttempts is the total number of tries per image, including the first
	maxAttempts = 3
	// retryDelay is the pause before retrying an ordinary transport failure
	retryDelay = 2 * time.Second
	// rateLimitFallback is used when a 429 carries no Retry-After hint
	rateLimitFallback = 2 * retryDelay
)

// RateLimitError reports that the remote API rejected a call for rate
// limiting. RetryAfter holds the server-provided wait hint, zero if the
// response carried none.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// Sleeper abstracts backoff waits so tests can run without real delays
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// defaultSleeper sleeps on the wall clock, aborting early on context cancellation
type defaultSleeper struct{}

func (defaultSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryScanner wraps a Scanner with the per-image retry policy: up to
// maxAttempts tries, a fixed delay between ordinary failures, and an
// extended, server-hinted delay after rate limiting. Exhausting all
// attempts fails the call permanently; the caller decides what a permanent
// failure means for the batch.
type RetryScanner struct {
	scanner Scanner
	sleeper Sleeper
}

// NewRetryScanner wraps scanner with the default wall-clock sleeper
func NewRetryScanner(scanner Scanner) *RetryScanner {
	return &RetryScanner{scanner: scanner, sleeper: defaultSleeper{}}
}

// NewRetryScannerWithSleeper wraps scanner with a custom sleeper for testing
func NewRetryScannerWithSleeper(scanner Scanner, sleeper Sleeper) *RetryScanner {
	return &RetryScanner{scanner: scanner, sleeper: sleeper}
}

// Scan issues the underlying call, retrying on failure per the policy
func (r *RetryScanner) Scan(ctx context.Context, image []byte, contentType string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := r.scanner.Scan(ctx, image, contentType)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := retryDelay
		var rle *RateLimitError
		if errors.As(err, &rle) {
			delay = rle.RetryAfter
			if delay <= 0 {
				delay = rateLimitFallback
			}
		}
		if sleepErr := r.sleeper.Sleep(ctx, delay); sleepErr != nil {
			return "", fmt.Errorf("waiting to retry: %w", sleepErr)
		}
	}
	return "", fmt.Errorf("scan failed after %d attempts: %w", maxAttempts, lastErr)
}

// Close closes the wrapped scanner
func (r *RetryScanner) Close() error {
	return r.scanner.Close()
}
