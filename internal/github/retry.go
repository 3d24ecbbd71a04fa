package github

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy makes retry behavior an explicit contract instead of a
// convention scattered across call sites: how many attempts, how long to wait
// between them, and which error classes are worth retrying.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration // base delay, doubled per attempt
}

// DefaultRetryPolicy retries transient failures twice with a short backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     2 * time.Second,
	}
}

// Retryable reports whether an error class is worth another attempt.
// Rate limits and server errors are transient; a missing resource is not.
func (p RetryPolicy) Retryable(err error) bool {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		// 4xx other than 429 will not get better on retry
		if reqErr.Status >= 400 && reqErr.Status < 500 && reqErr.Status != 429 {
			return false
		}
	}

	return true
}

// Do runs fn up to MaxAttempts times, sleeping between attempts.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.Backoff << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !p.Retryable(err) {
			return err
		}
	}
	return err
}
