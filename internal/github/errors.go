package github

import (
	"fmt"
	"time"
)

// RequestError represents an HTTP-level failure from the GitHub API
type RequestError struct {
	URL     string
	Status  int
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("github request failed for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("github request failed for %s (status %d): %s", e.URL, e.Status, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// RateLimitError indicates the API rate limit was exhausted
type RateLimitError struct {
	URL   string
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return fmt.Sprintf("github rate limit exceeded for %s", e.URL)
	}
	return fmt.Sprintf("github rate limit exceeded for %s, resets at %s", e.URL, e.Reset.Format(time.RFC3339))
}

// NotFoundError indicates a user, repository, or file does not exist
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("github resource not found: %s", e.Resource)
}
