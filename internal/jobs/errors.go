package jobs

import "fmt"

// ParseError means the model never produced a job analysis that passed
// validation, even after a retry. Nothing partial is returned alongside it.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parsing job description: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parsing job description: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
