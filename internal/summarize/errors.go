package summarize

import "fmt"

// SummaryError indicates the model could not produce a usable summary for a
// repository. Callers use the fallback summary and surface this as an alert.
type SummaryError struct {
	RepoName string
	Message  string
	Cause    error
}

func (e *SummaryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summarizing %s: %s: %v", e.RepoName, e.Message, e.Cause)
	}
	return fmt.Sprintf("summarizing %s: %s", e.RepoName, e.Message)
}

func (e *SummaryError) Unwrap() error {
	return e.Cause
}
