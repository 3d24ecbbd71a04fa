// Package progress fans scrape progress events out to connected WebSocket
// clients.
package progress

import "time"

// Event types on the progress channel.
const (
	TypeStatus   = "status"
	TypeProgress = "progress"
	TypeAlert    = "alert"
	TypeComplete = "complete"
	TypeError    = "error"
)

// Alert flags a per-repository problem that did not stop the batch.
type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Event is one progress update on the wire.
type Event struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	Step      string `json:"step,omitempty"`
	Current   int    `json:"current,omitempty"`
	Total     int    `json:"total,omitempty"`
	RepoName  string `json:"repo_name,omitempty"`
	Timestamp string `json:"timestamp"`
	Alert     *Alert `json:"alert,omitempty"`
}

// NewEvent stamps an event of the given type with the current time.
func NewEvent(eventType, message string) Event {
	return Event{
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
