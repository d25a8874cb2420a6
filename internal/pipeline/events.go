package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// EventType labels one step of a collection or cleaning run.
type EventType string

const (
	EventCollectionStarted   EventType = "collection.started"
	EventURLFetched          EventType = "url.fetched"
	EventURLFailed           EventType = "url.failed"
	EventCollectionCompleted EventType = "collection.completed"
	EventCleaningStarted     EventType = "cleaning.started"
	EventCleaningCompleted   EventType = "cleaning.completed"
)

// Event is one observable pipeline step. The dashboard polls these for
// run progress; logs are the other consumer.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"run_id,omitempty"`
	URL       string                 `json:"url,omitempty"`
	Artifact  string                 `json:"artifact,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent creates an event for one run.
func NewEvent(eventType EventType, runID string) *Event {
	return &Event{
		ID:        "evt_" + uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     runID,
		Metadata:  make(map[string]interface{}),
	}
}

// WithURL attaches the URL this event concerns.
func (e *Event) WithURL(url string) *Event {
	e.URL = url
	return e
}

// WithArtifact attaches the artifact name this event produced.
func (e *Event) WithArtifact(name string) *Event {
	e.Artifact = name
	return e
}

// WithError attaches a failure message.
func (e *Event) WithError(message string) *Event {
	e.Error = message
	return e
}
