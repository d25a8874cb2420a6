package pipeline

import (
	"context"
	"sync"
)

// Recorder keeps a ring of the most recent events for the dashboard's
// polling endpoint.
type Recorder struct {
	mu     sync.RWMutex
	events []*Event
	limit  int
}

// NewRecorder creates a recorder holding up to limit events and
// subscribes it to every event type on the bus.
func NewRecorder(bus *EventBus, limit int) *Recorder {
	r := &Recorder{limit: limit}
	bus.Subscribe(nil, func(ctx context.Context, event *Event) error {
		r.record(event)
		return nil
	})
	return r
}

func (r *Recorder) record(event *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if len(r.events) > r.limit {
		r.events = r.events[len(r.events)-r.limit:]
	}
}

// Recent returns the recorded events, newest last.
func (r *Recorder) Recent() []*Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Event, len(r.events))
	copy(out, r.events)
	return out
}
