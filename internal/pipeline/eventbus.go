package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventHandler consumes pipeline events.
type EventHandler func(ctx context.Context, event *Event) error

// Subscription is one registered consumer.
type Subscription struct {
	ID         string
	EventTypes []EventType
	Handler    EventHandler
}

// EventBus fans pipeline events out to subscribers. Publishing never
// blocks the pipeline: a full buffer drops the event with a warning,
// progress reporting is best effort.
type EventBus struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	buffer        chan *Event
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup

	statsMu sync.Mutex
	stats   EventBusStats
}

// EventBusStats tracks bus counters.
type EventBusStats struct {
	EventsPublished   int64 `json:"events_published"`
	EventsDelivered   int64 `json:"events_delivered"`
	EventsDropped     int64 `json:"events_dropped"`
	EventsFailed      int64 `json:"events_failed"`
	ActiveSubscribers int   `json:"active_subscribers"`
}

// NewEventBus creates a bus with the given buffer size and worker count.
func NewEventBus(bufferSize, workers int) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	eb := &EventBus{
		subscriptions: make(map[string]*Subscription),
		buffer:        make(chan *Event, bufferSize),
		ctx:           ctx,
		cancel:        cancel,
	}
	for i := 0; i < workers; i++ {
		eb.wg.Add(1)
		go eb.worker()
	}
	return eb
}

// Publish queues an event for delivery.
func (eb *EventBus) Publish(event *Event) error {
	select {
	case eb.buffer <- event:
		eb.statsMu.Lock()
		eb.stats.EventsPublished++
		eb.statsMu.Unlock()
		return nil
	case <-eb.ctx.Done():
		return fmt.Errorf("event bus is shut down")
	default:
		eb.statsMu.Lock()
		eb.stats.EventsDropped++
		eb.statsMu.Unlock()
		log.Warn().
			Str("event_type", string(event.Type)).
			Msg("Event dropped, buffer full")
		return fmt.Errorf("event buffer is full")
	}
}

// Subscribe registers a handler for the given event types. Nil or empty
// eventTypes means all types.
func (eb *EventBus) Subscribe(eventTypes []EventType, handler EventHandler) *Subscription {
	sub := &Subscription{
		ID:         "sub_" + uuid.New().String(),
		EventTypes: eventTypes,
		Handler:    handler,
	}
	eb.mu.Lock()
	eb.subscriptions[sub.ID] = sub
	eb.mu.Unlock()

	eb.statsMu.Lock()
	eb.stats.ActiveSubscribers++
	eb.statsMu.Unlock()
	return sub
}

// Unsubscribe removes a subscription.
func (eb *EventBus) Unsubscribe(id string) error {
	eb.mu.Lock()
	_, exists := eb.subscriptions[id]
	delete(eb.subscriptions, id)
	eb.mu.Unlock()

	if !exists {
		return fmt.Errorf("subscription not found: %s", id)
	}
	eb.statsMu.Lock()
	eb.stats.ActiveSubscribers--
	eb.statsMu.Unlock()
	return nil
}

// Close drains the workers and stops delivery.
func (eb *EventBus) Close() {
	eb.cancel()
	eb.wg.Wait()
}

// Stats returns a snapshot of the bus counters.
func (eb *EventBus) Stats() EventBusStats {
	eb.statsMu.Lock()
	defer eb.statsMu.Unlock()
	return eb.stats
}

func (eb *EventBus) worker() {
	defer eb.wg.Done()
	for {
		select {
		case event := <-eb.buffer:
			eb.deliver(event)
		case <-eb.ctx.Done():
			return
		}
	}
}

func (eb *EventBus) deliver(event *Event) {
	eb.mu.RLock()
	matching := make([]*Subscription, 0, len(eb.subscriptions))
	for _, sub := range eb.subscriptions {
		if sub.matches(event.Type) {
			matching = append(matching, sub)
		}
	}
	eb.mu.RUnlock()

	for _, sub := range matching {
		if err := sub.Handler(eb.ctx, event); err != nil {
			eb.statsMu.Lock()
			eb.stats.EventsFailed++
			eb.statsMu.Unlock()
			log.Error().
				Err(err).
				Str("subscription_id", sub.ID).
				Str("event_id", event.ID).
				Msg("Event handler failed")
			continue
		}
		eb.statsMu.Lock()
		eb.stats.EventsDelivered++
		eb.statsMu.Unlock()
	}
}

func (s *Subscription) matches(eventType EventType) bool {
	if len(s.EventTypes) == 0 {
		return true
	}
	for _, t := range s.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}
