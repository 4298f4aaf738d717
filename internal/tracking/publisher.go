package tracking

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const deliveryTimeout = 5 * time.Second

// Sink receives tracking events. Implementations must not be relied on for
// durability; the publisher drops events when a sink fails.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Deliver(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher decouples event emission from delivery. Emit enqueues onto a
// buffered channel and never blocks the caller; a single worker goroutine
// drains the queue into the configured sinks. When the queue is full the
// event is dropped and logged.
type Publisher struct {
	events    chan Event
	sinks     []Sink
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewPublisher(buffer int, sinks ...Sink) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	p := &Publisher{
		events: make(chan Event, buffer),
		sinks:  sinks,
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) run() {
	for event := range p.events {
		for _, sink := range p.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
			if err := sink.Deliver(ctx, event); err != nil {
				log.Printf("Tracking delivery failed for site %s event %s: %v",
					event.SiteID, event.EventType, err)
			}
			cancel()
		}
	}
	close(p.done)
}

// Emit enqueues an event for asynchronous delivery. Missing ID and timestamp
// are filled in. Invalid event types are dropped.
func (p *Publisher) Emit(event Event) {
	if !ValidEventType(event.EventType) {
		log.Printf("Dropping tracking event with unknown type %q", event.EventType)
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Printf("Tracking publisher closed, dropping %s event for site %s",
			event.EventType, event.SiteID)
		return
	}

	select {
	case p.events <- event:
	default:
		log.Printf("Tracking queue full, dropping %s event for site %s",
			event.EventType, event.SiteID)
	}
}

// Close stops accepting events and waits for the queue to drain. Events
// emitted after Close are dropped.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.events)
	})
	<-p.done
}
