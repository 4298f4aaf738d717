package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Deliver(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) countByType(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

type failingLedger struct{}

func (failingLedger) LastVisit(ctx context.Context, siteID, visitorID string) (string, error) {
	return "", errors.New("ledger down")
}

func (failingLedger) SetLastVisit(ctx context.Context, siteID, visitorID, date string) error {
	return errors.New("ledger down")
}

func fixedClock(day time.Time) func() time.Time {
	return func() time.Time { return day }
}

func TestPageSessionTracksExactlyOnce(t *testing.T) {
	sink := &captureSink{}
	publisher := NewPublisher(16, sink)
	session := NewPageSession(publisher, NewMemoryLedger(), "site-1", "visitor-1")

	for i := 0; i < 5; i++ {
		session.Track(context.Background(), "https://google.com")
	}
	publisher.Close()

	if got := sink.countByType(EventPageView); got != 1 {
		t.Fatalf("page_view emitted %d times, want 1", got)
	}
	if got := sink.countByType(EventUniqueVisitor); got != 1 {
		t.Fatalf("unique_visitor emitted %d times, want 1", got)
	}
}

func TestUniqueVisitorAtMostOncePerDay(t *testing.T) {
	sink := &captureSink{}
	publisher := NewPublisher(16, sink)
	ledger := NewMemoryLedger()
	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// Three page loads on the same day: three sessions, one unique visit.
	for i := 0; i < 3; i++ {
		session := NewPageSession(publisher, ledger, "site-1", "visitor-1")
		session.now = fixedClock(day1)
		session.Track(context.Background(), "")
	}

	// Next day the same visitor counts again.
	session := NewPageSession(publisher, ledger, "site-1", "visitor-1")
	session.now = fixedClock(day1.AddDate(0, 0, 1))
	session.Track(context.Background(), "")

	publisher.Close()

	if got := sink.countByType(EventPageView); got != 4 {
		t.Fatalf("page_view emitted %d times, want 4", got)
	}
	if got := sink.countByType(EventUniqueVisitor); got != 2 {
		t.Fatalf("unique_visitor emitted %d times, want 2", got)
	}
}

func TestUniqueVisitorScopedPerSiteAndVisitor(t *testing.T) {
	sink := &captureSink{}
	publisher := NewPublisher(16, sink)
	ledger := NewMemoryLedger()
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	pairs := []struct{ site, visitor string }{
		{"site-1", "visitor-1"},
		{"site-2", "visitor-1"},
		{"site-1", "visitor-2"},
	}
	for _, p := range pairs {
		session := NewPageSession(publisher, ledger, p.site, p.visitor)
		session.now = fixedClock(day)
		session.Track(context.Background(), "")
	}
	publisher.Close()

	if got := sink.countByType(EventUniqueVisitor); got != 3 {
		t.Fatalf("unique_visitor emitted %d times, want 3 (one per site/visitor pair)", got)
	}
}

func TestLedgerFailureSkipsUniqueVisitor(t *testing.T) {
	sink := &captureSink{}
	publisher := NewPublisher(16, sink)
	session := NewPageSession(publisher, failingLedger{}, "site-1", "visitor-1")

	session.Track(context.Background(), "")
	publisher.Close()

	if got := sink.countByType(EventPageView); got != 1 {
		t.Fatalf("page_view emitted %d times, want 1", got)
	}
	if got := sink.countByType(EventUniqueVisitor); got != 0 {
		t.Fatalf("unique_visitor emitted %d times, want 0 when the ledger fails", got)
	}
}

func TestEmitDropsUnknownEventType(t *testing.T) {
	sink := &captureSink{}
	publisher := NewPublisher(16, sink)

	publisher.Emit(Event{SiteID: "site-1", EventType: "made_up"})
	publisher.Emit(Event{SiteID: "site-1", EventType: EventCTAClick})
	publisher.Close()

	if len(sink.events) != 1 || sink.events[0].EventType != EventCTAClick {
		t.Fatalf("expected only the valid event to be delivered, got %+v", sink.events)
	}
}

func TestEmitAfterCloseDropsEvent(t *testing.T) {
	sink := &captureSink{}
	publisher := NewPublisher(4, sink)
	publisher.Close()

	publisher.Emit(Event{SiteID: "site-1", EventType: EventPageView})

	if len(sink.events) != 0 {
		t.Fatalf("expected no deliveries after Close, got %+v", sink.events)
	}
}

func TestEmitDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 8)
	var delivered int
	var mu sync.Mutex

	sink := SinkFunc(func(ctx context.Context, event Event) error {
		started <- struct{}{}
		<-block
		mu.Lock()
		delivered++
		mu.Unlock()
		return nil
	})

	publisher := NewPublisher(1, sink)
	publisher.Emit(Event{SiteID: "s", EventType: EventPageView})
	<-started // worker is busy with the first event
	publisher.Emit(Event{SiteID: "s", EventType: EventPageView}) // fills the buffer
	publisher.Emit(Event{SiteID: "s", EventType: EventPageView}) // dropped
	close(block)
	publisher.Close()

	mu.Lock()
	defer mu.Unlock()
	if delivered != 2 {
		t.Fatalf("delivered %d events, want 2 (third dropped on full queue)", delivered)
	}
}
