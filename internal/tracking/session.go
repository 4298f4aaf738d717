package tracking

import (
	"context"
	"log"
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

// PageSession is the per-page-load tracking lifecycle. It has exactly two
// states, untracked and tracked, and a single allowed transition: Track fires
// once no matter how many times it is called.
type PageSession struct {
	publisher *Publisher
	ledger    VisitLedger
	siteID    string
	visitorID string
	now       func() time.Time

	mu      sync.Mutex
	tracked bool
}

func NewPageSession(publisher *Publisher, ledger VisitLedger, siteID, visitorID string) *PageSession {
	return &PageSession{
		publisher: publisher,
		ledger:    ledger,
		siteID:    siteID,
		visitorID: visitorID,
		now:       time.Now,
	}
}

// Track activates the session: a page_view event is always emitted, and a
// unique_visitor event at most once per calendar day per site per visitor.
// Subsequent calls are no-ops.
func (s *PageSession) Track(ctx context.Context, referrer string) {
	s.mu.Lock()
	if s.tracked {
		s.mu.Unlock()
		return
	}
	s.tracked = true
	s.mu.Unlock()

	s.publisher.Emit(Event{
		SiteID:    s.siteID,
		EventType: EventPageView,
		Referrer:  referrer,
	})

	today := s.now().Format(dateLayout)
	last, err := s.ledger.LastVisit(ctx, s.siteID, s.visitorID)
	if err != nil {
		// Skip rather than over-count: a broken ledger would otherwise emit
		// unique_visitor on every page load.
		log.Printf("Visit ledger read failed for site %s: %v", s.siteID, err)
		return
	}
	if last == today {
		return
	}

	s.publisher.Emit(Event{
		SiteID:    s.siteID,
		EventType: EventUniqueVisitor,
		Referrer:  referrer,
	})
	if err := s.ledger.SetLastVisit(ctx, s.siteID, s.visitorID, today); err != nil {
		log.Printf("Visit ledger write failed for site %s: %v", s.siteID, err)
	}
}
