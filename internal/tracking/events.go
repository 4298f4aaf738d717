// Package tracking records visitor interactions with public sites. Events
// are best-effort, fire-and-forget signals: delivery failures are logged and
// dropped, never retried, and never surface to the visitor.
package tracking

import "time"

// Event types form a fixed vocabulary.
const (
	EventPageView      = "page_view"
	EventUniqueVisitor = "unique_visitor"
	EventWhatsappClick = "whatsapp_click"
	EventCTAClick      = "cta_click"
)

// ValidEventType reports whether the given type belongs to the vocabulary.
func ValidEventType(eventType string) bool {
	switch eventType {
	case EventPageView, EventUniqueVisitor, EventWhatsappClick, EventCTAClick:
		return true
	}
	return false
}

// Event is one visitor interaction, keyed by site.
type Event struct {
	ID         string    `json:"id"`
	SiteID     string    `json:"site_id"`
	EventType  string    `json:"event_type"`
	Referrer   string    `json:"referrer,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
