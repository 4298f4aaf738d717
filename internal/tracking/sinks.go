package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"psicosites/internal/models"

	"gorm.io/gorm"
)

// GormSink persists events into the tracking_events table.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

func (s *GormSink) Deliver(ctx context.Context, event Event) error {
	record := models.TrackingEvent{
		SiteID:    event.SiteID,
		EventType: event.EventType,
		Referrer:  event.Referrer,
	}
	return s.db.WithContext(ctx).Create(&record).Error
}

// HTTPSink forwards events to an external ingestion endpoint. The endpoint
// contract is a JSON POST of {siteId, eventType, referrer}; the response body
// is ignored beyond the status code.
type HTTPSink struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSink(endpoint string) *HTTPSink {
	return &HTTPSink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type ingestionPayload struct {
	SiteID    string  `json:"siteId"`
	EventType string  `json:"eventType"`
	Referrer  *string `json:"referrer"`
}

func (s *HTTPSink) Deliver(ctx context.Context, event Event) error {
	payload := ingestionPayload{
		SiteID:    event.SiteID,
		EventType: event.EventType,
	}
	if event.Referrer != "" {
		payload.Referrer = &event.Referrer
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ingestion endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
