package api

import (
	"net/http"

	"psicosites/internal/tracking"

	"github.com/gin-gonic/gin"
)

// TrackingHandler is the ingestion endpoint for visitor interaction events.
// Everything here is fire-and-forget: the handler enqueues and answers 202
// without waiting for delivery.
type TrackingHandler struct {
	Publisher *tracking.Publisher
}

func NewTrackingHandler(publisher *tracking.Publisher) *TrackingHandler {
	return &TrackingHandler{Publisher: publisher}
}

type ingestRequest struct {
	SiteID    string `json:"site_id" binding:"required"`
	EventType string `json:"event_type" binding:"required"`
	Referrer  string `json:"referrer"`
}

func (h *TrackingHandler) IngestEvent(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !tracking.ValidEventType(req.EventType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type: " + req.EventType})
		return
	}

	h.Publisher.Emit(tracking.Event{
		SiteID:    req.SiteID,
		EventType: req.EventType,
		Referrer:  req.Referrer,
	})

	c.Status(http.StatusAccepted)
}

type clickRequest struct {
	SiteID   string         `json:"site_id" binding:"required"`
	Referrer string         `json:"referrer"`
	Click    tracking.Click `json:"click"`
}

// IngestClick classifies a reported click centrally instead of relying on
// per-element listeners on the page. Unclassifiable clicks are acknowledged
// without emitting anything.
func (h *TrackingHandler) IngestClick(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventType, ok := tracking.ClassifyClick(req.Click)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	h.Publisher.Emit(tracking.Event{
		SiteID:    req.SiteID,
		EventType: eventType,
		Referrer:  req.Referrer,
	})

	c.Status(http.StatusAccepted)
}
