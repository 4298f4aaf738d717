package api

import (
	"net/http"
	"time"

	"psicosites/internal/models"
	"psicosites/internal/tracking"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AnalyticsHandler aggregates stored tracking events for the dashboard.
type AnalyticsHandler struct {
	DB *gorm.DB
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{DB: db}
}

type eventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

type dailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// GetSiteAnalytics returns per-event-type totals plus a daily page-view
// series for the last 30 days.
func (h *AnalyticsHandler) GetSiteAnalytics(c *gin.Context) {
	siteID := c.Param("id")

	var site models.Site
	if err := h.DB.Where("id = ?", siteID).First(&site).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	var totals []eventTypeCount
	err := h.DB.Model(&models.TrackingEvent{}).
		Select("event_type, count(*) as count").
		Where("site_id = ?", siteID).
		Group("event_type").
		Scan(&totals).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	since := time.Now().AddDate(0, 0, -30)
	var daily []dailyCount
	err = h.DB.Model(&models.TrackingEvent{}).
		Select("date(created_at) as date, count(*) as count").
		Where("site_id = ? AND event_type = ? AND created_at >= ?", siteID, tracking.EventPageView, since).
		Group("date(created_at)").
		Order("date").
		Scan(&daily).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byType := map[string]int64{}
	for _, t := range totals {
		byType[t.EventType] = t.Count
	}

	if daily == nil {
		daily = []dailyCount{}
	}

	c.JSON(http.StatusOK, gin.H{
		"site_id":          siteID,
		"page_views":       byType[tracking.EventPageView],
		"unique_visitors":  byType[tracking.EventUniqueVisitor],
		"whatsapp_clicks":  byType[tracking.EventWhatsappClick],
		"cta_clicks":       byType[tracking.EventCTAClick],
		"daily_page_views": daily,
	})
}
