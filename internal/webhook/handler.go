package webhook

import (
	"context"
	"log"
	"net/http"
	"time"

	"psicosites/internal/config"
	"psicosites/internal/models"
	wire "psicosites/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CacheInvalidator drops cached resolutions for the given domains. Nil when
// no cache is configured.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, domains ...string)
}

// Handler reconciles subscription state from payment processor webhooks.
// It never talks to the processor itself; the webhook contract is the only
// billing surface this service has.
type Handler struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  CacheInvalidator
}

func NewHandler(cfg *config.Config, db *gorm.DB, cache CacheInvalidator) *Handler {
	return &Handler{Config: cfg, DB: db, Cache: cache}
}

func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "" && token != "" {
		if mode == "subscribe" && token == h.Config.WebhookVerifyToken {
			log.Println("Webhook verified successfully!")
			c.String(http.StatusOK, challenge)
		} else {
			c.Status(http.StatusForbidden)
		}
	} else {
		c.Status(http.StatusBadRequest)
	}
}

func (h *Handler) HandleEvent(c *gin.Context) {
	var payload wire.BillingWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Error binding webhook JSON: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}

	switch payload.Type {
	case wire.EventSubscriptionActivated, wire.EventPaymentConfirmed:
		h.applyStatus(c, payload, "active")
	case wire.EventPaymentFailed:
		h.applyStatus(c, payload, "past_due")
		h.unpublishSite(c, payload.Data.ProfileID)
	case wire.EventSubscriptionCanceled:
		h.applyStatus(c, payload, "canceled")
		h.unpublishSite(c, payload.Data.ProfileID)
	default:
		log.Printf("Ignoring unknown billing event type %q", payload.Type)
	}

	c.Status(http.StatusOK)
}

func (h *Handler) applyStatus(c *gin.Context, payload wire.BillingWebhookPayload, status string) {
	sub := models.Subscription{
		ProfileID:  payload.Data.ProfileID,
		ExternalID: payload.Data.SubscriptionID,
		Status:     status,
	}
	if payload.Data.CurrentPeriodEnd != "" {
		if end, err := time.Parse(time.RFC3339, payload.Data.CurrentPeriodEnd); err == nil {
			sub.CurrentPeriodEnd = &end
		}
	}

	var existing models.Subscription
	err := h.DB.Where("external_id = ?", payload.Data.SubscriptionID).First(&existing).Error
	if err == nil {
		updates := map[string]interface{}{"status": status}
		if sub.CurrentPeriodEnd != nil {
			updates["current_period_end"] = sub.CurrentPeriodEnd
		}
		err = h.DB.Model(&existing).Updates(updates).Error
	} else {
		err = h.DB.Create(&sub).Error
	}
	if err != nil {
		log.Printf("Failed to reconcile subscription %s: %v", payload.Data.SubscriptionID, err)
		return
	}

	log.Printf("Subscription %s reconciled to status %s", payload.Data.SubscriptionID, status)
}

// unpublishSite takes the tenant's site offline when their subscription
// lapses. A paused subscription must never keep serving the public site.
func (h *Handler) unpublishSite(c *gin.Context, profileID string) {
	if profileID == "" {
		return
	}

	var site models.Site
	if err := h.DB.Where("profile_id = ?", profileID).First(&site).Error; err != nil {
		// Tenant without a site yet, nothing to take offline.
		return
	}

	if err := h.DB.Model(&site).Update("is_published", false).Error; err != nil {
		log.Printf("Failed to unpublish site %s: %v", site.ID, err)
		return
	}

	if h.Cache != nil {
		h.Cache.Invalidate(c.Request.Context(), site.Subdomain, site.CustomDomain)
	}

	log.Printf("Site %s unpublished after billing event", site.ID)
}
