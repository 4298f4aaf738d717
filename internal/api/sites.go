package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"

	"psicosites/internal/composer"
	"psicosites/internal/models"
	"psicosites/internal/tracking"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SiteResolver resolves a subdomain-or-custom-domain string to a published
// site. Satisfied by resolver.Resolver and resolver.CachedResolver.
type SiteResolver interface {
	Resolve(ctx context.Context, domain string) (*models.Site, error)
}

// SiteHandler serves the public site rendering path: resolve, compose,
// track, or fall back to not-found.
type SiteHandler struct {
	Resolver    SiteResolver
	DB          *gorm.DB
	Publisher   *tracking.Publisher
	Ledger      tracking.VisitLedger
	PlatformURL string
}

func NewSiteHandler(resolver SiteResolver, db *gorm.DB, publisher *tracking.Publisher, ledger tracking.VisitLedger, platformURL string) *SiteHandler {
	return &SiteHandler{
		Resolver:    resolver,
		DB:          db,
		Publisher:   publisher,
		Ledger:      ledger,
		PlatformURL: platformURL,
	}
}

// GetSite resolves the requested domain and returns the composed page.
// Resolution misses and store failures both degrade to the not-found
// fallback; store errors were already logged at the resolver.
func (h *SiteHandler) GetSite(c *gin.Context) {
	domain := c.Param("domain")

	site, err := h.Resolver.Resolve(c.Request.Context(), domain)
	if err != nil {
		h.renderNotFound(c)
		return
	}

	page := composer.Compose(site, &site.Profile)

	session := tracking.NewPageSession(h.Publisher, h.Ledger, site.ID, visitorKey(c))
	session.Track(c.Request.Context(), c.Request.Referer())

	c.JSON(http.StatusOK, page)
}

// GetSiteBlog lists the published posts of a resolved site. A site whose
// show_blog flag is explicitly false serves the not-found fallback here.
func (h *SiteHandler) GetSiteBlog(c *gin.Context) {
	domain := c.Param("domain")

	site, err := h.Resolver.Resolve(c.Request.Context(), domain)
	if err != nil {
		h.renderNotFound(c)
		return
	}

	if site.ShowBlog != nil && !*site.ShowBlog {
		h.renderNotFound(c)
		return
	}

	var posts []models.BlogPost
	err = h.DB.WithContext(c.Request.Context()).
		Where("site_id = ? AND published = ?", site.ID, true).
		Order("published_at DESC").
		Find(&posts).Error
	if err != nil {
		log.Printf("Error listing posts for site %s: %v", site.ID, err)
		h.renderNotFound(c)
		return
	}

	if posts == nil {
		posts = []models.BlogPost{}
	}

	c.JSON(http.StatusOK, gin.H{
		"site_id":      site.ID,
		"display_name": composer.DisplayName(&site.Profile),
		"posts":        posts,
	})
}

// renderNotFound is the terminal fallback for every resolution miss. It
// always offers a path back to the platform's own signup entry point.
func (h *SiteHandler) renderNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":      "Site não encontrado",
		"signup_url": h.PlatformURL,
	})
}

// visitorKey derives an anonymized visitor identifier from the client
// address and user agent. Only used to scope the unique-visit ledger.
func visitorKey(c *gin.Context) string {
	sum := sha256.Sum256([]byte(c.ClientIP() + "|" + c.Request.UserAgent()))
	return hex.EncodeToString(sum[:8])
}
