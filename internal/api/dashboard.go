package api

import (
	"context"
	"net/http"
	"regexp"

	"psicosites/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// CacheInvalidator drops cached site resolutions; nil when no cache is
// configured.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, domains ...string)
}

// DashboardHandler exposes the tenant-facing CRUD surface for sites and
// profiles. Authentication is handled upstream of this service.
type DashboardHandler struct {
	DB    *gorm.DB
	Cache CacheInvalidator
}

func NewDashboardHandler(db *gorm.DB, cache CacheInvalidator) *DashboardHandler {
	return &DashboardHandler{DB: db, Cache: cache}
}

func (h *DashboardHandler) GetSites(c *gin.Context) {
	var sites []models.Site
	if err := h.DB.Preload("Profile").Order("created_at DESC").Find(&sites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if sites == nil {
		sites = []models.Site{}
	}

	c.JSON(http.StatusOK, sites)
}

func (h *DashboardHandler) GetSite(c *gin.Context) {
	id := c.Param("id")

	var site models.Site
	if err := h.DB.Preload("Profile").Where("id = ?", id).First(&site).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	c.JSON(http.StatusOK, site)
}

type CreateSiteRequest struct {
	ProfileID    string `json:"profile_id" binding:"required"`
	Subdomain    string `json:"subdomain" binding:"required"`
	CustomDomain string `json:"custom_domain"`
	Theme        string `json:"theme"`
}

func (h *DashboardHandler) CreateSite(c *gin.Context) {
	var req CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !subdomainPattern.MatchString(req.Subdomain) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subdomain must be a lowercase slug"})
		return
	}

	var profile models.Profile
	if err := h.DB.Where("id = ?", req.ProfileID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	site := models.Site{
		ID:           uuid.NewString(),
		ProfileID:    req.ProfileID,
		Subdomain:    req.Subdomain,
		CustomDomain: req.CustomDomain,
		Theme:        req.Theme,
	}

	if err := h.DB.Create(&site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create site"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": site.ID, "message": "Site created successfully"})
}

type UpdateSiteRequest struct {
	Subdomain         *string `json:"subdomain"`
	CustomDomain      *string `json:"custom_domain"`
	ShowBlog          *bool   `json:"show_blog"`
	ShowEthicsSection *bool   `json:"show_ethics_section"`
	ShowLGPDSection   *bool   `json:"show_lgpd_section"`
	Theme             *string `json:"theme"`
	EthicsText        *string `json:"ethics_text"`
}

func (h *DashboardHandler) UpdateSite(c *gin.Context) {
	id := c.Param("id")

	var req UpdateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var site models.Site
	if err := h.DB.Where("id = ?", id).First(&site).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	updateData := map[string]interface{}{}
	if req.Subdomain != nil {
		if !subdomainPattern.MatchString(*req.Subdomain) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Subdomain must be a lowercase slug"})
			return
		}
		updateData["subdomain"] = *req.Subdomain
	}
	if req.CustomDomain != nil {
		updateData["custom_domain"] = *req.CustomDomain
	}
	if req.ShowBlog != nil {
		updateData["show_blog"] = *req.ShowBlog
	}
	if req.ShowEthicsSection != nil {
		updateData["show_ethics_section"] = *req.ShowEthicsSection
	}
	if req.ShowLGPDSection != nil {
		updateData["show_lgpd_section"] = *req.ShowLGPDSection
	}
	if req.Theme != nil {
		updateData["theme"] = *req.Theme
	}
	if req.EthicsText != nil {
		updateData["ethics_text"] = *req.EthicsText
	}

	if len(updateData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := h.DB.Model(&site).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidate(c, site)

	c.JSON(http.StatusOK, gin.H{"message": "Site updated successfully"})
}

type PublishSiteRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// PublishSite flips the publication flag. Publishing requires an active
// subscription; unpublishing is always allowed.
func (h *DashboardHandler) PublishSite(c *gin.Context) {
	id := c.Param("id")

	var req PublishSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var site models.Site
	if err := h.DB.Where("id = ?", id).First(&site).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	if *req.Published {
		var sub models.Subscription
		err := h.DB.Where("profile_id = ? AND status = ?", site.ProfileID, "active").First(&sub).Error
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "An active subscription is required to publish"})
			return
		}
	}

	if err := h.DB.Model(&site).Update("is_published", *req.Published).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !*req.Published {
		h.invalidate(c, site)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Site publication updated", "published": *req.Published})
}

func (h *DashboardHandler) DeleteSite(c *gin.Context) {
	id := c.Param("id")

	var site models.Site
	if err := h.DB.Where("id = ?", id).First(&site).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", site.ID).Delete(&models.BlogPost{}).Error; err != nil {
			return err
		}
		if err := tx.Where("site_id = ?", site.ID).Delete(&models.TrackingEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&site).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete site"})
		return
	}

	h.invalidate(c, site)

	c.JSON(http.StatusOK, gin.H{"message": "Site deleted"})
}

func (h *DashboardHandler) GetProfile(c *gin.Context) {
	id := c.Param("id")

	var profile models.Profile
	if err := h.DB.Where("id = ?", id).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

type UpdateProfileRequest struct {
	FullName        *string `json:"full_name"`
	Gender          *string `json:"gender"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Whatsapp        *string `json:"whatsapp"`
	CRP             *string `json:"crp"`
	Bio             *string `json:"bio"`
	ImageURL        *string `json:"image_url"`
	VideoURL        *string `json:"video_url"`
	InstagramURL    *string `json:"instagram_url"`
	Specialties     *string `json:"specialties"`
	SpecialtiesData *string `json:"specialties_data"`
	FAQs            *string `json:"faqs"`
	Testimonials    *string `json:"testimonials"`
	Street          *string `json:"street"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	ZipCode         *string `json:"zip_code"`
}

func (h *DashboardHandler) UpdateProfile(c *gin.Context) {
	id := c.Param("id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var profile models.Profile
	if err := h.DB.Where("id = ?", id).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	updateData := map[string]interface{}{}
	fields := map[string]*string{
		"full_name":        req.FullName,
		"gender":           req.Gender,
		"email":            req.Email,
		"phone":            req.Phone,
		"whatsapp":         req.Whatsapp,
		"crp":              req.CRP,
		"bio":              req.Bio,
		"image_url":        req.ImageURL,
		"video_url":        req.VideoURL,
		"instagram_url":    req.InstagramURL,
		"specialties":      req.Specialties,
		"specialties_data": req.SpecialtiesData,
		"faqs":             req.FAQs,
		"testimonials":     req.Testimonials,
		"street":           req.Street,
		"city":             req.City,
		"state":            req.State,
		"zip_code":         req.ZipCode,
	}
	for column, value := range fields {
		if value != nil {
			updateData[column] = *value
		}
	}

	if len(updateData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := h.DB.Model(&profile).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Published pages are composed from the cached site record, so profile
	// edits must drop it too.
	var site models.Site
	if err := h.DB.Where("profile_id = ?", id).First(&site).Error; err == nil {
		h.invalidate(c, site)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func (h *DashboardHandler) invalidate(c *gin.Context, site models.Site) {
	if h.Cache != nil {
		h.Cache.Invalidate(c.Request.Context(), site.Subdomain, site.CustomDomain)
	}
}
