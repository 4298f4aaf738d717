package api

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"psicosites/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// BlogHandler manages posts from the dashboard side. The public listing
// lives on SiteHandler and honors the show_blog flag.
type BlogHandler struct {
	DB *gorm.DB
}

func NewBlogHandler(db *gorm.DB) *BlogHandler {
	return &BlogHandler{DB: db}
}

func (h *BlogHandler) GetPosts(c *gin.Context) {
	siteID := c.Param("id")

	var posts []models.BlogPost
	if err := h.DB.Where("site_id = ?", siteID).Order("created_at DESC").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if posts == nil {
		posts = []models.BlogPost{}
	}

	c.JSON(http.StatusOK, posts)
}

type CreatePostRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

func (h *BlogHandler) CreatePost(c *gin.Context) {
	siteID := c.Param("id")

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var site models.Site
	if err := h.DB.Where("id = ?", siteID).First(&site).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	post := models.BlogPost{
		SiteID:    siteID,
		Title:     req.Title,
		Slug:      Slugify(req.Title),
		Content:   req.Content,
		Published: req.Published,
	}
	if req.Published {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := h.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": post.ID, "slug": post.Slug, "message": "Post created successfully"})
}

type UpdatePostRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

func (h *BlogHandler) UpdatePost(c *gin.Context) {
	id := c.Param("id")

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.BlogPost
	if err := h.DB.Where("id = ?", id).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	updateData := map[string]interface{}{}
	if req.Title != nil {
		updateData["title"] = *req.Title
		updateData["slug"] = Slugify(*req.Title)
	}
	if req.Content != nil {
		updateData["content"] = *req.Content
	}
	if req.Published != nil {
		updateData["published"] = *req.Published
		if *req.Published && post.PublishedAt == nil {
			now := time.Now()
			updateData["published_at"] = &now
		}
	}

	if len(updateData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := h.DB.Model(&post).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully"})
}

func (h *BlogHandler) DeletePost(c *gin.Context) {
	id := c.Param("id")

	result := h.DB.Where("id = ?", id).Delete(&models.BlogPost{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// Slugify lowercases the title and collapses everything outside [a-z0-9]
// into single hyphens. Accented characters are dropped, which is acceptable
// for URL slugs.
func Slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
