package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"psicosites/internal/models"
	"psicosites/internal/resolver"
	"psicosites/internal/tracking"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	site *models.Site
	err  error
}

func (s *stubResolver) Resolve(ctx context.Context, domain string) (*models.Site, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.site, nil
}

type countingSink struct {
	mu     sync.Mutex
	events []tracking.Event
}

func (s *countingSink) Deliver(ctx context.Context, event tracking.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Profile{},
		&models.Site{},
		&models.BlogPost{},
		&models.Subscription{},
		&models.TrackingEvent{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func publishedSite() *models.Site {
	return &models.Site{
		ID:          "site-1",
		ProfileID:   "profile-1",
		Subdomain:   "maria",
		IsPublished: true,
		Profile: models.Profile{
			ID:       "profile-1",
			FullName: "Maria Souza",
			Whatsapp: "5511999990000",
		},
	}
}

func TestGetSiteResolved(t *testing.T) {
	sink := &countingSink{}
	publisher := tracking.NewPublisher(16, sink)
	handler := NewSiteHandler(&stubResolver{site: publishedSite()}, nil, publisher, tracking.NewMemoryLedger(), "https://psicosites.com.br")

	router := gin.New()
	router.GET("/sites/:domain", handler.GetSite)

	req := httptest.NewRequest(http.MethodGet, "/sites/maria", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var page struct {
		SiteID      string `json:"site_id"`
		DisplayName string `json:"display_name"`
		Sections    []struct {
			Type string `json:"type"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.SiteID != "site-1" {
		t.Fatalf("site_id = %q, want site-1", page.SiteID)
	}
	if page.DisplayName != "Maria Souza" {
		t.Fatalf("display_name = %q", page.DisplayName)
	}
	if len(page.Sections) == 0 {
		t.Fatal("expected composed sections in response")
	}

	publisher.Close()
	pageViews := 0
	for _, e := range sink.events {
		if e.EventType == tracking.EventPageView {
			pageViews++
		}
	}
	if pageViews != 1 {
		t.Fatalf("expected exactly one page_view per render, got %d", pageViews)
	}
}

func TestGetSiteNotFoundFallback(t *testing.T) {
	publisher := tracking.NewPublisher(16, &countingSink{})
	defer publisher.Close()
	handler := NewSiteHandler(&stubResolver{err: resolver.ErrSiteNotFound}, nil, publisher, tracking.NewMemoryLedger(), "https://psicosites.com.br")

	router := gin.New()
	router.GET("/sites/:domain", handler.GetSite)

	req := httptest.NewRequest(http.MethodGet, "/sites/desconhecido", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["signup_url"] != "https://psicosites.com.br" {
		t.Fatalf("fallback must offer the signup entry point, got %+v", body)
	}
}

func TestGetSiteStoreErrorDegradesToNotFound(t *testing.T) {
	publisher := tracking.NewPublisher(16, &countingSink{})
	defer publisher.Close()
	handler := NewSiteHandler(&stubResolver{err: errors.New("connection refused")}, nil, publisher, tracking.NewMemoryLedger(), "https://psicosites.com.br")

	router := gin.New()
	router.GET("/sites/:domain", handler.GetSite)

	req := httptest.NewRequest(http.MethodGet, "/sites/maria", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("store errors must render the fallback, got status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("raw store error leaked to the visitor: %s", rec.Body.String())
	}
}

func TestGetSiteBlogHiddenByFlag(t *testing.T) {
	publisher := tracking.NewPublisher(16, &countingSink{})
	defer publisher.Close()

	hidden := false
	site := publishedSite()
	site.ShowBlog = &hidden

	handler := NewSiteHandler(&stubResolver{site: site}, nil, publisher, tracking.NewMemoryLedger(), "https://psicosites.com.br")
	router := gin.New()
	router.GET("/sites/:domain/blog", handler.GetSiteBlog)

	req := httptest.NewRequest(http.MethodGet, "/sites/maria/blog", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("blog hidden by flag must 404, got %d", rec.Code)
	}
}

func TestGetSiteBlogListsPublishedPosts(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	posts := []models.BlogPost{
		{SiteID: "site-1", Title: "Publicado", Slug: "publicado", Published: true, PublishedAt: &now},
		{SiteID: "site-1", Title: "Rascunho", Slug: "rascunho", Published: false},
		{SiteID: "site-2", Title: "Outro site", Slug: "outro", Published: true, PublishedAt: &now},
	}
	for i := range posts {
		if err := db.Create(&posts[i]).Error; err != nil {
			t.Fatalf("failed to seed post: %v", err)
		}
	}

	publisher := tracking.NewPublisher(16, &countingSink{})
	defer publisher.Close()
	handler := NewSiteHandler(&stubResolver{site: publishedSite()}, db, publisher, tracking.NewMemoryLedger(), "https://psicosites.com.br")

	router := gin.New()
	router.GET("/sites/:domain/blog", handler.GetSiteBlog)

	req := httptest.NewRequest(http.MethodGet, "/sites/maria/blog", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Posts []models.BlogPost `json:"posts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Posts) != 1 || body.Posts[0].Title != "Publicado" {
		t.Fatalf("expected only the published post of this site, got %+v", body.Posts)
	}
}
