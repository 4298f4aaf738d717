package resolver

import (
	"context"
	"errors"
	"log"

	"psicosites/internal/models"

	"gorm.io/gorm"
)

// ErrSiteNotFound is returned when no published site matches the requested
// domain. Store-level failures are returned as distinct errors so they can be
// logged, but callers render the same not-found fallback for both.
var ErrSiteNotFound = errors.New("site not found")

// SiteStore looks up published site records joined with their profile.
type SiteStore interface {
	FindPublishedByDomain(ctx context.Context, domain string) (*models.Site, error)
}

// GormStore is the SiteStore backed by the relational database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FindPublishedByDomain matches either the subdomain or the custom domain.
// Unpublished sites are excluded at the query level.
func (s *GormStore) FindPublishedByDomain(ctx context.Context, domain string) (*models.Site, error) {
	var site models.Site
	err := s.db.WithContext(ctx).
		Preload("Profile").
		Where("(subdomain = ? OR custom_domain = ?) AND is_published = ?", domain, domain, true).
		First(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

// Resolver resolves a subdomain-or-custom-domain string to a published site.
type Resolver struct {
	store SiteStore
}

func New(store SiteStore) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Resolve(ctx context.Context, domain string) (*models.Site, error) {
	if domain == "" {
		return nil, ErrSiteNotFound
	}

	site, err := r.store.FindPublishedByDomain(ctx, domain)
	if err != nil {
		if !errors.Is(err, ErrSiteNotFound) {
			log.Printf("Site store error resolving %q: %v", domain, err)
		}
		return nil, err
	}

	// An unpublished site must never resolve, even if the store returned it.
	if site == nil || !site.IsPublished {
		return nil, ErrSiteNotFound
	}

	return site, nil
}
