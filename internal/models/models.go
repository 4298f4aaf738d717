package models

import (
	"encoding/json"
	"time"
)

// Profile represents a psychology professional's public profile data
type Profile struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FullName     string `gorm:"type:varchar(255)" json:"full_name"`
	Gender       string `gorm:"type:varchar(20)" json:"gender"` // male, female or empty
	Email        string `gorm:"type:varchar(255)" json:"email"`
	Phone        string `gorm:"type:varchar(50)" json:"phone"`
	Whatsapp     string `gorm:"type:varchar(50)" json:"whatsapp"`
	CRP          string `gorm:"type:varchar(50)" json:"crp"` // professional credential code
	Bio          string `gorm:"type:text" json:"bio"`
	ImageURL     string `gorm:"type:text" json:"image_url"`
	VideoURL     string `gorm:"type:text" json:"video_url"`
	InstagramURL string `gorm:"type:text" json:"instagram_url"`

	// JSON columns (text): flat specialty names, rich specialty entries,
	// FAQ entries and testimonials.
	Specialties     string `gorm:"type:text" json:"specialties"`
	SpecialtiesData string `gorm:"type:text" json:"specialties_data"`
	FAQs            string `gorm:"type:text" json:"faqs"`
	Testimonials    string `gorm:"type:text" json:"testimonials"`

	Street  string `gorm:"type:varchar(255)" json:"street"`
	City    string `gorm:"type:varchar(100)" json:"city"`
	State   string `gorm:"type:varchar(50)" json:"state"`
	ZipCode string `gorm:"type:varchar(20)" json:"zip_code"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Site represents a tenant's hosted marketing website
type Site struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProfileID    string  `gorm:"uniqueIndex;type:varchar(36);not null" json:"profile_id"`
	Profile      Profile `gorm:"foreignKey:ProfileID" json:"profile"`
	Subdomain    string  `gorm:"uniqueIndex;type:varchar(63);not null" json:"subdomain"`
	CustomDomain string  `gorm:"index;type:varchar(255)" json:"custom_domain"`
	IsPublished  bool    `gorm:"default:false" json:"is_published"`

	// Visibility flags are default-on: nil or true shows the section, only
	// an explicit false hides it.
	ShowBlog          *bool `json:"show_blog"`
	ShowEthicsSection *bool `json:"show_ethics_section"`
	ShowLGPDSection   *bool `json:"show_lgpd_section"`

	Theme      string `gorm:"type:text" json:"theme"` // JSON theme config
	EthicsText string `gorm:"type:text" json:"ethics_text"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Site) TableName() string {
	return "sites"
}

// BlogPost represents a post published under a tenant's site
type BlogPost struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SiteID      string     `gorm:"index;type:varchar(36);not null" json:"site_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string     `gorm:"type:varchar(255)" json:"slug"`
	Content     string     `gorm:"type:text" json:"content"`
	Published   bool       `gorm:"default:false" json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// Subscription mirrors the payment processor's view of a tenant account.
// Status transitions arrive through the billing webhook only.
type Subscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ProfileID        string     `gorm:"index;type:varchar(36);not null" json:"profile_id"`
	ExternalID       string     `gorm:"uniqueIndex;type:varchar(255)" json:"external_id"`
	Status           string     `gorm:"type:varchar(30);default:'pending'" json:"status"` // pending, active, past_due, canceled
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// TrackingEvent represents a single visitor interaction, write-only from the
// public site's perspective
type TrackingEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SiteID    string    `gorm:"index;type:varchar(36);not null" json:"site_id"`
	EventType string    `gorm:"type:varchar(30);not null" json:"event_type"`
	Referrer  string    `gorm:"type:text" json:"referrer"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TrackingEvent) TableName() string {
	return "tracking_events"
}

// --- JSON column value types ---

// Specialty is one entry of the rich specialties_data column
type Specialty struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// FAQEntry is one entry of the faqs column
type FAQEntry struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Testimonial is one entry of the testimonials column
type Testimonial struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Theme is the decoded theme column
type Theme struct {
	PrimaryColor string `json:"primary_color"`
}

// SpecialtyNames decodes the flat specialties column. Malformed or empty
// JSON decodes to nil, which downstream treats as "section absent".
func (p *Profile) SpecialtyNames() []string {
	var names []string
	if p.Specialties == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(p.Specialties), &names); err != nil {
		return nil
	}
	return names
}

// SpecialtyDetails decodes the rich specialties_data column.
func (p *Profile) SpecialtyDetails() []Specialty {
	var items []Specialty
	if p.SpecialtiesData == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(p.SpecialtiesData), &items); err != nil {
		return nil
	}
	return items
}

// FAQEntries decodes the faqs column.
func (p *Profile) FAQEntries() []FAQEntry {
	var items []FAQEntry
	if p.FAQs == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(p.FAQs), &items); err != nil {
		return nil
	}
	return items
}

// TestimonialEntries decodes the testimonials column.
func (p *Profile) TestimonialEntries() []Testimonial {
	var items []Testimonial
	if p.Testimonials == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(p.Testimonials), &items); err != nil {
		return nil
	}
	return items
}

// ThemeConfig decodes the theme column.
func (s *Site) ThemeConfig() Theme {
	var theme Theme
	if s.Theme == "" {
		return theme
	}
	if err := json.Unmarshal([]byte(s.Theme), &theme); err != nil {
		return Theme{}
	}
	return theme
}
