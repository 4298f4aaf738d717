// Package composer assembles the ordered list of sections a public site
// renders, from the resolved site and profile records. Composition is a pure
// function: the same input always produces the same page.
package composer

import (
	"psicosites/internal/models"
)

// DefaultPrimaryColor is used when the site theme does not define one.
const DefaultPrimaryColor = "#4F46E5"

const defaultSpecialtyIcon = "heart"

type SectionType string

const (
	SectionHeader       SectionType = "header"
	SectionHero         SectionType = "hero"
	SectionSpecialties  SectionType = "specialties"
	SectionVideo        SectionType = "video"
	SectionFAQ          SectionType = "faq"
	SectionTestimonials SectionType = "testimonials"
	SectionContact      SectionType = "contact"
	SectionFooter       SectionType = "footer"
)

// StyleParams carries the display parameters shared by every section. The
// primary color is threaded from a single source; sections never pick their
// own.
type StyleParams struct {
	PrimaryColor string `json:"primary_color"`
}

type HeaderContent struct {
	DisplayName  string `json:"display_name"`
	CRP          string `json:"crp,omitempty"`
	ShowBlogLink bool   `json:"show_blog_link"`
}

type HeroContent struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type VideoContent struct {
	EmbedURL string `json:"embed_url"`
}

type ContactContent struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Street   string `json:"street,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zip_code,omitempty"`
}

type FooterContent struct {
	DisplayName string `json:"display_name"`
	CRP         string `json:"crp,omitempty"`
	ShowEthics  bool   `json:"show_ethics"`
	ShowLGPD    bool   `json:"show_lgpd"`
	EthicsText  string `json:"ethics_text,omitempty"`
}

// Section is one renderable block of the public page. Exactly one content
// field is set, matching Type.
type Section struct {
	Type         SectionType          `json:"type"`
	Style        StyleParams          `json:"style"`
	Header       *HeaderContent       `json:"header,omitempty"`
	Hero         *HeroContent         `json:"hero,omitempty"`
	Specialties  []models.Specialty   `json:"specialties,omitempty"`
	Video        *VideoContent        `json:"video,omitempty"`
	FAQ          []models.FAQEntry    `json:"faq,omitempty"`
	Testimonials []models.Testimonial `json:"testimonials,omitempty"`
	Contact      *ContactContent      `json:"contact,omitempty"`
	Footer       *FooterContent       `json:"footer,omitempty"`
}

// Floating holds the floating contact affordances. Each button is gated
// solely on field presence, independent of any visibility flag.
type Floating struct {
	WhatsappURL  string `json:"whatsapp_url,omitempty"`
	InstagramURL string `json:"instagram_url,omitempty"`
}

// Page is the composed render plan for one public site.
type Page struct {
	SiteID       string    `json:"site_id"`
	Subdomain    string    `json:"subdomain"`
	DisplayName  string    `json:"display_name"`
	PrimaryColor string    `json:"primary_color"`
	ShowBlogNav  bool      `json:"show_blog_nav"`
	Floating     Floating  `json:"floating"`
	Sections     []Section `json:"sections"`
}

// Compose builds the ordered section list for a resolved site. Sections whose
// backing data is absent are omitted entirely, never rendered empty.
func Compose(site *models.Site, profile *models.Profile) Page {
	style := StyleParams{PrimaryColor: PrimaryColor(site)}
	name := DisplayName(profile)
	showBlog := flagEnabled(site.ShowBlog)

	page := Page{
		SiteID:       site.ID,
		Subdomain:    site.Subdomain,
		DisplayName:  name,
		PrimaryColor: style.PrimaryColor,
		ShowBlogNav:  showBlog,
		Floating: Floating{
			WhatsappURL:  WhatsappLink(profile.Whatsapp),
			InstagramURL: profile.InstagramURL,
		},
	}

	page.Sections = append(page.Sections, Section{
		Type:  SectionHeader,
		Style: style,
		Header: &HeaderContent{
			DisplayName:  name,
			CRP:          profile.CRP,
			ShowBlogLink: showBlog,
		},
	})

	page.Sections = append(page.Sections, Section{
		Type:  SectionHero,
		Style: style,
		Hero: &HeroContent{
			DisplayName: name,
			Bio:         profile.Bio,
			ImageURL:    profile.ImageURL,
		},
	})

	if specialties := SpecialtyList(profile); len(specialties) > 0 {
		page.Sections = append(page.Sections, Section{
			Type:        SectionSpecialties,
			Style:       style,
			Specialties: specialties,
		})
	}

	if embedURL, ok := EmbedURL(profile.VideoURL); ok {
		page.Sections = append(page.Sections, Section{
			Type:  SectionVideo,
			Style: style,
			Video: &VideoContent{EmbedURL: embedURL},
		})
	}

	if faqs := FAQList(profile); len(faqs) > 0 {
		page.Sections = append(page.Sections, Section{
			Type:  SectionFAQ,
			Style: style,
			FAQ:   faqs,
		})
	}

	if testimonials := profile.TestimonialEntries(); len(testimonials) > 0 {
		page.Sections = append(page.Sections, Section{
			Type:         SectionTestimonials,
			Style:        style,
			Testimonials: testimonials,
		})
	}

	page.Sections = append(page.Sections, Section{
		Type:  SectionContact,
		Style: style,
		Contact: &ContactContent{
			Email:    profile.Email,
			Phone:    profile.Phone,
			Whatsapp: profile.Whatsapp,
			Street:   profile.Street,
			City:     profile.City,
			State:    profile.State,
			ZipCode:  profile.ZipCode,
		},
	})

	page.Sections = append(page.Sections, Section{
		Type:  SectionFooter,
		Style: style,
		Footer: &FooterContent{
			DisplayName: name,
			CRP:         profile.CRP,
			ShowEthics:  flagEnabled(site.ShowEthicsSection),
			ShowLGPD:    flagEnabled(site.ShowLGPDSection),
			EthicsText:  site.EthicsText,
		},
	})

	return page
}

// DisplayName falls back to a generic role label so the page never renders
// an empty name.
func DisplayName(profile *models.Profile) string {
	if profile.FullName != "" {
		return profile.FullName
	}
	switch profile.Gender {
	case "male":
		return "Psicólogo"
	case "female":
		return "Psicóloga"
	default:
		return "Psicólogo(a)"
	}
}

// PrimaryColor returns the theme primary color or the platform default.
func PrimaryColor(site *models.Site) string {
	if color := site.ThemeConfig().PrimaryColor; color != "" {
		return color
	}
	return DefaultPrimaryColor
}

// SpecialtyList prefers the rich specialties_data entries; when only the
// flat name list exists, each name is normalized with an empty description
// and the default icon.
func SpecialtyList(profile *models.Profile) []models.Specialty {
	if rich := profile.SpecialtyDetails(); len(rich) > 0 {
		return rich
	}

	names := profile.SpecialtyNames()
	if len(names) == 0 {
		return nil
	}

	specialties := make([]models.Specialty, 0, len(names))
	for _, name := range names {
		specialties = append(specialties, models.Specialty{
			Name:        name,
			Description: "",
			Icon:        defaultSpecialtyIcon,
		})
	}
	return specialties
}

// FAQList keeps only complete FAQ entries: an id, a question and an answer
// are all required. Nil when none survive, so the section is omitted.
func FAQList(profile *models.Profile) []models.FAQEntry {
	var faqs []models.FAQEntry
	for _, entry := range profile.FAQEntries() {
		if entry.ID == "" || entry.Question == "" || entry.Answer == "" {
			continue
		}
		faqs = append(faqs, entry)
	}
	return faqs
}

// WhatsappLink builds a wa.me link from a stored whatsapp number. Empty in,
// empty out.
func WhatsappLink(number string) string {
	if number == "" {
		return ""
	}
	digits := make([]byte, 0, len(number))
	for i := 0; i < len(number); i++ {
		if number[i] >= '0' && number[i] <= '9' {
			digits = append(digits, number[i])
		}
	}
	if len(digits) == 0 {
		return ""
	}
	return "https://wa.me/" + string(digits)
}

// Default-on semantics: only an explicit false hides.
func flagEnabled(flag *bool) bool {
	return flag == nil || *flag
}
