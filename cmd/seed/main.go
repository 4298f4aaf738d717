package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"psicosites/internal/config"
	"psicosites/internal/database"
	"psicosites/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Seeds demo tenants for local development: profile, published site with an
// active subscription, and a couple of blog posts each.
func main() {
	count := flag.Int("sites", 5, "number of demo sites to create")
	flag.Parse()

	cfg := config.LoadConfig()
	database.InitGorm(cfg)
	db := database.DB

	for i := 0; i < *count; i++ {
		person := gofakeit.Person()
		fullName := person.FirstName + " " + person.LastName
		gender := "female"
		if i%2 == 0 {
			gender = "male"
		}

		specialties, _ := json.Marshal([]string{"Ansiedade", "Depressão", "Terapia de Casal"})
		faqs, _ := json.Marshal([]models.FAQEntry{
			{ID: uuid.NewString(), Question: "Como funciona a primeira sessão?", Answer: gofakeit.Paragraph(1, 3, 10, " ")},
			{ID: uuid.NewString(), Question: "Qual a duração de cada sessão?", Answer: "As sessões duram 50 minutos."},
		})
		testimonials, _ := json.Marshal([]models.Testimonial{
			{Author: gofakeit.FirstName(), Text: gofakeit.Sentence(12)},
		})

		profile := models.Profile{
			ID:           uuid.NewString(),
			FullName:     fullName,
			Gender:       gender,
			Email:        gofakeit.Email(),
			Phone:        gofakeit.Phone(),
			Whatsapp:     "5511" + gofakeit.DigitN(9),
			CRP:          fmt.Sprintf("06/%s", gofakeit.DigitN(6)),
			Bio:          gofakeit.Paragraph(2, 4, 12, " "),
			ImageURL:     gofakeit.ImageURL(400, 400),
			VideoURL:     "https://youtu.be/dQw4w9WgXcQ",
			InstagramURL: "https://instagram.com/" + gofakeit.Username(),
			Specialties:  string(specialties),
			FAQs:         string(faqs),
			Testimonials: string(testimonials),
			City:         gofakeit.City(),
			State:        gofakeit.StateAbr(),
		}
		if err := db.Create(&profile).Error; err != nil {
			log.Fatalf("Failed to create profile: %v", err)
		}

		subdomain := slug(person.FirstName) + "-" + gofakeit.DigitN(3)
		site := models.Site{
			ID:          uuid.NewString(),
			ProfileID:   profile.ID,
			Subdomain:   subdomain,
			IsPublished: true,
			Theme:       `{"primary_color":"#4F46E5"}`,
		}
		if err := db.Create(&site).Error; err != nil {
			log.Fatalf("Failed to create site: %v", err)
		}

		periodEnd := time.Now().AddDate(0, 1, 0)
		sub := models.Subscription{
			ProfileID:        profile.ID,
			ExternalID:       "sub_" + uuid.NewString(),
			Status:           "active",
			CurrentPeriodEnd: &periodEnd,
		}
		if err := db.Create(&sub).Error; err != nil {
			log.Fatalf("Failed to create subscription: %v", err)
		}

		for j := 0; j < 2; j++ {
			now := time.Now()
			title := gofakeit.Sentence(5)
			post := models.BlogPost{
				SiteID:      site.ID,
				Title:       title,
				Slug:        slug(title),
				Content:     gofakeit.Paragraph(3, 5, 15, "\n\n"),
				Published:   true,
				PublishedAt: &now,
			}
			if err := db.Create(&post).Error; err != nil {
				log.Fatalf("Failed to create post: %v", err)
			}
		}

		log.Printf("Seeded site %s.psicosites.com.br for %s", subdomain, fullName)
	}

	log.Println("DONE!")
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
