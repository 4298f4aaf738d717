package tracking

import (
	"net/url"
	"strings"
)

// Click describes a clicked element as reported by the public page. All
// classification happens here, at a single point, instead of per-element
// listeners on the page.
type Click struct {
	TargetURL string `json:"target_url"` // href of the clicked anchor, if any
	CTAMarker bool   `json:"cta_marker"` // element carried an explicit CTA attribute
	Text      string `json:"text"`       // visible text of the element
}

var scheduleKeywords = []string{
	"agendar",
	"agende",
	"marcar consulta",
	"marque sua consulta",
}

// ClassifyClick maps a click to a tracking event type. WhatsApp links win
// over CTA classification; clicks matching neither are not tracked.
func ClassifyClick(click Click) (string, bool) {
	if IsWhatsappURL(click.TargetURL) {
		return EventWhatsappClick, true
	}
	if click.CTAMarker {
		return EventCTAClick, true
	}
	if isContactAnchor(click.TargetURL) {
		return EventCTAClick, true
	}
	text := strings.ToLower(click.Text)
	for _, keyword := range scheduleKeywords {
		if strings.Contains(text, keyword) {
			return EventCTAClick, true
		}
	}
	return "", false
}

// IsWhatsappURL reports whether the target is a WhatsApp messaging link.
func IsWhatsappURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme == "whatsapp" {
		return true
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	switch host {
	case "wa.me":
		return true
	case "api.whatsapp.com", "web.whatsapp.com":
		return strings.HasPrefix(parsed.Path, "/send")
	}
	return false
}

func isContactAnchor(raw string) bool {
	if raw == "" {
		return false
	}
	if raw == "#contato" || strings.HasSuffix(raw, "#contato") {
		return true
	}
	return false
}
