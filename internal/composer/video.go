package composer

import (
	"net/url"
	"strings"
)

// EmbedURL converts a pasted video URL into an embeddable player URL.
// Recognized sources are YouTube (watch?v=, youtu.be/ and /embed/ shapes) and
// Vimeo (numeric path). Anything else returns false and the video section is
// silently omitted.
func EmbedURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")

	switch host {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		if id := parsed.Query().Get("v"); id != "" {
			return "https://www.youtube.com/embed/" + id, true
		}
		if rest, ok := strings.CutPrefix(parsed.Path, "/embed/"); ok {
			if id := firstSegment(rest); id != "" {
				return "https://www.youtube.com/embed/" + id, true
			}
		}
	case "youtu.be":
		if id := firstSegment(strings.TrimPrefix(parsed.Path, "/")); id != "" {
			return "https://www.youtube.com/embed/" + id, true
		}
	case "vimeo.com", "player.vimeo.com":
		segment := firstSegment(strings.TrimPrefix(parsed.Path, "/"))
		if segment == "video" {
			segment = secondSegment(strings.TrimPrefix(parsed.Path, "/"))
		}
		if isNumeric(segment) {
			return "https://player.vimeo.com/video/" + segment, true
		}
	}

	return "", false
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

func secondSegment(path string) string {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
