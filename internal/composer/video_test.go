package composer

import "testing"

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"youtu.be short link", "https://youtu.be/abc123", "https://www.youtube.com/embed/abc123", true},
		{"youtube watch link", "https://www.youtube.com/watch?v=abc123", "https://www.youtube.com/embed/abc123", true},
		{"youtube watch with extra params", "https://youtube.com/watch?v=abc123&t=42s", "https://www.youtube.com/embed/abc123", true},
		{"youtube embed link", "https://www.youtube.com/embed/abc123", "https://www.youtube.com/embed/abc123", true},
		{"vimeo numeric", "https://vimeo.com/987654", "https://player.vimeo.com/video/987654", true},
		{"vimeo player link", "https://player.vimeo.com/video/987654", "https://player.vimeo.com/video/987654", true},
		{"empty", "", "", false},
		{"unrecognized host", "https://example.com/watch?v=abc123", "", false},
		{"vimeo non-numeric", "https://vimeo.com/channels/staffpicks", "", false},
		{"youtube without video id", "https://www.youtube.com/feed/subscriptions", "", false},
		{"not a url", "no caso de dúvidas", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EmbedURL(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("EmbedURL(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
