package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver("")
	cases := []struct {
		name, in, want string
		home           bool
	}{
		{"bare domain", "wikipedia.org", "https://wikipedia.org", false},
		{"trimmed domain", "  wikipedia.org\t", "https://wikipedia.org", false},
		{"full address", "http://example.com/a?b=c", "http://example.com/a?b=c", false},
		{"phrase", "best pizza near me", "https://www.google.com/search?q=best%20pizza%20near%20me", false},
		{"dotted phrase", "what is go 1.22", "https://www.google.com/search?q=what%20is%20go%201.22", false},
		{"single word", "golang", "https://www.google.com/search?q=golang", false},
		{"unparseable with scheme", "http://[::1", "https://www.google.com/search?q=http%3A%2F%2F%5B%3A%3A1", false},
		{"reserved chars", "a&b=c", "https://www.google.com/search?q=a%26b%3Dc", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, home := r.Resolve(c.in)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.home, home)
		})
	}
}

func TestResolver_CustomEndpoint(t *testing.T) {
	r := NewResolver("https://duckduckgo.com/?q=")
	got, _ := r.Resolve("safe search")
	assert.Equal(t, "https://duckduckgo.com/?q=safe%20search", got)
	assert.Equal(t, "https://duckduckgo.com/?q=", r.Endpoint())
}

func TestResolver_SearchKeepsWhitespacePhrases(t *testing.T) {
	r := NewResolver("")
	assert.Equal(t, DefaultSearchEndpoint+"%20%20", r.Search("  "))
	assert.Equal(t, DefaultSearchEndpoint+"wikipedia.org", r.Search("wikipedia.org"))
}
