package navigator

import (
	"net/url"
	"strings"
	"unicode"
)

// DefaultSearchEndpoint is the query template phrases are appended to.
const DefaultSearchEndpoint = "https://www.google.com/search?q="

// Resolver turns address-bar input into a fully qualified destination.
type Resolver struct {
	endpoint string
}

// NewResolver returns a Resolver using endpoint as the search template. An
// empty endpoint selects DefaultSearchEndpoint.
func NewResolver(endpoint string) *Resolver {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultSearchEndpoint
	}
	return &Resolver{endpoint: endpoint}
}

// Resolve maps input onto a destination. home is true when the trimmed
// input is empty and the caller should return to the start page.
//
//   - contains "://" and parses: used as-is
//   - contains "." and no whitespace: "https://" is prefixed
//   - anything else, including unparseable addresses, becomes a search
func (r *Resolver) Resolve(input string) (resolved string, home bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", true
	}
	if strings.Contains(s, "://") {
		if _, err := url.Parse(s); err == nil {
			return s, false
		}
		return r.Search(s), false
	}
	if strings.Contains(s, ".") && strings.IndexFunc(s, unicode.IsSpace) < 0 {
		return "https://" + s, false
	}
	return r.Search(s), false
}

// Search rewrites phrase into a query against the search endpoint. Spaces
// are encoded as %20.
func (r *Resolver) Search(phrase string) string {
	return r.endpoint + strings.ReplaceAll(url.QueryEscape(phrase), "+", "%20")
}

// Endpoint returns the configured search template.
func (r *Resolver) Endpoint() string { return r.endpoint }
