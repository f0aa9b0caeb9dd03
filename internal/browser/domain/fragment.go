package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// FragmentKind defines which ordered set a blocklist fragment belongs to.
//
// domain  - known blocked site names, evaluated first
// keyword - explicit terms, evaluated after every domain fragment
type FragmentKind uint8

const (
	// FragmentDomain marks a blocked domain fragment.
	FragmentDomain FragmentKind = iota
	// FragmentKeyword marks a blocked keyword fragment.
	FragmentKeyword
)

// String returns a stable string representation of the fragment kind.
func (k FragmentKind) String() string {
	switch k {
	case FragmentDomain:
		return "domain"
	case FragmentKeyword:
		return "keyword"
	default:
		return fmt.Sprintf("FragmentKind(%d)", k)
	}
}

// ParseFragmentKind converts a string into a FragmentKind.
// Accepts: "domain", "keyword" (case-insensitive).
func ParseFragmentKind(s string) (FragmentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "domain":
		return FragmentDomain, nil
	case "keyword":
		return FragmentKeyword, nil
	default:
		return 0, fmt.Errorf("unsupported FragmentKind: %q", s)
	}
}

// Fragment is a single case-folded substring that blocks any address
// containing it.
//
// Notes:
// - Text is stored lowercased; matching is substring containment, not word matching.
// - Source identifies where the fragment came from ("builtin" or a file path).
type Fragment struct {
	Text   string
	Kind   FragmentKind
	Source string
}

// NewFragment constructs a Fragment, folding case and validating its fields.
func NewFragment(text string, kind FragmentKind, source string) (Fragment, error) {
	f := Fragment{
		Text:   strings.ToLower(strings.TrimSpace(text)),
		Kind:   kind,
		Source: strings.TrimSpace(source),
	}
	if err := f.Validate(); err != nil {
		return Fragment{}, err
	}
	return f, nil
}

// NewDomainFragment convenience constructor for a domain fragment.
func NewDomainFragment(text, source string) (Fragment, error) {
	return NewFragment(text, FragmentDomain, source)
}

// NewKeywordFragment convenience constructor for a keyword fragment.
func NewKeywordFragment(text, source string) (Fragment, error) {
	return NewFragment(text, FragmentKeyword, source)
}

// Validate checks the Fragment for required fields and supported values.
// An empty fragment would match every address and is rejected.
func (f Fragment) Validate() error {
	if f.Text == "" {
		return fmt.Errorf("fragment text must not be empty")
	}
	if strings.IndexFunc(f.Text, unicode.IsSpace) >= 0 {
		return fmt.Errorf("fragment %q must not contain whitespace", f.Text)
	}
	if f.Text != strings.ToLower(f.Text) {
		return fmt.Errorf("fragment %q must be lowercase", f.Text)
	}
	if f.Source == "" {
		return fmt.Errorf("fragment source must not be empty")
	}
	switch f.Kind {
	case FragmentDomain, FragmentKeyword:
		// ok
	default:
		return fmt.Errorf("unsupported FragmentKind: %d", f.Kind)
	}
	return nil
}

// IsDomain returns true when the fragment is a domain fragment.
func (f Fragment) IsDomain() bool { return f.Kind == FragmentDomain }

// IsKeyword returns true when the fragment is a keyword fragment.
func (f Fragment) IsKeyword() bool { return f.Kind == FragmentKeyword }
