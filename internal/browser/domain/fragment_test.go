package domain

import "testing"

func TestParseFragmentKind(t *testing.T) {
	cases := []struct {
		in      string
		want    FragmentKind
		wantErr bool
	}{
		{"domain", FragmentDomain, false},
		{"DoMaIn", FragmentDomain, false},
		{"keyword", FragmentKeyword, false},
		{" KEYWORD ", FragmentKeyword, false},
		{"", 0, true},
		{"suffix", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseFragmentKind(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseFragmentKind(%q) expected error, got nil", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseFragmentKind(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFragmentKind(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFragmentKind_String(t *testing.T) {
	if FragmentDomain.String() != "domain" || FragmentKeyword.String() != "keyword" {
		t.Fatalf("unexpected names")
	}
	if got := FragmentKind(9).String(); got != "FragmentKind(9)" {
		t.Fatalf("unexpected fallback: %q", got)
	}
}

func TestNewFragment_FoldsAndTrims(t *testing.T) {
	f, err := NewDomainFragment("  XVideos ", " builtin ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Text != "xvideos" {
		t.Errorf("Text = %q, want xvideos", f.Text)
	}
	if f.Source != "builtin" {
		t.Errorf("Source = %q, want builtin", f.Source)
	}
	if !f.IsDomain() || f.IsKeyword() {
		t.Errorf("expected a domain fragment")
	}
}

func TestNewFragment_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		kind   FragmentKind
		source string
	}{
		{"empty text", "", FragmentDomain, "s"},
		{"blank text", "   ", FragmentKeyword, "s"},
		{"inner whitespace", "adult content", FragmentKeyword, "s"},
		{"empty source", "porn", FragmentDomain, ""},
		{"bad kind", "porn", FragmentKind(7), "s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewFragment(tc.text, tc.kind, tc.source); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFragment_ValidateRejectsUppercase(t *testing.T) {
	f := Fragment{Text: "Porn", Kind: FragmentDomain, Source: "s"}
	if err := f.Validate(); err == nil {
		t.Fatalf("expected error for non-folded text")
	}
}
