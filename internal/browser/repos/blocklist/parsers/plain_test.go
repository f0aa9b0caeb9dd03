package parsers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
)

func TestParsePlainList_Domains(t *testing.T) {
	input := "\ufeff# family list\n" +
		"*.Casino-Site.example\n" +
		"pornhub # inline\n" +
		"\n" +
		".xhamster.\n" +
		"PORNHUB\n" +
		"two words\n"
	got, err := ParsePlainList(strings.NewReader(input), domain.FragmentDomain, "family.txt", log.NewNoopLogger())
	if err != nil {
		t.Fatalf("ParsePlainList: %v", err)
	}
	want := []string{"casino-site.example", "pornhub", "xhamster"}
	if len(got) != len(want) {
		t.Fatalf("got %d fragments, want %d: %#v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Text != w || got[i].Kind != domain.FragmentDomain || got[i].Source != "family.txt" {
			t.Fatalf("fragment[%d] = %+v, want %q", i, got[i], w)
		}
	}
}

func TestParsePlainList_KeywordsKeepDots(t *testing.T) {
	got, err := ParsePlainList(strings.NewReader(".onion\nBetting\n"), domain.FragmentKeyword, "kw", log.NewNoopLogger())
	if err != nil {
		t.Fatalf("ParsePlainList: %v", err)
	}
	if len(got) != 2 || got[0].Text != ".onion" || got[1].Text != "betting" {
		t.Fatalf("unexpected keywords: %#v", got)
	}
	if !got[0].IsKeyword() {
		t.Fatalf("expected keyword kind")
	}
}

func TestParsePlainList_ScannerError(t *testing.T) {
	big := bytes.Repeat([]byte{'a'}, 70000)
	if _, err := ParsePlainList(bytes.NewReader(big), domain.FragmentKeyword, "s", log.NewNoopLogger()); err == nil {
		t.Fatalf("expected scanner error for oversized line")
	}
}
