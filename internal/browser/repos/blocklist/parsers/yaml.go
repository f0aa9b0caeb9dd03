package parsers

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	logpkg "github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
)

// fragmentDocument is the YAML layout of a fragment list:
//
//	domains:
//	  - pornhub
//	keywords:
//	  - casino
type fragmentDocument struct {
	Domains  []string `yaml:"domains"`
	Keywords []string `yaml:"keywords"`
}

// ParseYAMLList parses a YAML fragment document. Entries are normalized and
// filtered exactly as ParsePlainList does; order is preserved per set.
func ParseYAMLList(r io.Reader, source string, logger logpkg.Logger) (domains, keywords []domain.Fragment, err error) {
	var doc fragmentDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_yaml_list_decode_error")
		return nil, nil, fmt.Errorf("decode %s: %w", source, err)
	}
	domains = collect(doc.Domains, domain.FragmentDomain, source, logger)
	keywords = collect(doc.Keywords, domain.FragmentKeyword, source, logger)
	logger.Debug(map[string]any{"source": source, "domains": len(domains), "keywords": len(keywords)}, "parse_yaml_list_done")
	return domains, keywords, nil
}

func collect(raw []string, kind domain.FragmentKind, source string, logger logpkg.Logger) []domain.Fragment {
	seen := make(map[string]struct{}, len(raw))
	out := make([]domain.Fragment, 0, len(raw))
	for i, r := range raw {
		text := normalizeFragment(r, kind)
		if !isUsableFragment(text) {
			logger.Debug(map[string]any{"index": i, "raw": r, "kind": kind.String()}, "skip_unusable_fragment")
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		f, err := domain.NewFragment(text, kind, source)
		if err != nil {
			continue
		}
		out = append(out, f)
		seen[text] = struct{}{}
	}
	return out
}
