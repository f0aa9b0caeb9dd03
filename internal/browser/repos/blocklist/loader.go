package blocklist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
	"github.com/haukened/beacon/internal/browser/repos/blocklist/parsers"
)

// Sources lists where fragments come from. Files are read once at startup.
type Sources struct {
	Builtin       bool
	DomainFiles   []string
	KeywordFiles  []string
	DocumentFiles []string
}

// LoadFragments reads every configured source and returns the merged ordered
// sets: built-ins first, then domain or keyword files, then YAML documents,
// each in the order given. Duplicates keep their first occurrence. Domain
// files named "hosts" or ending in ".hosts" are parsed as hosts files.
func LoadFragments(src Sources, logger log.Logger) (domains, keywords []domain.Fragment, err error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	m := newMerger()
	if src.Builtin {
		m.add(DefaultDomainFragments())
		m.add(DefaultKeywordFragments())
	}

	for _, path := range src.DomainFiles {
		frags, err := readFile(path, func(f *os.File) ([]domain.Fragment, error) {
			if isHostsFile(path) {
				return parsers.ParseHostsFile(f, path, logger)
			}
			return parsers.ParsePlainList(f, domain.FragmentDomain, path, logger)
		})
		if err != nil {
			return nil, nil, err
		}
		m.add(frags)
	}
	for _, path := range src.KeywordFiles {
		frags, err := readFile(path, func(f *os.File) ([]domain.Fragment, error) {
			return parsers.ParsePlainList(f, domain.FragmentKeyword, path, logger)
		})
		if err != nil {
			return nil, nil, err
		}
		m.add(frags)
	}
	for _, path := range src.DocumentFiles {
		doms, kws, err := readDocument(path, logger)
		if err != nil {
			return nil, nil, err
		}
		m.add(doms)
		m.add(kws)
	}

	logger.Info(map[string]any{
		"domains":  len(m.domains),
		"keywords": len(m.keywords),
		"builtin":  src.Builtin,
		"files":    len(src.DomainFiles) + len(src.KeywordFiles) + len(src.DocumentFiles),
	}, "blocklist_loaded")
	return m.domains, m.keywords, nil
}

func readFile(path string, parse func(*os.File) ([]domain.Fragment, error)) ([]domain.Fragment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blocklist %s: %w", path, err)
	}
	defer f.Close()
	frags, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse blocklist %s: %w", path, err)
	}
	return frags, nil
}

// readDocument parses a fragment document, choosing the decoder by extension:
// JSON and TOML through koanf, anything else as YAML.
func readDocument(path string, logger log.Logger) (domains, keywords []domain.Fragment, err error) {
	if parsers.IsDocumentFile(path) {
		domains, keywords, err = parsers.ParseDocumentFile(path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("parse blocklist %s: %w", path, err)
		}
		return domains, keywords, nil
	}
	domains, err = readFile(path, func(f *os.File) ([]domain.Fragment, error) {
		d, k, err := parsers.ParseYAMLList(f, path, logger)
		keywords = k
		return d, err
	})
	if err != nil {
		return nil, nil, err
	}
	return domains, keywords, nil
}

func isHostsFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return base == "hosts" || strings.HasSuffix(base, ".hosts")
}

type merger struct {
	seen     map[domain.FragmentKind]map[string]struct{}
	domains  []domain.Fragment
	keywords []domain.Fragment
}

func newMerger() *merger {
	return &merger{seen: map[domain.FragmentKind]map[string]struct{}{
		domain.FragmentDomain:  {},
		domain.FragmentKeyword: {},
	}}
}

func (m *merger) add(frags []domain.Fragment) {
	for _, f := range frags {
		set, ok := m.seen[f.Kind]
		if !ok {
			continue
		}
		if _, dup := set[f.Text]; dup {
			continue
		}
		set[f.Text] = struct{}{}
		if f.IsDomain() {
			m.domains = append(m.domains, f)
		} else {
			m.keywords = append(m.keywords, f)
		}
	}
}
