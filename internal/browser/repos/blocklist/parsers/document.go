package parsers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"

	logpkg "github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
)

// IsDocumentFile reports whether path names a JSON or TOML fragment
// document that ParseDocumentFile can read.
func IsDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".toml":
		return true
	}
	return false
}

// ParseDocumentFile reads a JSON or TOML fragment document with the same
// layout as the YAML form: top-level "domains" and "keywords" lists. A bare
// string is accepted as a one-element list. Unknown keys are rejected.
func ParseDocumentFile(path string, logger logpkg.Logger) (domains, keywords []domain.Fragment, err error) {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		parser = json.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return nil, nil, fmt.Errorf("unsupported document type: %s", path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		logger.Debug(map[string]any{"source": path, "error": err.Error()}, "parse_document_load_error")
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for _, key := range k.Keys() {
		if key != "domains" && key != "keywords" {
			return nil, nil, fmt.Errorf("decode %s: unknown key %q", path, key)
		}
	}

	domains = collect(stringValues(k.Get("domains")), domain.FragmentDomain, path, logger)
	keywords = collect(stringValues(k.Get("keywords")), domain.FragmentKeyword, path, logger)
	logger.Debug(map[string]any{"source": path, "domains": len(domains), "keywords": len(keywords)}, "parse_document_done")
	return domains, keywords, nil
}

// stringValues converts a parsed value (string or []any of strings) into a
// slice of strings, skipping non-string elements.
func stringValues(val any) []string {
	switch v := val.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
