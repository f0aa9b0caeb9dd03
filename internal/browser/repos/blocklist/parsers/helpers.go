package parsers

import (
	"net"
	"strings"
	"unicode"

	"github.com/haukened/beacon/internal/browser/domain"
)

// stripLineBOM removes a UTF-8 byte order mark from the start of a line.
func stripLineBOM(line string) string {
	return strings.TrimPrefix(line, "\ufeff")
}

// classifyLine reports whether a raw line is blank or a whole-line comment.
func classifyLine(line string) (isEmpty, isComment bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true, false
	}
	return false, strings.HasPrefix(trimmed, "#")
}

// stripInlineComment drops everything from the first '#'.
func stripInlineComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// normalizeFragment trims and folds a raw token. For domain fragments the
// wildcard markers "*." and "." and any trailing dots are removed, since
// matching is substring-based and they add nothing.
func normalizeFragment(raw string, kind domain.FragmentKind) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if kind == domain.FragmentDomain {
		s = strings.TrimPrefix(s, "*.")
		s = strings.TrimPrefix(s, ".")
		for strings.HasSuffix(s, ".") {
			s = strings.TrimSuffix(s, ".")
		}
	}
	return s
}

// isUsableFragment rejects tokens that could never appear in an encoded
// address, and wildcard leftovers.
func isUsableFragment(s string) bool {
	if s == "" {
		return false
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	return !strings.Contains(s, "*")
}

// localHostnames are loopback aliases commonly shipped in hosts files; as
// substrings they would block far more than intended.
var localHostnames = map[string]struct{}{
	"localhost":             {},
	"localhost.localdomain": {},
	"local":                 {},
	"broadcasthost":         {},
	"ip6-localhost":         {},
	"ip6-loopback":          {},
}

// isHostsDomain reports whether a hosts-file hostname should become a domain
// fragment: it needs at least two labels, must not be an IP or loopback alias.
func isHostsDomain(name string) bool {
	if _, ok := localHostnames[name]; ok {
		return false
	}
	if net.ParseIP(name) != nil {
		return false
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || len(label) > 63 {
			return false
		}
	}
	return len(name) <= 255
}
