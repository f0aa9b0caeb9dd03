package parsers

import (
	"bufio"
	"io"
	"strings"

	logpkg "github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
)

// ParseHostsFile parses /etc/hosts-style blocklists into domain fragments.
//
// Rules:
// - Ignore the IP field; extract one or more hostnames following it
// - Skip comments (whole-line or inline after '#') and blank lines
// - Skip wildcard tokens, IPs, single-label names and loopback aliases
// - De-duplicate, preserving first-seen order
func ParseHostsFile(r io.Reader, source string, logger logpkg.Logger) ([]domain.Fragment, error) {
	scanner := bufio.NewScanner(r)

	seen := make(map[string]struct{})
	out := make([]domain.Fragment, 0, 256)

	logger.Debug(map[string]any{"source": source}, "parse_hosts_start")

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := stripLineBOM(scanner.Text())

		if isEmpty, isComment := classifyLine(line); isEmpty || isComment {
			continue
		}

		fields := strings.Fields(stripInlineComment(line))
		if len(fields) < 2 {
			logger.Debug(map[string]any{"line": lineNum}, "hosts_no_hostnames")
			continue
		}

		for _, raw := range fields[1:] {
			if strings.HasPrefix(raw, ".") || strings.Contains(raw, "*") {
				logger.Debug(map[string]any{"line": lineNum, "raw": raw}, "hosts_skip_invalid_token")
				continue
			}
			name := normalizeFragment(raw, domain.FragmentDomain)
			if !isHostsDomain(name) {
				logger.Debug(map[string]any{"line": lineNum, "name": name}, "hosts_skip_non_domain")
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			f, err := domain.NewDomainFragment(name, source)
			if err != nil {
				logger.Debug(map[string]any{"line": lineNum, "name": name, "error": err.Error()}, "hosts_skip_constructor_error")
				continue
			}
			out = append(out, f)
			seen[name] = struct{}{}
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_hosts_scan_error")
		return nil, err
	}

	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_hosts_done")
	return out, nil
}
