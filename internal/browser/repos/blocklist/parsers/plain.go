package parsers

import (
	"bufio"
	"io"

	logpkg "github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
)

// ParsePlainList parses a newline-delimited list of fragments of a single kind.
//
// Behavior:
// - Supports comments starting with '#' (inline or whole-line)
// - Trims surrounding whitespace and folds case
// - For domain lists strips leading "*." or "." and trailing dots
// - Skips empty lines and tokens containing whitespace or '*'
// - De-duplicates while preserving first-seen order
// - Each fragment is attributed to the provided source
func ParsePlainList(r io.Reader, kind domain.FragmentKind, source string, logger logpkg.Logger) ([]domain.Fragment, error) {
	scanner := bufio.NewScanner(r)

	seen := make(map[string]struct{})
	out := make([]domain.Fragment, 0, 64)
	logger.Debug(map[string]any{"source": source, "kind": kind.String()}, "parse_plain_list_start")
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := stripLineBOM(scanner.Text())

		if isEmpty, isComment := classifyLine(line); isEmpty || isComment {
			continue
		}

		text := normalizeFragment(stripInlineComment(line), kind)
		if !isUsableFragment(text) {
			logger.Debug(map[string]any{"line": lineNum, "raw": line}, "skip_unusable_fragment")
			continue
		}
		if _, ok := seen[text]; ok {
			logger.Debug(map[string]any{"line": lineNum, "fragment": text}, "skip_duplicate")
			continue
		}

		f, err := domain.NewFragment(text, kind, source)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "fragment": text, "error": err.Error()}, "skip_constructor_error")
			continue
		}
		out = append(out, f)
		seen[text] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_plain_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_plain_list_done")
	return out, nil
}
