package engine

import (
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// blankPage is the placeholder document a fresh page starts on.
const blankPage = "about:blank"

// reportable reports whether a main-frame URL is a real destination. The
// blank placeholder and the engine's internal error pages are not.
func reportable(u string) bool {
	switch {
	case u == "", u == blankPage:
		return false
	case strings.HasPrefix(u, "chrome-error://"), strings.HasPrefix(u, "devtools://"):
		return false
	}
	return true
}

// historyFlags derives back/forward capability, ignoring the leading
// placeholder entries a fresh page carries.
func historyFlags(h *proto.PageGetNavigationHistoryResult) (canGoBack, canGoForward bool) {
	if h == nil || len(h.Entries) == 0 {
		return false, false
	}
	cur := h.CurrentIndex
	if cur < 0 || cur >= len(h.Entries) {
		return false, false
	}
	for i := 0; i < cur; i++ {
		if e := h.Entries[i]; e != nil && reportable(e.URL) {
			canGoBack = true
			break
		}
	}
	for i := cur + 1; i < len(h.Entries); i++ {
		if e := h.Entries[i]; e != nil && reportable(e.URL) {
			canGoForward = true
			break
		}
	}
	return canGoBack, canGoForward
}

// currentEntry returns the URL of the current history entry.
func currentEntry(h *proto.PageGetNavigationHistoryResult) string {
	if h == nil || h.CurrentIndex < 0 || h.CurrentIndex >= len(h.Entries) || h.Entries[h.CurrentIndex] == nil {
		return ""
	}
	return h.Entries[h.CurrentIndex].URL
}

// frameURL joins a frame's URL with its fragment.
func frameURL(f *proto.PageFrame) string {
	if f == nil {
		return ""
	}
	if f.URLFragment != "" {
		return f.URL + f.URLFragment
	}
	return f.URL
}

// isBlockedByClient reports whether a load failure is the engine's echo of
// a denied policy query.
func isBlockedByClient(errorText string) bool {
	return strings.Contains(errorText, "ERR_BLOCKED_BY_CLIENT")
}
