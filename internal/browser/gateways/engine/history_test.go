package engine

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

func entries(urls ...string) []*proto.PageNavigationEntry {
	out := make([]*proto.PageNavigationEntry, len(urls))
	for i, u := range urls {
		out[i] = &proto.PageNavigationEntry{ID: i + 1, URL: u}
	}
	return out
}

func TestReportable(t *testing.T) {
	assert.False(t, reportable(""))
	assert.False(t, reportable("about:blank"))
	assert.False(t, reportable("chrome-error://chromewebdata/"))
	assert.True(t, reportable("https://wikipedia.org/"))
	assert.True(t, reportable("about:srcdoc"))
}

func TestHistoryFlags(t *testing.T) {
	cases := []struct {
		name      string
		h         *proto.PageGetNavigationHistoryResult
		back, fwd bool
	}{
		{"nil", nil, false, false},
		{"fresh page", &proto.PageGetNavigationHistoryResult{CurrentIndex: 0, Entries: entries("about:blank")}, false, false},
		{"first load after blank", &proto.PageGetNavigationHistoryResult{CurrentIndex: 1, Entries: entries("about:blank", "https://a.example/")}, false, false},
		{"second load", &proto.PageGetNavigationHistoryResult{CurrentIndex: 2, Entries: entries("about:blank", "https://a.example/", "https://b.example/")}, true, false},
		{"went back", &proto.PageGetNavigationHistoryResult{CurrentIndex: 1, Entries: entries("about:blank", "https://a.example/", "https://b.example/")}, false, true},
		{"middle", &proto.PageGetNavigationHistoryResult{CurrentIndex: 1, Entries: entries("https://a.example/", "https://b.example/", "https://c.example/")}, true, true},
		{"index out of range", &proto.PageGetNavigationHistoryResult{CurrentIndex: 5, Entries: entries("https://a.example/")}, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			back, fwd := historyFlags(c.h)
			assert.Equal(t, c.back, back, "back")
			assert.Equal(t, c.fwd, fwd, "forward")
		})
	}
}

func TestCurrentEntry(t *testing.T) {
	h := &proto.PageGetNavigationHistoryResult{CurrentIndex: 1, Entries: entries("about:blank", "https://a.example/")}
	assert.Equal(t, "https://a.example/", currentEntry(h))
	assert.Equal(t, "", currentEntry(nil))
	assert.Equal(t, "", currentEntry(&proto.PageGetNavigationHistoryResult{CurrentIndex: -1}))
}

func TestFrameURL(t *testing.T) {
	assert.Equal(t, "", frameURL(nil))
	assert.Equal(t, "https://a.example/page", frameURL(&proto.PageFrame{URL: "https://a.example/page"}))
	assert.Equal(t, "https://a.example/page#top", frameURL(&proto.PageFrame{URL: "https://a.example/page", URLFragment: "#top"}))
}

func TestIsBlockedByClient(t *testing.T) {
	assert.True(t, isBlockedByClient("net::ERR_BLOCKED_BY_CLIENT"))
	assert.False(t, isBlockedByClient("net::ERR_NAME_NOT_RESOLVED"))
}
