package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
	"github.com/haukened/beacon/internal/browser/repos/journal"
	"github.com/haukened/beacon/internal/browser/services/navigator"
)

// quickLink is a start page shortcut.
type quickLink struct {
	Name    string
	Address string
}

var quickLinks = []quickLink{
	{"Google", "https://www.google.com"},
	{"Wikipedia", "https://www.wikipedia.org"},
	{"YouTube", "https://www.youtube.com"},
	{"News", "https://news.google.com"},
}

// historyEntries is how many journal entries the history command prints.
const historyEntries = 5

// navigation is the part of the coordinator the shell drives.
type navigation interface {
	Submit(ctx context.Context, intent domain.NavigationIntent) error
	State() domain.NavigationState
}

// shell turns text commands into navigation intents and prints the
// coordinator's notifications. Output is serialized because notifications
// arrive on engine goroutines.
type shell struct {
	nav     navigation
	journal journal.Journal

	mu  sync.Mutex
	out io.Writer
}

var _ navigator.Observer = (*shell)(nil)

func newShell(nav navigation, j journal.Journal, out io.Writer) *shell {
	if j == nil {
		j = journal.Nop{}
	}
	return &shell{nav: nav, journal: j, out: out}
}

func (s *shell) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *shell) StateChanged(st domain.NavigationState) {
	s.printf("state: %s\n", navigator.Describe(st))
}

func (s *shell) Blocked(ev domain.BlockedEvent) {
	s.printf("Content Blocked: %s (matched %q at %s)\n", ev.Address, ev.Reason, ev.Checkpoint)
}

func (s *shell) NavigationFailed(f domain.NavigationFailure) {
	s.printf("failed: %v\n", f)
}

// run executes commands read from in until it is exhausted, quit is read or
// ctx is done.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read commands: %w", err)
					}
				default:
				}
				return nil
			}
			if quit := s.exec(ctx, line); quit {
				return nil
			}
		}
	}
}

// exec runs one command line and reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) (quit bool) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "go", "open":
		s.submit(ctx, domain.LoadAddress(arg))
	case "search":
		s.submit(ctx, domain.Search(arg))
	case "back":
		s.submit(ctx, domain.GoBack())
	case "forward":
		s.submit(ctx, domain.GoForward())
	case "reload":
		s.submit(ctx, domain.Reload())
	case "stop":
		s.submit(ctx, domain.Stop())
	case "refresh":
		s.submit(ctx, domain.RefreshOrStop(s.nav.State()))
	case "home":
		s.submit(ctx, domain.ClearToHome())
	case "links":
		for i, l := range quickLinks {
			s.printf("%d. %s\t%s\n", i+1, l.Name, l.Address)
		}
	case "link":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(quickLinks) {
			s.printf("usage: link <1-%d>\n", len(quickLinks))
			return false
		}
		s.submit(ctx, domain.LoadAddress(quickLinks[n-1].Address))
	case "history":
		s.history()
	case "state":
		s.printf("%s\n", navigator.Describe(s.nav.State()))
	case "help":
		s.printf("commands: go search back forward reload stop refresh home links link history state quit\n")
	case "quit", "exit":
		return true
	default:
		s.printf("unknown command %q (try help)\n", cmd)
	}
	return false
}

// submit applies an intent. Engine errors are reported to observers by the
// coordinator, so they are only logged here.
func (s *shell) submit(ctx context.Context, intent domain.NavigationIntent) {
	if err := s.nav.Submit(ctx, intent); err != nil {
		log.Debug(map[string]any{"intent": intent.String(), "error": err}, "intent_failed")
	}
}

func (s *shell) history() {
	events, err := s.journal.Recent(historyEntries)
	if err != nil {
		s.printf("history unavailable: %v\n", err)
		return
	}
	if len(events) == 0 {
		s.printf("no blocked attempts recorded\n")
		return
	}
	for _, ev := range events {
		s.printf("%s\n", formatBlocked(ev))
	}
}
