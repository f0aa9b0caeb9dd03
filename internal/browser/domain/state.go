package domain

// Phase is the navigation phase derived from a NavigationState. Blocked is
// never a phase: a blocked attempt is reported as a BlockedEvent and leaves
// the state untouched.
type Phase uint8

const (
	PhaseOnStartPage Phase = iota
	PhaseIdle
	PhaseLoading
)

func (p Phase) String() string {
	switch p {
	case PhaseOnStartPage:
		return "on_start_page"
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// NavigationState is the authoritative view of the single browsing surface.
//
// Invariants:
// - OnStartPage == (CurrentAddress == "")
// - IsLoading is only true between an engine start callback and the matching finish or fail
//
// PendingAddress is the most recently issued load target that has not yet
// finished or failed; it is speculative and never drives OnStartPage.
type NavigationState struct {
	CurrentAddress string
	PendingAddress string
	IsLoading      bool
	CanGoBack      bool
	CanGoForward   bool
	OnStartPage    bool
}

// StartPage returns the state of a fresh surface: no address, no history.
func StartPage() NavigationState {
	return NavigationState{OnStartPage: true}
}

// Phase derives the navigation phase.
func (s NavigationState) Phase() Phase {
	switch {
	case s.IsLoading || s.PendingAddress != "":
		return PhaseLoading
	case s.CurrentAddress == "":
		return PhaseOnStartPage
	default:
		return PhaseIdle
	}
}

// Consistent reports whether the state honours the start-page invariant.
func (s NavigationState) Consistent() bool {
	return s.OnStartPage == (s.CurrentAddress == "")
}
