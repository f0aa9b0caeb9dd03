package domain

import "fmt"

// IntentKind tags a NavigationIntent.
type IntentKind uint8

const (
	IntentLoadAddress IntentKind = iota
	IntentSearch
	IntentGoBack
	IntentGoForward
	IntentReload
	IntentStop
	IntentClearToHome
)

func (k IntentKind) String() string {
	switch k {
	case IntentLoadAddress:
		return "load_address"
	case IntentSearch:
		return "search"
	case IntentGoBack:
		return "go_back"
	case IntentGoForward:
		return "go_forward"
	case IntentReload:
		return "reload"
	case IntentStop:
		return "stop"
	case IntentClearToHome:
		return "clear_to_home"
	default:
		return fmt.Sprintf("IntentKind(%d)", k)
	}
}

// NavigationIntent is a one-shot command from the presentation layer. Only
// LoadAddress and Search carry Input; it is ignored for the other kinds.
type NavigationIntent struct {
	Kind  IntentKind
	Input string
}

// LoadAddress asks to visit whatever the user typed in the address bar.
func LoadAddress(candidate string) NavigationIntent {
	return NavigationIntent{Kind: IntentLoadAddress, Input: candidate}
}

// Search asks to run phrase through the search endpoint, as the start page
// search box does.
func Search(phrase string) NavigationIntent {
	return NavigationIntent{Kind: IntentSearch, Input: phrase}
}

func GoBack() NavigationIntent      { return NavigationIntent{Kind: IntentGoBack} }
func GoForward() NavigationIntent   { return NavigationIntent{Kind: IntentGoForward} }
func Reload() NavigationIntent      { return NavigationIntent{Kind: IntentReload} }
func Stop() NavigationIntent        { return NavigationIntent{Kind: IntentStop} }
func ClearToHome() NavigationIntent { return NavigationIntent{Kind: IntentClearToHome} }

// IsDestinationBearing reports whether the intent names a destination that
// must be classified before the engine sees it.
func (i NavigationIntent) IsDestinationBearing() bool {
	return i.Kind == IntentLoadAddress || i.Kind == IntentSearch
}

func (i NavigationIntent) String() string {
	if i.IsDestinationBearing() {
		return fmt.Sprintf("%s(%q)", i.Kind, i.Input)
	}
	return i.Kind.String()
}

// RefreshOrStop maps the single reload/stop toolbar button onto the intent
// that applies to the given state.
func RefreshOrStop(s NavigationState) NavigationIntent {
	if s.IsLoading {
		return Stop()
	}
	return Reload()
}
