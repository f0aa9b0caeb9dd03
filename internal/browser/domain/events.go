package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrBlocked is the failure an engine reports for a load it refused on
// the classifier's behalf. The BlockedEvent already covers it.
var ErrBlocked = errors.New("navigation blocked")

// Checkpoint names the gate at which a destination was classified.
type Checkpoint uint8

const (
	// CheckpointIntent is the user-initiated top-level load.
	CheckpointIntent Checkpoint = iota
	// CheckpointPolicy is the engine's pre-navigation policy query.
	CheckpointPolicy
	// CheckpointCommit is the engine reporting a committed or finished address.
	CheckpointCommit
)

func (c Checkpoint) String() string {
	switch c {
	case CheckpointIntent:
		return "intent"
	case CheckpointPolicy:
		return "policy"
	case CheckpointCommit:
		return "commit"
	default:
		return fmt.Sprintf("Checkpoint(%d)", c)
	}
}

// ParseCheckpoint is the inverse of Checkpoint.String.
func ParseCheckpoint(s string) (Checkpoint, error) {
	switch s {
	case "intent":
		return CheckpointIntent, nil
	case "policy":
		return CheckpointPolicy, nil
	case "commit":
		return CheckpointCommit, nil
	default:
		return 0, fmt.Errorf("unsupported Checkpoint: %q", s)
	}
}

// BlockedEvent is emitted exactly once per blocked attempt. It never
// changes CurrentAddress or IsLoading.
type BlockedEvent struct {
	ID          string
	Address     string
	Reason      string
	Kind        FragmentKind
	Source      string
	Site        string // registrable domain of Address
	Checkpoint  Checkpoint
	Subresource bool // true when an engine sub-resource load was denied
	At          time.Time
}

// NavigationFailure reports an engine-side load failure. Informational only:
// the address state is left where it was.
type NavigationFailure struct {
	Address string
	Reason  string
	Err     error
	At      time.Time
}

func (f NavigationFailure) Error() string {
	if f.Address == "" {
		return fmt.Sprintf("navigation failed: %s", f.Reason)
	}
	return fmt.Sprintf("navigation to %s failed: %s", f.Address, f.Reason)
}

func (f NavigationFailure) Unwrap() error { return f.Err }
