package navigator

import (
	"context"

	"github.com/haukened/beacon/internal/browser/domain"
)

// Engine is the rendering engine's command surface. Commands are
// fire-and-forget: outcomes arrive later through the Coordinator's callback
// methods, possibly on another goroutine and possibly before the command
// returns.
type Engine interface {
	Load(ctx context.Context, address string) error
	GoBack(ctx context.Context) error
	GoForward(ctx context.Context) error
	Reload(ctx context.Context) error
	StopLoading(ctx context.Context) error
}

// Classifier decides whether a resolved destination is permitted.
type Classifier interface {
	Classify(candidate string) domain.ClassificationVerdict
}

// BlockRecorder persists blocked attempts.
type BlockRecorder interface {
	Record(ev domain.BlockedEvent) error
}

// Observer receives pushed notifications. Calls are serialized and state
// snapshots arrive in mutation order. Observers must not submit intents
// synchronously from these methods.
type Observer interface {
	StateChanged(st domain.NavigationState)
	Blocked(ev domain.BlockedEvent)
	NavigationFailed(f domain.NavigationFailure)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnState   func(domain.NavigationState)
	OnBlocked func(domain.BlockedEvent)
	OnFailure func(domain.NavigationFailure)
}

func (o ObserverFuncs) StateChanged(st domain.NavigationState) {
	if o.OnState != nil {
		o.OnState(st)
	}
}

func (o ObserverFuncs) Blocked(ev domain.BlockedEvent) {
	if o.OnBlocked != nil {
		o.OnBlocked(ev)
	}
}

func (o ObserverFuncs) NavigationFailed(f domain.NavigationFailure) {
	if o.OnFailure != nil {
		o.OnFailure(f)
	}
}

var _ Observer = ObserverFuncs{}
