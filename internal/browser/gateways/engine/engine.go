package engine

import (
	"context"
	"fmt"

	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
	"github.com/haukened/beacon/internal/browser/services/navigator"
)

// Callbacks receives the engine's lifecycle notifications and answers its
// policy queries. *navigator.Coordinator satisfies it.
type Callbacks interface {
	OnPolicyQuery(q domain.PolicyQuery) domain.PolicyDecision
	OnStart()
	OnCommit(address string, canGoBack, canGoForward bool)
	OnFinish(address string, canGoBack, canGoForward bool)
	OnFail(address string, err error)
}

// RenderingEngine is a navigator.Engine with a lifecycle. Open attaches the
// callbacks and must be called before any command.
type RenderingEngine interface {
	navigator.Engine
	Open(ctx context.Context, cb Callbacks) error
	Close() error
}

// EngineType names a rendering engine backend.
type EngineType string

const (
	// EngineRod drives Chromium over the DevTools protocol.
	EngineRod EngineType = "rod"
)

// Options configures a rendering engine.
type Options struct {
	// Bin is the browser executable. Empty lets the launcher find or fetch one.
	Bin string
	// DebuggerURL attaches to an already running browser instead of launching.
	DebuggerURL string
	Headless    bool
	// GateSubresources routes images, scripts and other sub-resource loads
	// through the policy query as well as documents.
	GateSubresources bool
}

// NewEngine creates a rendering engine of the given type.
func NewEngine(kind EngineType, opts Options, logger log.Logger) (RenderingEngine, error) {
	switch kind {
	case EngineRod:
		return NewRodEngine(opts, logger), nil
	default:
		return nil, fmt.Errorf("unsupported engine type: %s", kind)
	}
}

var _ Callbacks = (*navigator.Coordinator)(nil)
