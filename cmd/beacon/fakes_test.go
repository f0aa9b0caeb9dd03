package main

import (
	"context"
	"errors"
	"sync"

	"github.com/haukened/beacon/internal/browser/domain"
	"github.com/haukened/beacon/internal/browser/gateways/engine"
)

// scriptedEngine completes every command synchronously through the
// callbacks, consulting the policy query first like a real engine.
type scriptedEngine struct {
	mu      sync.Mutex
	cb      engine.Callbacks
	history []string
	index   int
	opened  bool
	closed  bool
}

var _ engine.RenderingEngine = (*scriptedEngine)(nil)

func (e *scriptedEngine) Open(_ context.Context, cb engine.Callbacks) error {
	if cb == nil {
		return errors.New("nil callbacks")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cb = cb
	e.index = -1
	e.opened = true
	return nil
}

func (e *scriptedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *scriptedEngine) Load(_ context.Context, address string) error {
	if e.cb.OnPolicyQuery(domain.PolicyQuery{Address: address}) == domain.PolicyDeny {
		e.cb.OnFail(address, domain.ErrBlocked)
		return nil
	}
	e.mu.Lock()
	e.history = append(e.history[:e.index+1], address)
	e.index = len(e.history) - 1
	e.mu.Unlock()
	e.complete(address)
	return nil
}

func (e *scriptedEngine) GoBack(context.Context) error    { return e.step(-1) }
func (e *scriptedEngine) GoForward(context.Context) error { return e.step(1) }

func (e *scriptedEngine) Reload(context.Context) error {
	e.mu.Lock()
	address := e.history[e.index]
	e.mu.Unlock()
	e.complete(address)
	return nil
}

func (e *scriptedEngine) StopLoading(context.Context) error { return nil }

func (e *scriptedEngine) step(delta int) error {
	e.mu.Lock()
	next := e.index + delta
	if next < 0 || next >= len(e.history) {
		e.mu.Unlock()
		return errors.New("no history entry")
	}
	e.index = next
	address := e.history[next]
	e.mu.Unlock()
	e.complete(address)
	return nil
}

func (e *scriptedEngine) complete(address string) {
	e.mu.Lock()
	back, forward := e.index > 0, e.index < len(e.history)-1
	e.mu.Unlock()
	e.cb.OnStart()
	e.cb.OnCommit(address, back, forward)
	e.cb.OnFinish(address, back, forward)
}
