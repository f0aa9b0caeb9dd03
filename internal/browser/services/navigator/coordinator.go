// Package navigator owns the NavigationState of the single browsing surface.
// It serializes presentation intents and rendering-engine callbacks and gates
// every destination through the content classifier.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/beacon/internal/browser/common/clock"
	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/common/utils"
	"github.com/haukened/beacon/internal/browser/domain"
)

// DefaultSupersededHistory bounds how many superseded targets are
// remembered for stale-callback filtering.
const DefaultSupersededHistory = 16

var (
	// ErrUnknownIntent is returned by Submit for an unrecognized intent kind.
	ErrUnknownIntent = errors.New("unknown navigation intent")
	// ErrEngineCommand wraps an error returned by an engine command.
	ErrEngineCommand = errors.New("engine command failed")
	// ErrMissingDependency is returned by New when a required collaborator is nil.
	ErrMissingDependency = errors.New("missing dependency")
)

// Options configures a Coordinator. Classifier and Engine are required.
type Options struct {
	Classifier        Classifier
	Engine            Engine
	Resolver          *Resolver
	Recorder          BlockRecorder
	Clock             clock.Clock
	Logger            log.Logger
	SupersededHistory int
}

// Coordinator is the single owner of NavigationState.
//
// Lock order: intentMu, then mu. intentMu covers deciding an intent and
// updating state for it; the resulting engine command is issued with no lock
// held, so a slow command never holds up later intents and the engine may
// deliver callbacks synchronously from inside a command.
// notifyMu serializes observer delivery and is never held while taking mu.
type Coordinator struct {
	classifier Classifier
	engine     Engine
	resolver   *Resolver
	recorder   BlockRecorder
	clock      clock.Clock
	logger     log.Logger

	intentMu sync.Mutex

	mu         sync.Mutex
	state      domain.NavigationState
	detached   bool
	superseded *lru.Cache[string, struct{}]
	seq        uint64

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObs   int

	notifyMu  sync.Mutex
	delivered uint64
}

// New constructs a Coordinator on the start page with no history.
func New(opts Options) (*Coordinator, error) {
	if opts.Classifier == nil {
		return nil, fmt.Errorf("%w: classifier", ErrMissingDependency)
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("%w: engine", ErrMissingDependency)
	}
	if opts.Resolver == nil {
		opts.Resolver = NewResolver("")
	}
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.SupersededHistory <= 0 {
		opts.SupersededHistory = DefaultSupersededHistory
	}
	superseded, err := lru.New[string, struct{}](opts.SupersededHistory)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		classifier: opts.Classifier,
		engine:     opts.Engine,
		resolver:   opts.Resolver,
		recorder:   opts.Recorder,
		clock:      opts.Clock,
		logger:     log.Named(opts.Logger, "navigator"),
		state:      domain.StartPage(),
		superseded: superseded,
		observers:  map[int]Observer{},
	}, nil
}

// State returns a snapshot of the current NavigationState.
func (c *Coordinator) State() domain.NavigationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers o for pushed notifications and returns a function
// that removes it.
func (c *Coordinator) Subscribe(o Observer) (unsubscribe func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = o
	c.obsMu.Unlock()
	return func() {
		c.obsMu.Lock()
		delete(c.observers, id)
		c.obsMu.Unlock()
	}
}

// Submit applies a single intent. Intents are decided one at a time in
// arrival order; the engine command an intent produces runs after the
// decision, outside the intent lock. Blocked destinations and inapplicable
// intents are not errors; only an unknown intent or a failing engine command
// is returned.
func (c *Coordinator) Submit(ctx context.Context, intent domain.NavigationIntent) error {
	run, err := c.decide(intent)
	if err != nil || run == nil {
		return err
	}
	return run(ctx)
}

// decide applies intent to the state and returns the engine command to
// issue, or nil when the intent needs none.
func (c *Coordinator) decide(intent domain.NavigationIntent) (func(context.Context) error, error) {
	c.intentMu.Lock()
	defer c.intentMu.Unlock()

	c.logger.Debug(map[string]any{"intent": intent.String()}, "intent_received")

	switch intent.Kind {
	case domain.IntentLoadAddress:
		resolved, home := c.resolver.Resolve(intent.Input)
		if home {
			c.goHome()
			return nil, nil
		}
		return c.load(resolved), nil
	case domain.IntentSearch:
		if intent.Input == "" {
			return nil, nil
		}
		return c.load(c.resolver.Search(intent.Input)), nil
	case domain.IntentGoBack:
		return c.traverse(intent.Kind), nil
	case domain.IntentGoForward:
		return c.traverse(intent.Kind), nil
	case domain.IntentReload:
		if c.State().OnStartPage {
			return nil, nil
		}
		return c.command(intent.Kind, "", c.engine.Reload), nil
	case domain.IntentStop:
		if !c.State().IsLoading {
			return nil, nil
		}
		return c.command(intent.Kind, "", c.engine.StopLoading), nil
	case domain.IntentClearToHome:
		c.goHome()
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, intent.Kind)
	}
}

func (c *Coordinator) load(resolved string) func(context.Context) error {
	if v := c.classifier.Classify(resolved); v.Blocked {
		c.emitBlocked(resolved, v, domain.CheckpointIntent, false)
		return nil
	}

	c.mu.Lock()
	if c.state.PendingAddress != "" && utils.SameAddress(c.state.PendingAddress, resolved) {
		c.mu.Unlock()
		c.logger.Debug(map[string]any{"address": resolved}, "load_already_in_flight")
		return nil
	}
	c.detached = false
	c.supersedeLocked()
	c.superseded.Remove(utils.AddressKey(resolved))
	c.state.PendingAddress = resolved
	st, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(st, seq)

	return func(ctx context.Context) error {
		if err := c.engine.Load(ctx, resolved); err != nil {
			c.mu.Lock()
			var st domain.NavigationState
			var seq uint64
			if c.state.PendingAddress == resolved {
				c.state.PendingAddress = ""
				st, seq = c.snapshotLocked()
			}
			c.mu.Unlock()
			c.publish(st, seq)
			return c.engineFailed(domain.IntentLoadAddress, resolved, err)
		}
		return nil
	}
}

// traverse moves through the engine's history. The destination comes from
// the engine, so older superseded targets are forgotten and only the load
// being abandoned now stays stale.
func (c *Coordinator) traverse(kind domain.IntentKind) func(context.Context) error {
	c.mu.Lock()
	can := c.state.CanGoBack
	cmd := c.engine.GoBack
	if kind == domain.IntentGoForward {
		can = c.state.CanGoForward
		cmd = c.engine.GoForward
	}
	if !can || c.detached {
		c.mu.Unlock()
		return nil
	}
	c.superseded.Purge()
	var st domain.NavigationState
	var seq uint64
	if c.supersedeLocked() {
		st, seq = c.snapshotLocked()
	}
	c.mu.Unlock()
	c.publish(st, seq)
	return c.command(kind, "", cmd)
}

func (c *Coordinator) command(kind domain.IntentKind, address string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return c.engineFailed(kind, address, err)
		}
		return nil
	}
}

func (c *Coordinator) engineFailed(kind domain.IntentKind, address string, err error) error {
	wrapped := fmt.Errorf("%w: %s: %w", ErrEngineCommand, kind, err)
	c.logger.Warn(map[string]any{"intent": kind.String(), "address": address, "error": err}, "engine_command_failed")
	c.emitFailure(domain.NavigationFailure{Address: address, Reason: err.Error(), Err: wrapped, At: c.clock.Now()})
	return wrapped
}

// goHome resets to the start page without telling the engine and detaches
// from its callbacks until the next load.
func (c *Coordinator) goHome() {
	c.mu.Lock()
	c.supersedeLocked()
	c.state = domain.StartPage()
	c.detached = true
	st, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(st, seq)
}

// supersedeLocked retires the in-flight target, if any, so late callbacks
// naming it are ignored.
func (c *Coordinator) supersedeLocked() bool {
	if c.state.PendingAddress == "" {
		return false
	}
	c.superseded.Add(utils.AddressKey(c.state.PendingAddress), struct{}{})
	c.state.PendingAddress = ""
	return true
}

// staleLocked reports whether address names a superseded target.
func (c *Coordinator) staleLocked(address string) bool {
	if address == "" {
		return false
	}
	if c.state.PendingAddress != "" && utils.SameAddress(address, c.state.PendingAddress) {
		return false
	}
	return c.superseded.Contains(utils.AddressKey(address))
}

// ignoreLocked reports whether a lifecycle callback naming address must be
// dropped, logging why.
func (c *Coordinator) ignoreLocked(callback, address string) bool {
	switch {
	case c.detached:
		c.logger.Debug(map[string]any{"callback": callback, "address": address}, "callback_ignored_detached")
		return true
	case c.staleLocked(address):
		c.logger.Debug(map[string]any{"callback": callback, "address": address}, "callback_ignored_stale")
		return true
	}
	return false
}

func (c *Coordinator) classify(address string) domain.ClassificationVerdict {
	if address == "" {
		return domain.Allowed()
	}
	return c.classifier.Classify(address)
}

func (c *Coordinator) snapshotLocked() (domain.NavigationState, uint64) {
	c.seq++
	return c.state, c.seq
}

// OnPolicyQuery answers the engine's pre-navigation question. It fires for
// in-page navigations too and never waits on an in-flight intent. An allowed
// document navigation while no target is pending was started by the page, so
// its address is no longer treated as superseded.
func (c *Coordinator) OnPolicyQuery(q domain.PolicyQuery) domain.PolicyDecision {
	v := c.classifier.Classify(q.Address)
	if !v.Blocked {
		if !q.Subresource {
			c.mu.Lock()
			if c.state.PendingAddress == "" {
				c.superseded.Remove(utils.AddressKey(q.Address))
			}
			c.mu.Unlock()
		}
		return domain.PolicyAllow
	}
	c.emitBlocked(q.Address, v, domain.CheckpointPolicy, q.Subresource)
	if q.Subresource {
		return domain.PolicyDeny
	}
	c.mu.Lock()
	var st domain.NavigationState
	var seq uint64
	if c.state.PendingAddress != "" && utils.SameAddress(c.state.PendingAddress, q.Address) {
		c.state.PendingAddress = ""
		st, seq = c.snapshotLocked()
	}
	c.mu.Unlock()
	c.publish(st, seq)
	return domain.PolicyDeny
}

// OnStart marks the surface as loading.
func (c *Coordinator) OnStart() {
	c.mu.Lock()
	if c.ignoreLocked("start", "") || c.state.IsLoading {
		c.mu.Unlock()
		return
	}
	c.state.IsLoading = true
	st, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(st, seq)
}

// OnCommit adopts the engine's committed address and history capability.
func (c *Coordinator) OnCommit(address string, canGoBack, canGoForward bool) {
	c.settle("commit", address, canGoBack, canGoForward, false)
}

// OnFinish ends loading and refreshes address and history from the engine.
func (c *Coordinator) OnFinish(address string, canGoBack, canGoForward bool) {
	c.settle("finish", address, canGoBack, canGoForward, true)
}

func (c *Coordinator) settle(callback, address string, canGoBack, canGoForward, finished bool) {
	c.mu.Lock()
	if c.ignoreLocked(callback, address) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if v := c.classify(address); v.Blocked {
		c.emitBlocked(address, v, domain.CheckpointCommit, false)
		var st domain.NavigationState
		var seq uint64
		c.mu.Lock()
		if finished && !c.ignoreLocked(callback, address) {
			c.state.IsLoading = false
			c.state.PendingAddress = ""
			st, seq = c.snapshotLocked()
		}
		c.mu.Unlock()
		c.publish(st, seq)
		if err := c.engine.StopLoading(context.Background()); err != nil {
			c.logger.Warn(map[string]any{"address": address, "error": err}, "stop_after_block_failed")
		}
		return
	}

	c.mu.Lock()
	// Re-check: a load or home reset may have landed while classifying.
	if c.ignoreLocked(callback, address) {
		c.mu.Unlock()
		return
	}
	if address != "" {
		c.state.CurrentAddress = address
		c.state.OnStartPage = false
	}
	c.state.CanGoBack = canGoBack
	c.state.CanGoForward = canGoForward
	if finished {
		c.state.IsLoading = false
		c.state.PendingAddress = ""
	}
	st, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(st, seq)
}

// OnFail ends loading without touching the address or history. An empty
// address refers to the current attempt. Failures wrapping domain.ErrBlocked
// are not reported again.
func (c *Coordinator) OnFail(address string, err error) {
	c.mu.Lock()
	if c.ignoreLocked("fail", address) {
		c.mu.Unlock()
		return
	}
	c.state.IsLoading = false
	c.state.PendingAddress = ""
	st, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(st, seq)

	if errors.Is(err, domain.ErrBlocked) {
		return
	}
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	c.logger.Info(map[string]any{"address": address, "reason": reason}, "navigation_failed")
	c.emitFailure(domain.NavigationFailure{Address: address, Reason: reason, Err: err, At: c.clock.Now()})
}

func (c *Coordinator) emitBlocked(address string, v domain.ClassificationVerdict, cp domain.Checkpoint, subresource bool) {
	ev := domain.BlockedEvent{
		Address:     address,
		Reason:      v.MatchedReason,
		Kind:        v.Kind,
		Source:      v.Source,
		Site:        utils.Site(address),
		Checkpoint:  cp,
		Subresource: subresource,
		At:          c.clock.Now(),
	}
	if id, err := uuid.NewV7(); err == nil {
		ev.ID = id.String()
	}
	c.logger.Info(map[string]any{
		"address":     address,
		"reason":      ev.Reason,
		"checkpoint":  cp.String(),
		"subresource": subresource,
	}, "navigation_blocked")

	if c.recorder != nil {
		if err := c.recorder.Record(ev); err != nil {
			c.logger.Warn(map[string]any{"address": address, "error": err}, "blocked_record_failed")
		}
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, o := range c.observerList() {
		o.Blocked(ev)
	}
}

func (c *Coordinator) emitFailure(f domain.NavigationFailure) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, o := range c.observerList() {
		o.NavigationFailed(f)
	}
}

// publish delivers a state snapshot unless a newer one already went out.
// A zero seq means nothing changed.
func (c *Coordinator) publish(st domain.NavigationState, seq uint64) {
	if seq == 0 {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.delivered {
		return
	}
	c.delivered = seq
	c.logger.Debug(map[string]any{
		"phase":   st.Phase().String(),
		"current": st.CurrentAddress,
		"pending": st.PendingAddress,
	}, "state_changed")
	for _, o := range c.observerList() {
		o.StateChanged(st)
	}
}

func (c *Coordinator) observerList() []Observer {
	c.obsMu.RLock()
	defer c.obsMu.RUnlock()
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Observer, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.observers[id])
	}
	return out
}

// Describe renders the state for logs and the command line.
func Describe(st domain.NavigationState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "phase=%s", st.Phase())
	if st.CurrentAddress != "" {
		fmt.Fprintf(&b, " current=%s", st.CurrentAddress)
	}
	if st.PendingAddress != "" {
		fmt.Fprintf(&b, " pending=%s", st.PendingAddress)
	}
	fmt.Fprintf(&b, " loading=%t back=%t forward=%t", st.IsLoading, st.CanGoBack, st.CanGoForward)
	return b.String()
}
