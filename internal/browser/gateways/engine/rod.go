package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
)

// ErrNotOpen is returned by commands issued before Open or after Close.
var ErrNotOpen = errors.New("engine not open")

// RodEngine drives a single Chromium page over the DevTools protocol.
//
// The Fetch domain pauses every matching request and asks the callbacks'
// policy query before it continues, so in-page links, redirects and
// scripted navigations are gated as well as commanded loads. Main-frame
// Page and Network events are mapped onto start, commit, finish and fail.
type RodEngine struct {
	opts   Options
	logger log.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	router   *rod.HijackRouter
	cancel   context.CancelFunc
	cb       Callbacks
	wg       sync.WaitGroup

	// main-frame document requests in flight, by request id
	docMu  sync.Mutex
	docs   map[proto.NetworkRequestID]string
	failed bool
}

// NewRodEngine returns an unopened engine.
func NewRodEngine(opts Options, logger log.Logger) *RodEngine {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &RodEngine{
		opts:   opts,
		logger: log.Named(logger, "engine"),
		docs:   map[proto.NetworkRequestID]string{},
	}
}

// Open launches (or attaches to) the browser, opens a blank page and starts
// delivering callbacks to cb.
func (e *RodEngine) Open(ctx context.Context, cb Callbacks) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.page != nil {
		return fmt.Errorf("rod engine already open")
	}
	if cb == nil {
		return fmt.Errorf("rod engine: nil callbacks")
	}

	controlURL := e.opts.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Context(ctx).Headless(e.opts.Headless)
		if e.opts.Bin != "" {
			l = l.Bin(e.opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
		e.launcher = l
		controlURL = u
	}

	runCtx, cancel := context.WithCancel(ctx)
	browser := rod.New().ControlURL(controlURL).Context(runCtx)
	if err := browser.Connect(); err != nil {
		cancel()
		e.killLauncher()
		return fmt.Errorf("connect browser: %w", err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: blankPage})
	if err != nil {
		cancel()
		_ = browser.Close()
		e.killLauncher()
		return fmt.Errorf("open page: %w", err)
	}

	e.browser, e.page, e.cancel, e.cb = browser, page, cancel, cb

	resourceType := proto.NetworkResourceTypeDocument
	if e.opts.GateSubresources {
		resourceType = ""
	}
	router := page.HijackRequests()
	if err := router.Add("*", resourceType, e.gate); err != nil {
		e.teardownLocked()
		return fmt.Errorf("install policy gate: %w", err)
	}
	e.router = router

	wait := page.EachEvent(
		e.onRequestWillBeSent,
		e.onFrameStartedLoading,
		e.onFrameNavigated,
		e.onLoadingFailed,
		e.onFrameStoppedLoading,
	)
	e.wg.Add(2)
	go func() { defer e.wg.Done(); router.Run() }()
	go func() { defer e.wg.Done(); wait() }()

	e.logger.Info(map[string]any{
		"control_url":       controlURL,
		"headless":          e.opts.Headless,
		"gate_subresources": e.opts.GateSubresources,
	}, "engine_opened")
	return nil
}

// Close stops event delivery and shuts the browser down.
func (e *RodEngine) Close() error {
	e.mu.Lock()
	if e.page == nil {
		e.mu.Unlock()
		return nil
	}
	err := e.teardownLocked()
	e.mu.Unlock()
	e.wg.Wait()
	e.logger.Info(nil, "engine_closed")
	return err
}

func (e *RodEngine) teardownLocked() error {
	var errs []error
	if e.router != nil {
		if err := e.router.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop policy gate: %w", err))
		}
		e.router = nil
	}
	if e.browser != nil && e.launcher != nil {
		if err := e.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	} else if e.page != nil {
		if err := e.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.killLauncher()
	e.browser, e.page, e.cancel = nil, nil, nil
	return errors.Join(errs...)
}

func (e *RodEngine) killLauncher() {
	if e.launcher != nil {
		e.launcher.Kill()
		e.launcher.Cleanup()
		e.launcher = nil
	}
}

func (e *RodEngine) current() (*rod.Page, Callbacks, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.page == nil {
		return nil, nil, ErrNotOpen
	}
	return e.page, e.cb, nil
}

// dispatch runs a page command on its own goroutine against the engine's
// lifetime context and returns once it is issued. Navigation errors arrive
// through the event stream; anything else is reported through OnFail.
func (e *RodEngine) dispatch(ctx context.Context, name, address string, fn func(p *rod.Page) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.page == nil {
		return ErrNotOpen
	}
	p, cb := e.page, e.cb
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := fn(p)
		var navErr *rod.NavigationError
		switch {
		case err == nil, errors.Is(err, context.Canceled):
		case errors.As(err, &navErr):
			e.logger.Debug(map[string]any{"command": name, "address": address, "reason": navErr.Reason}, "navigate_error")
		default:
			e.logger.Warn(map[string]any{"command": name, "address": address, "error": err}, "command_failed")
			cb.OnFail(address, fmt.Errorf("%s: %w", name, err))
		}
	}()
	return nil
}

// Load starts navigating the page to address and returns without waiting
// for the server.
func (e *RodEngine) Load(ctx context.Context, address string) error {
	return e.dispatch(ctx, "load", address, func(p *rod.Page) error {
		return p.Navigate(address)
	})
}

func (e *RodEngine) GoBack(ctx context.Context) error {
	return e.dispatch(ctx, "go_back", "", (*rod.Page).NavigateBack)
}

func (e *RodEngine) GoForward(ctx context.Context) error {
	return e.dispatch(ctx, "go_forward", "", (*rod.Page).NavigateForward)
}

// Reload issues Page.reload without waiting for the new document.
func (e *RodEngine) Reload(ctx context.Context) error {
	return e.dispatch(ctx, "reload", "", func(p *rod.Page) error {
		return proto.PageReload{}.Call(p)
	})
}

// StopLoading runs inline so the stop is in effect when it returns.
func (e *RodEngine) StopLoading(ctx context.Context) error {
	p, _, err := e.current()
	if err != nil {
		return err
	}
	return p.Context(ctx).StopLoading()
}

// gate answers a paused request with the callbacks' policy decision.
func (e *RodEngine) gate(h *rod.Hijack) {
	_, cb, err := e.current()
	if err != nil {
		h.Response.Fail(proto.NetworkErrorReasonAborted)
		return
	}
	q := domain.PolicyQuery{
		Address:     h.Request.URL().String(),
		Subresource: !h.Request.IsNavigation(),
	}
	if cb.OnPolicyQuery(q) == domain.PolicyDeny {
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		return
	}
	h.ContinueRequest(&proto.FetchContinueRequest{})
}

func (e *RodEngine) isMainFrame(id proto.PageFrameID) bool {
	p, _, err := e.current()
	return err == nil && id == p.FrameID
}

func (e *RodEngine) onRequestWillBeSent(ev *proto.NetworkRequestWillBeSent) {
	if ev.Type != proto.NetworkResourceTypeDocument || !e.isMainFrame(ev.FrameID) || ev.Request == nil {
		return
	}
	e.docMu.Lock()
	e.docs[ev.RequestID] = ev.Request.URL
	e.docMu.Unlock()
}

func (e *RodEngine) onFrameStartedLoading(ev *proto.PageFrameStartedLoading) {
	if !e.isMainFrame(ev.FrameID) {
		return
	}
	_, cb, err := e.current()
	if err != nil {
		return
	}
	e.docMu.Lock()
	e.failed = false
	e.docMu.Unlock()
	cb.OnStart()
}

func (e *RodEngine) onFrameNavigated(ev *proto.PageFrameNavigated) {
	if ev.Frame == nil || ev.Frame.ParentID != "" || !e.isMainFrame(ev.Frame.ID) {
		return
	}
	u := frameURL(ev.Frame)
	if !reportable(u) {
		return
	}
	p, cb, err := e.current()
	if err != nil {
		return
	}
	back, fwd := e.history(p)
	cb.OnCommit(u, back, fwd)
}

func (e *RodEngine) onLoadingFailed(ev *proto.NetworkLoadingFailed) {
	e.docMu.Lock()
	u, ok := e.docs[ev.RequestID]
	delete(e.docs, ev.RequestID)
	if ok {
		e.failed = true
	}
	e.docMu.Unlock()
	if !ok {
		return
	}
	_, cb, err := e.current()
	if err != nil {
		return
	}
	failure := errors.New(ev.ErrorText)
	if isBlockedByClient(ev.ErrorText) {
		failure = fmt.Errorf("%s: %w", ev.ErrorText, domain.ErrBlocked)
	}
	cb.OnFail(u, failure)
}

func (e *RodEngine) onFrameStoppedLoading(ev *proto.PageFrameStoppedLoading) {
	if !e.isMainFrame(ev.FrameID) {
		return
	}
	e.docMu.Lock()
	failed := e.failed
	e.failed = false
	clear(e.docs)
	e.docMu.Unlock()

	p, cb, err := e.current()
	if err != nil {
		return
	}
	if failed {
		return
	}
	h, err := p.GetNavigationHistory()
	if err != nil {
		cb.OnFail("", fmt.Errorf("read history: %w", err))
		return
	}
	u := currentEntry(h)
	if !reportable(u) {
		u = ""
	}
	back, fwd := historyFlags(h)
	cb.OnFinish(u, back, fwd)
}

func (e *RodEngine) history(p *rod.Page) (canGoBack, canGoForward bool) {
	h, err := p.GetNavigationHistory()
	if err != nil {
		e.logger.Debug(map[string]any{"error": err}, "history_unavailable")
		return false, false
	}
	return historyFlags(h)
}

var _ RenderingEngine = (*RodEngine)(nil)
