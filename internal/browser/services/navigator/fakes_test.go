package navigator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haukened/beacon/internal/browser/common/clock"
	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
	"github.com/haukened/beacon/internal/browser/repos/blocklist"
)

// fakeEngine records commands. Hooks run synchronously inside the command,
// the way an engine delivering callbacks on the caller's goroutine would.
type fakeEngine struct {
	mu     sync.Mutex
	calls  []string
	err    error
	onLoad func(address string)
	onStop func()
}

func (e *fakeEngine) record(call string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
	return e.err
}

func (e *fakeEngine) Load(_ context.Context, address string) error {
	err := e.record("load " + address)
	if err == nil && e.onLoad != nil {
		e.onLoad(address)
	}
	return err
}

func (e *fakeEngine) GoBack(context.Context) error    { return e.record("go_back") }
func (e *fakeEngine) GoForward(context.Context) error { return e.record("go_forward") }
func (e *fakeEngine) Reload(context.Context) error    { return e.record("reload") }

func (e *fakeEngine) StopLoading(context.Context) error {
	err := e.record("stop_loading")
	if e.onStop != nil {
		e.onStop()
	}
	return err
}

func (e *fakeEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

var _ Engine = (*fakeEngine)(nil)

// recorder collects everything pushed to observers.
type recorder struct {
	mu       sync.Mutex
	states   []domain.NavigationState
	blocked  []domain.BlockedEvent
	failures []domain.NavigationFailure
}

func (r *recorder) StateChanged(st domain.NavigationState) {
	r.mu.Lock()
	r.states = append(r.states, st)
	r.mu.Unlock()
}

func (r *recorder) Blocked(ev domain.BlockedEvent) {
	r.mu.Lock()
	r.blocked = append(r.blocked, ev)
	r.mu.Unlock()
}

func (r *recorder) NavigationFailed(f domain.NavigationFailure) {
	r.mu.Lock()
	r.failures = append(r.failures, f)
	r.mu.Unlock()
}

func (r *recorder) States() []domain.NavigationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.NavigationState(nil), r.states...)
}

func (r *recorder) Blocks() []domain.BlockedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.BlockedEvent(nil), r.blocked...)
}

func (r *recorder) Failures() []domain.NavigationFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.NavigationFailure(nil), r.failures...)
}

// MockRecorder is a testify mock for BlockRecorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ev domain.BlockedEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	coord  *Coordinator
	engine *fakeEngine
	obs    *recorder
	clf    *blocklist.Classifier
}

func newHarness(t *testing.T, rec BlockRecorder) *harness {
	t.Helper()
	clf, err := blocklist.New(blocklist.Options{
		Domains:  blocklist.DefaultDomainFragments(),
		Keywords: blocklist.DefaultKeywordFragments(),
	})
	require.NoError(t, err)
	eng := &fakeEngine{}
	coord, err := New(Options{
		Classifier: clf,
		Engine:     eng,
		Recorder:   rec,
		Clock:      &clock.MockClock{CurrentTime: testNow},
		Logger:     log.NewNoopLogger(),
	})
	require.NoError(t, err)
	obs := &recorder{}
	coord.Subscribe(obs)
	return &harness{coord: coord, engine: eng, obs: obs, clf: clf}
}

func (h *harness) submit(t *testing.T, intent domain.NavigationIntent) {
	t.Helper()
	require.NoError(t, h.coord.Submit(context.Background(), intent))
}

// visit drives a full successful load of address through the callbacks.
func (h *harness) visit(t *testing.T, input, address string, canGoBack bool) {
	t.Helper()
	h.submit(t, domain.LoadAddress(input))
	h.coord.OnStart()
	h.coord.OnCommit(address, canGoBack, false)
	h.coord.OnFinish(address, canGoBack, false)
}
