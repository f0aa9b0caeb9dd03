package journal

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/domain"
)

// DefaultQueueSize is the number of events an Async journal buffers.
const DefaultQueueSize = 256

// ErrQueueFull is returned by Async.Record when the buffer is full and the
// event was dropped.
var ErrQueueFull = errors.New("journal queue full")

// Async queues events for a single writer goroutine so Record never waits
// on storage. Events reach the wrapped journal in Record order.
type Async struct {
	next   Journal
	logger log.Logger

	queue   chan domain.BlockedEvent
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewAsync wraps next and starts its writer. Close drains the queue and
// then closes next.
func NewAsync(next Journal, size int, logger log.Logger) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	a := &Async{
		next:   next,
		logger: log.Named(logger, "journal"),
		queue:  make(chan domain.BlockedEvent, size),
		done:   make(chan struct{}),
	}
	go a.drain()
	return a
}

func (a *Async) drain() {
	defer close(a.done)
	for ev := range a.queue {
		if err := a.next.Record(ev); err != nil {
			a.logger.Warn(map[string]any{"address": ev.Address, "error": err}, "journal_write_failed")
		}
	}
}

// Record enqueues ev without blocking.
func (a *Async) Record(ev domain.BlockedEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- ev:
		return nil
	default:
		n := a.dropped.Add(1)
		a.logger.Warn(map[string]any{"address": ev.Address, "dropped": n}, "journal_queue_full")
		return ErrQueueFull
	}
}

// Recent reads through to the wrapped journal; queued events are not yet
// visible.
func (a *Async) Recent(n int) ([]domain.BlockedEvent, error) { return a.next.Recent(n) }

func (a *Async) Stats() Stats { return a.next.Stats() }

// Dropped reports how many events were refused because the queue was full.
func (a *Async) Dropped() uint64 { return a.dropped.Load() }

// Close stops accepting events, waits for queued ones to be written and
// closes the wrapped journal.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()
	<-a.done
	return a.next.Close()
}

var _ Journal = (*Async)(nil)
