package journal

import "github.com/haukened/beacon/internal/browser/domain"

// Nop discards every event. It is used when no journal path is configured.
type Nop struct{}

func (Nop) Record(domain.BlockedEvent) error { return nil }

func (Nop) Recent(int) ([]domain.BlockedEvent, error) { return nil, nil }

func (Nop) Stats() Stats { return Stats{Sites: map[string]uint64{}} }

func (Nop) Close() error { return nil }

var _ Journal = Nop{}
