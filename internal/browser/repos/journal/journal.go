// Package journal keeps a durable record of blocked navigation attempts.
package journal

import "github.com/haukened/beacon/internal/browser/domain"

// Journal records BlockedEvents and answers history queries for the
// presentation layer's "Content Blocked" history.
type Journal interface {
	Record(ev domain.BlockedEvent) error
	// Recent returns up to n events, newest first.
	Recent(n int) ([]domain.BlockedEvent, error)
	Stats() Stats
	Close() error
}

// Stats summarizes the journal.
type Stats struct {
	Total    uint64
	LastUnix int64
	Sites    map[string]uint64 // blocked attempts per registrable site
}
