package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/common/utils"
	"github.com/haukened/beacon/internal/browser/domain"
)

var (
	bucketBlocked = []byte("blocked")
	bucketSites   = []byte("sites")
	bucketMeta    = []byte("meta")

	metaTotal = []byte("total")
	metaLast  = []byte("last")
)

// unknownSite counts attempts whose address has no registrable site.
const unknownSite = "-"

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal closed")

// record is the stored form of a BlockedEvent.
type record struct {
	ID          string    `json:"id"`
	Address     string    `json:"address"`
	Reason      string    `json:"reason"`
	Kind        string    `json:"kind"`
	Source      string    `json:"source"`
	Site        string    `json:"site"`
	Checkpoint  string    `json:"checkpoint"`
	Subresource bool      `json:"subresource,omitempty"`
	At          time.Time `json:"at"`
}

// boltJournal implements Journal using bbolt. Keys in the blocked bucket are
// UUIDv7 bytes, so cursor order is chronological.
type boltJournal struct {
	db     *bbolt.DB
	logger log.Logger
}

// Open opens (or creates) a journal database at path and ensures buckets exist.
func Open(path string, logger log.Logger) (Journal, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketBlocked, bucketSites, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init journal %s: %w", path, err)
	}
	logger.Debug(map[string]any{"path": path}, "journal_opened")
	return &boltJournal{db: db, logger: logger}, nil
}

func (j *boltJournal) Close() error { return j.db.Close() }

// Record stores ev and bumps the per-site and total counters in one
// transaction. Events without a UUID id get a fresh UUIDv7.
func (j *boltJournal) Record(ev domain.BlockedEvent) error {
	id, err := uuid.Parse(ev.ID)
	if err != nil || id.Version() != 7 {
		if id, err = uuid.NewV7(); err != nil {
			return fmt.Errorf("journal id: %w", err)
		}
	}
	if ev.Site == "" {
		ev.Site = utils.Site(ev.Address)
	}
	if ev.At.IsZero() {
		ev.At = time.Unix(id.Time().UnixTime())
	}
	val, err := json.Marshal(toRecord(id.String(), ev))
	if err != nil {
		return fmt.Errorf("journal encode: %w", err)
	}

	err = j.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketBlocked).Put(id[:], val); err != nil {
			return err
		}
		if err := incr(tx.Bucket(bucketSites), siteKey(ev.Site)); err != nil {
			return err
		}
		meta := tx.Bucket(bucketMeta)
		if err := incr(meta, metaTotal); err != nil {
			return err
		}
		return meta.Put(metaLast, u64(uint64(ev.At.Unix())))
	})
	if errors.Is(err, berrors.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	if err != nil {
		j.logger.Warn(map[string]any{"address": ev.Address, "error": err}, "journal_record_failed")
		return err
	}
	return nil
}

// Recent walks the blocked bucket backwards from the newest key.
func (j *boltJournal) Recent(n int) ([]domain.BlockedEvent, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]domain.BlockedEvent, 0, n)
	err := j.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketBlocked).Cursor()
		for k, v := c.Last(); k != nil && len(out) < n; k, v = c.Prev() {
			var r record
			if err := json.Unmarshal(v, &r); err != nil {
				j.logger.Warn(map[string]any{"key": fmt.Sprintf("%x", k), "error": err}, "journal_skip_corrupt")
				continue
			}
			out = append(out, r.event())
		}
		return nil
	})
	if errors.Is(err, berrors.ErrDatabaseNotOpen) {
		return nil, ErrClosed
	}
	return out, err
}

func (j *boltJournal) Stats() Stats {
	st := Stats{Sites: map[string]uint64{}}
	_ = j.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(metaTotal); len(v) == 8 {
				st.Total = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(metaLast); len(v) == 8 {
				st.LastUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		if b := tx.Bucket(bucketSites); b != nil {
			return b.ForEach(func(k, v []byte) error {
				if len(v) == 8 {
					st.Sites[string(k)] = binary.BigEndian.Uint64(v)
				}
				return nil
			})
		}
		return nil
	})
	return st
}

func incr(b *bbolt.Bucket, key []byte) error {
	var n uint64
	if v := b.Get(key); len(v) == 8 {
		n = binary.BigEndian.Uint64(v)
	}
	return b.Put(key, u64(n+1))
}

// siteKey is the counter key for site; bbolt rejects empty keys.
func siteKey(site string) []byte {
	if site == "" {
		return []byte(unknownSite)
	}
	return []byte(site)
}

func u64(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func toRecord(id string, ev domain.BlockedEvent) record {
	return record{
		ID:          id,
		Address:     ev.Address,
		Reason:      ev.Reason,
		Kind:        ev.Kind.String(),
		Source:      ev.Source,
		Site:        ev.Site,
		Checkpoint:  ev.Checkpoint.String(),
		Subresource: ev.Subresource,
		At:          ev.At.UTC(),
	}
}

func (r record) event() domain.BlockedEvent {
	ev := domain.BlockedEvent{
		ID:          r.ID,
		Address:     r.Address,
		Reason:      r.Reason,
		Source:      r.Source,
		Site:        r.Site,
		Subresource: r.Subresource,
		At:          r.At,
	}
	if k, err := domain.ParseFragmentKind(r.Kind); err == nil {
		ev.Kind = k
	}
	if c, err := domain.ParseCheckpoint(r.Checkpoint); err == nil {
		ev.Checkpoint = c
	}
	return ev
}

var _ Journal = (*boltJournal)(nil)
