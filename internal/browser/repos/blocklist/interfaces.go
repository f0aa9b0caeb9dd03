package blocklist

import "github.com/haukened/beacon/internal/browser/domain"

// PrefilterFactory builds a Prefilter sized from capacity (n) and target
// false-positive rate (p).
type PrefilterFactory interface {
	New(capacity uint64, fpRate float64) Prefilter
}

// Prefilter is the minimal set-membership interface the classifier needs to
// early-allow candidates. Implementations must never report a false negative.
type Prefilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
	Clear()
}

// VerdictCache memoizes verdicts by case-folded candidate with basic metrics.
// It is an optimization only; a disabled cache must behave as a permanent miss.
type VerdictCache interface {
	Get(key string) (domain.ClassificationVerdict, bool)
	Put(key string, v domain.ClassificationVerdict)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}
