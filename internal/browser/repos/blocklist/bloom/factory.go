package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/beacon/internal/browser/repos/blocklist"
)

// factory implements blocklist.PrefilterFactory using internal sizing formulas.
type factory struct{}

// NewFactory returns a PrefilterFactory that sizes filters from capacity and FP rate.
func NewFactory() blocklist.PrefilterFactory { return factory{} }

// New constructs a Bloom filter sized for capacity fragments at fpRate.
func (factory) New(capacity uint64, fpRate float64) blocklist.Prefilter {
	m, k := size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), k)}
}
