package blocklist

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/common/utils"
	"github.com/haukened/beacon/internal/browser/domain"
)

const (
	// DefaultPrefilterMin is the fragment count from which a prefilter pays
	// for its window scan.
	DefaultPrefilterMin = 256
	// DefaultFPRate is the prefilter's target false-positive rate.
	DefaultFPRate = 0.01
)

// ErrInvalidFragment is returned by New when a fragment fails validation or
// sits in the wrong ordered set.
var ErrInvalidFragment = errors.New("invalid blocklist fragment")

// Options configures a Classifier. Only Domains and Keywords are required.
type Options struct {
	Domains      []domain.Fragment
	Keywords     []domain.Fragment
	Prefilter    PrefilterFactory
	PrefilterMin int
	FPRate       float64
	Cache        VerdictCache
	Logger       log.Logger
}

// Classifier decides whether a candidate address is permitted. It holds no
// mutable state besides the optional cache and is safe for concurrent use
// from any goroutine, including the engine's policy callbacks.
type Classifier struct {
	domains   []domain.Fragment
	keywords  []domain.Fragment
	prefilter Prefilter
	windows   []int
	cache     VerdictCache
}

// New validates the fragment sets and constructs a Classifier.
func New(opts Options) (*Classifier, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if err := checkSet(opts.Domains, domain.FragmentDomain); err != nil {
		return nil, err
	}
	if err := checkSet(opts.Keywords, domain.FragmentKeyword); err != nil {
		return nil, err
	}

	c := &Classifier{
		domains:  append([]domain.Fragment(nil), opts.Domains...),
		keywords: append([]domain.Fragment(nil), opts.Keywords...),
		cache:    opts.Cache,
	}

	minFragments := opts.PrefilterMin
	if minFragments <= 0 {
		minFragments = DefaultPrefilterMin
	}
	total := len(c.domains) + len(c.keywords)
	if opts.Prefilter != nil && total >= minFragments {
		fp := opts.FPRate
		if fp <= 0 || fp >= 1 {
			fp = DefaultFPRate
		}
		c.prefilter = opts.Prefilter.New(uint64(total), fp)
		lengths := make(map[int]struct{})
		for _, set := range [][]domain.Fragment{c.domains, c.keywords} {
			for _, f := range set {
				c.prefilter.Add([]byte(f.Text))
				lengths[len(f.Text)] = struct{}{}
			}
		}
		for l := range lengths {
			c.windows = append(c.windows, l)
		}
		sort.Ints(c.windows)
	}

	logger.Debug(map[string]any{
		"domains":     len(c.domains),
		"keywords":    len(c.keywords),
		"prefiltered": c.prefilter != nil,
		"cached":      c.cache != nil,
	}, "classifier_ready")
	return c, nil
}

func checkSet(set []domain.Fragment, kind domain.FragmentKind) error {
	for i, f := range set {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("%w: %s[%d]: %v", ErrInvalidFragment, kind, i, err)
		}
		if f.Kind != kind {
			return fmt.Errorf("%w: %s[%d]: %q is a %s fragment", ErrInvalidFragment, kind, i, f.Text, f.Kind)
		}
	}
	return nil
}

// Classify returns the verdict for candidate. Every domain fragment is tried
// before any keyword fragment and the first substring hit wins. Any input,
// including the empty string, is valid and yields Allowed unless it matches.
func (c *Classifier) Classify(candidate string) domain.ClassificationVerdict {
	folded := utils.FoldAddress(candidate)
	if c.cache != nil {
		if v, ok := c.cache.Get(folded); ok {
			return v
		}
	}
	v := c.evaluate(folded)
	if c.cache != nil {
		c.cache.Put(folded, v)
	}
	return v
}

func (c *Classifier) evaluate(folded string) domain.ClassificationVerdict {
	if !c.mayMatch(folded) {
		return domain.Allowed()
	}
	for _, f := range c.domains {
		if strings.Contains(folded, f.Text) {
			return domain.BlockedBy(f)
		}
	}
	for _, f := range c.keywords {
		if strings.Contains(folded, f.Text) {
			return domain.BlockedBy(f)
		}
	}
	return domain.Allowed()
}

// mayMatch slides a window of every distinct fragment length across the
// candidate. A false result proves no fragment is a substring.
func (c *Classifier) mayMatch(folded string) bool {
	if c.prefilter == nil {
		return true
	}
	b := []byte(folded)
	for _, w := range c.windows {
		if w > len(b) {
			break
		}
		for i := 0; i+w <= len(b); i++ {
			if c.prefilter.MightContain(b[i : i+w]) {
				return true
			}
		}
	}
	return false
}

// Fragments returns copies of the ordered domain and keyword sets.
func (c *Classifier) Fragments() (domains, keywords []domain.Fragment) {
	return append([]domain.Fragment(nil), c.domains...), append([]domain.Fragment(nil), c.keywords...)
}

// Stats reports configuration and cache counters.
func (c *Classifier) Stats() Stats {
	st := Stats{
		DomainFragments:  len(c.domains),
		KeywordFragments: len(c.keywords),
		Prefiltered:      c.prefilter != nil,
		WindowLengths:    len(c.windows),
	}
	if c.cache != nil {
		st.Cache.Size = c.cache.Len()
		st.Cache.Hits, st.Cache.Misses, st.Cache.Evictions = c.cache.Stats()
	}
	return st
}
