package blocklist

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Size      int    // current number of entries
	Hits      uint64 // total cache hits since construction
	Misses    uint64 // total cache misses since construction
	Evictions uint64 // total evictions since construction
}

// Stats reports the classifier's configuration and cache counters.
type Stats struct {
	DomainFragments  int
	KeywordFragments int
	Prefiltered      bool
	WindowLengths    int // distinct fragment lengths scanned by the prefilter
	Cache            CacheStats
}
