package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// domainBloom is a negative-lookup pre-filter over every domain_key
// ever ingested, so GetFiltersForDomain can skip the SQL round trip
// for a suffix that was never stored. Grounded on the probabilistic
// blocklist membership check in dashdns-dns-mesh-sidecar's
// pkg/matcher.BuildMatcher, which builds one exactly this way when a
// rule set grows past a size threshold.
//
// This is purely an optimisation: a false positive just costs an
// extra (empty) SQL query. The filter is rebuilt from scratch in
// FinalizeForRead, once ingestion is done, so it always reflects the
// full set of ingested domain keys by the time queries start.
type domainBloom struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	n      uint
}

// bloomFalsePositiveRate is generous on purpose: a false positive only
// costs a wasted SQL query, never a wrong answer.
const bloomFalsePositiveRate = 1e-3

func newDomainBloom() *domainBloom {
	return &domainBloom{filter: bloom.NewWithEstimates(1024, bloomFalsePositiveRate)}
}

// reset rebuilds the filter sized for n expected domain keys.
func (b *domainBloom) reset(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n < 1024 {
		n = 1024
	}
	b.filter = bloom.NewWithEstimates(uint(n), bloomFalsePositiveRate)
	b.n = 0
}

func (b *domainBloom) add(domainKey string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.AddString(domainKey)
	b.n++
}

// mightContain reports whether domainKey could have been ingested. A
// false return is definitive; a true return requires the SQL query to
// confirm.
func (b *domainBloom) mightContain(domainKey string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.TestString(domainKey)
}
