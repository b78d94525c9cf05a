package watcher

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

const (
	dedupLimit = 1000
	dedupEvict = 200
)

// Deduplicator remembers recently notified transaction hashes so a
// transaction seen again (overlapping ranges, concurrent passes, reorged
// duplicates) is never reported twice. The memory is bounded: once the set
// grows past its limit the oldest-recorded entries are evicted in insertion
// order. State lives only in memory and resets on restart.
type Deduplicator struct {
	mu    sync.Mutex
	set   map[common.Hash]struct{}
	order []common.Hash
}

// NewDeduplicator returns an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{set: make(map[common.Hash]struct{})}
}

// Seen reports whether the transaction has already been notified.
func (d *Deduplicator) Seen(tx common.Hash) bool {
	d.mu.Lock()
	_, ok := d.set[tx]
	d.mu.Unlock()
	return ok
}

// Record marks a transaction as notified. Recording the same hash twice is a
// no-op. When the set exceeds its limit the oldest entries are dropped.
func (d *Deduplicator) Record(tx common.Hash) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.set[tx]; ok {
		return
	}
	d.set[tx] = struct{}{}
	d.order = append(d.order, tx)

	if len(d.set) > dedupLimit {
		for _, old := range d.order[:dedupEvict] {
			delete(d.set, old)
		}
		d.order = append(make([]common.Hash, 0, len(d.order)-dedupEvict), d.order[dedupEvict:]...)
	}
}

// Len returns the number of remembered transactions.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.set)
}
