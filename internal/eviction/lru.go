// Package eviction implements the cache's size-bounded eviction
// strategy, ported from the original's MaxCountLruStrategy: an
// approximate atomic block count compared against a fixed budget, with
// the metadata store supplying least-recently-used candidates once the
// budget is exceeded.
package eviction

import "sync/atomic"

// LRUProvider supplies the n least-recently-used block keys, ordered
// oldest-first. Implemented by internal/metadata.Store.
type LRUProvider interface {
	FindLRU(n uint64) ([]string, error)
}

// MaxCountLRU tracks an approximate count of cached blocks and, once
// that count exceeds MaxBlocks, selects the oldest blocks for removal
// down to the budget.
//
// The count is approximate by design: it lives only in memory, starts at
// zero, and is adjusted by Add/Sub without being reconciled against the
// metadata store's row count, so it can drift from the true number of
// records (e.g. across a restart). That's acceptable for an eviction
// trigger — it only needs to fire "close enough" to the budget, never to
// be exact.
type MaxCountLRU struct {
	maxBlocks uint64
	size      atomic.Uint64
	provider  LRUProvider
}

// NewMaxCountLRU returns a strategy with the given block budget, backed
// by provider for LRU candidate selection.
func NewMaxCountLRU(maxBlocks uint64, provider LRUProvider) *MaxCountLRU {
	return &MaxCountLRU{maxBlocks: maxBlocks, provider: provider}
}

// Add records that n more blocks have been cached.
func (s *MaxCountLRU) Add(n uint64) {
	s.size.Add(n)
}

// Sub records that n blocks have been removed, saturating at zero
// rather than underflowing — mirroring the original's u32 overflow
// guard in its own sub().
func (s *MaxCountLRU) Sub(n uint64) {
	for {
		cur := s.size.Load()
		next := uint64(0)
		if n < cur {
			next = cur - n
		}
		if s.size.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Size returns the current approximate block count.
func (s *MaxCountLRU) Size() uint64 {
	return s.size.Load()
}

// ReadyForCleaning reports whether the tracked size exceeds the budget.
func (s *MaxCountLRU) ReadyForCleaning() bool {
	return s.size.Load() > s.maxBlocks
}

// SelectForRemoval asks the LRU provider for enough of the oldest blocks
// to bring the tracked size back down to the budget. Returns nil if not
// ready for cleaning.
func (s *MaxCountLRU) SelectForRemoval() ([]string, error) {
	size := s.size.Load()
	if size <= s.maxBlocks {
		return nil, nil
	}
	return s.provider.FindLRU(size - s.maxBlocks)
}
