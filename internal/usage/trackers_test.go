package usage

import (
	"context"
	"testing"
)

type fakeMetadataStore struct {
	accesses []string
	evicted  []string
	count    int64
	seen     map[string]bool
}

func (f *fakeMetadataStore) GetOrCreateCacheRoot(ctx context.Context, path string) (uint, error) {
	return 1, nil
}

// LogAccess mimics the real store's insert-vs-update distinction: the
// first touch of a key is a fresh insert (created == true, count grows),
// every later touch is an update in place (created == false, count
// unchanged) — so tests can exercise the "Add only on insert" contract.
func (f *fakeMetadataStore) LogAccess(ctx context.Context, cacheRootID uint, blockKey string) (bool, error) {
	f.accesses = append(f.accesses, blockKey)
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[blockKey] {
		return false, nil
	}
	f.seen[blockKey] = true
	f.count++
	return true, nil
}

func (f *fakeMetadataStore) Evict(ctx context.Context, keys []string, remove func(cacheRootID uint, blockKey string) error) (int, error) {
	for _, k := range keys {
		if remove != nil {
			_ = remove(1, k)
		}
		f.evicted = append(f.evicted, k)
		f.count--
	}
	return len(keys), nil
}

func (f *fakeMetadataStore) CountBlocks(ctx context.Context) (int64, error) {
	return f.count, nil
}

type fakeStrategy struct {
	size      uint64
	maxBlocks uint64
	victims   []string
}

func (s *fakeStrategy) Add(n uint64) { s.size += n }
func (s *fakeStrategy) Sub(n uint64) {
	if n > s.size {
		s.size = 0
		return
	}
	s.size -= n
}
func (s *fakeStrategy) ReadyForCleaning() bool { return s.size > s.maxBlocks }
func (s *fakeStrategy) SelectForRemoval() ([]string, error) {
	if !s.ReadyForCleaning() {
		return nil, nil
	}
	return s.victims, nil
}

func TestCacheManagerTrackerLogsWithoutEvictionUnderBudget(t *testing.T) {
	store := &fakeMetadataStore{}
	strategy := &fakeStrategy{maxBlocks: 10}
	tracker := &CacheManagerTracker{Store: store, Strategy: strategy}

	tracker.LogRequest("0/x0_y0_z0")

	if len(store.accesses) != 1 {
		t.Fatalf("expected 1 access logged, got %d", len(store.accesses))
	}
	if len(store.evicted) != 0 {
		t.Fatalf("expected no evictions under budget, got %v", store.evicted)
	}
}

func TestCacheManagerTrackerEvictsOverBudget(t *testing.T) {
	store := &fakeMetadataStore{count: 10}
	strategy := &fakeStrategy{maxBlocks: 10, size: 10, victims: []string{"old-key"}}
	removed := ""
	tracker := &CacheManagerTracker{
		Store:    store,
		Strategy: strategy,
		RemoveFunc: func(cacheRootID uint, blockKey string) error {
			removed = blockKey
			return nil
		},
	}

	tracker.LogRequest("0/x1_y0_z0")

	if len(store.evicted) != 1 || store.evicted[0] != "old-key" {
		t.Fatalf("expected eviction of old-key, got %v", store.evicted)
	}
	if removed != "old-key" {
		t.Fatalf("expected RemoveFunc invoked with old-key, got %q", removed)
	}
	if strategy.size != 10 {
		t.Fatalf("expected strategy size reduced by 1 eviction (11-1=10), got %d", strategy.size)
	}
}

func TestCacheManagerTrackerAddsOnlyOnFreshInsert(t *testing.T) {
	store := &fakeMetadataStore{}
	strategy := &fakeStrategy{maxBlocks: 10}
	tracker := &CacheManagerTracker{Store: store, Strategy: strategy}

	tracker.LogRequest("0/x0_y0_z0")
	tracker.LogRequest("0/x0_y0_z0")
	tracker.LogRequest("0/x0_y0_z0")

	if len(store.accesses) != 3 {
		t.Fatalf("expected 3 accesses logged, got %d", len(store.accesses))
	}
	if strategy.size != 1 {
		t.Fatalf("expected strategy size to grow only on the first (insert) access, got %d", strategy.size)
	}
}

func TestParseTrackerKindDefaultsToNone(t *testing.T) {
	if got := ParseTrackerKind("carrier-pigeon"); got != TrackerNone {
		t.Fatalf("expected TrackerNone for unknown kind, got %v", got)
	}
	if got := ParseTrackerKind("console"); got != TrackerConsole {
		t.Fatalf("expected TrackerConsole, got %v", got)
	}
}

func TestNewTrackerRequiresCacheManagerForDB(t *testing.T) {
	if _, err := NewTracker(TrackerDB, nil); err == nil {
		t.Fatalf("expected error constructing db tracker without a CacheManagerTracker")
	}
}
