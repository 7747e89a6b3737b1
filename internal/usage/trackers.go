package usage

import (
	"context"
	"fmt"

	"github.com/aplbrain/bossphorus/internal/telemetry/logger"
	"github.com/aplbrain/bossphorus/internal/telemetry/metrics"
)

// NoneTracker discards every access event, matching the original's
// NoneTracker no-op.
type NoneTracker struct{}

func (NoneTracker) LogRequest(key string) {}

// ConsoleTracker logs each access event at debug level — the Go
// equivalent of the original's println!-based ConsoleUsageTracker, kept
// as a low-overhead option for local development.
type ConsoleTracker struct{}

func (ConsoleTracker) LogRequest(key string) {
	logger.Debug("usage: request", "key", key)
}

// MetadataStore is the subset of internal/metadata.Store the
// CacheManagerTracker needs, named as an interface so it can be faked in
// tests without a real database.
type MetadataStore interface {
	GetOrCreateCacheRoot(ctx context.Context, path string) (uint, error)
	LogAccess(ctx context.Context, cacheRootID uint, blockKey string) (created bool, err error)
	Evict(ctx context.Context, keys []string, remove func(cacheRootID uint, blockKey string) error) (int, error)
	CountBlocks(ctx context.Context) (int64, error)
}

// EvictionStrategy is the subset of internal/eviction.MaxCountLRU the
// CacheManagerTracker needs.
type EvictionStrategy interface {
	Add(n uint64)
	Sub(n uint64)
	ReadyForCleaning() bool
	SelectForRemoval() ([]string, error)
}

// CacheManagerTracker is the "db" tracker: it logs every access to the
// metadata store, then — when the eviction strategy reports the cache
// over budget — asks it for removal candidates and evicts them. This is
// the Go shape of the original's SimpleCacheManager gluing together a
// UsageManager and a Scheduling/Selection strategy.
type CacheManagerTracker struct {
	Store      MetadataStore
	Strategy   EvictionStrategy
	CacheRoot  uint
	RemoveFunc func(cacheRootID uint, blockKey string) error
	Metrics    *metrics.Metrics
}

// LogRequest implements Tracker.
func (t *CacheManagerTracker) LogRequest(key string) {
	ctx := context.Background()

	created, err := t.Store.LogAccess(ctx, t.CacheRoot, key)
	if err != nil {
		logger.Error("usage: log access failed", "key", key, "error", err)
		return
	}
	if created {
		t.Strategy.Add(1)
	}

	if count, err := t.Store.CountBlocks(ctx); err == nil {
		t.Metrics.SetCachedBlocks(count)
	}

	if !t.Strategy.ReadyForCleaning() {
		return
	}

	victims, err := t.Strategy.SelectForRemoval()
	if err != nil {
		logger.Error("usage: select eviction candidates failed", "error", err)
		return
	}
	if len(victims) == 0 {
		return
	}

	removed, err := t.Store.Evict(ctx, victims, t.RemoveFunc)
	if err != nil {
		logger.Error("usage: evict failed", "error", err)
	}
	if removed > 0 {
		t.Strategy.Sub(uint64(removed))
		t.Metrics.RecordEviction(removed)
		logger.Info("usage: evicted cuboids", "count", removed)
	}
}

// TrackerKind names the available Tracker implementations, matching the
// original's UsageTrackerType enum and its string mapping in
// get_tracker_type.
type TrackerKind string

const (
	TrackerNone    TrackerKind = "none"
	TrackerConsole TrackerKind = "console"
	TrackerDB      TrackerKind = "db"
)

// ParseTrackerKind maps a config string to a TrackerKind, defaulting to
// TrackerNone on an unrecognized value — matching get_tracker_type's
// "unknown usage tracker" warning-and-fallback behavior.
func ParseTrackerKind(name string) TrackerKind {
	switch TrackerKind(name) {
	case TrackerNone, TrackerConsole, TrackerDB:
		return TrackerKind(name)
	default:
		logger.Warn("usage: unknown tracker kind, defaulting to none", "kind", name)
		return TrackerNone
	}
}

// NewTracker builds the Tracker named by kind. TrackerDB requires a
// non-nil db; passing nil with kind == TrackerDB is a programmer error.
func NewTracker(kind TrackerKind, db *CacheManagerTracker) (Tracker, error) {
	switch kind {
	case TrackerNone:
		return NoneTracker{}, nil
	case TrackerConsole:
		return ConsoleTracker{}, nil
	case TrackerDB:
		if db == nil {
			return nil, fmt.Errorf("usage: TrackerDB requires a CacheManagerTracker")
		}
		return db, nil
	default:
		return NoneTracker{}, nil
	}
}
