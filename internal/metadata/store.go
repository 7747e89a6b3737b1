// Package metadata persists per-block access history (which cache root a
// block lives under, how many times it has been requested, when it was
// last touched) behind a dual SQLite/Postgres GORM backend, grounded on
// the teacher's pkg/controlplane/store GORMStore: same dialector switch,
// same AutoMigrate-on-open setup, same gorm.ErrRecordNotFound mapping.
//
// Record keeping for least-recently-used selection and cache-root path
// resolution is ported from the original's SqliteCacheManager
// (db.rs): log_request's update-or-insert pattern, find_lru's
// order-by-last_accessed query, and the cache_root_map memoization in
// get_cache_root_path_from_map.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup by key finds nothing.
var ErrNotFound = errors.New("metadata: not found")

// DatabaseType selects between SQLite and PostgreSQL backends.
type DatabaseType string

const (
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"
)

// Config describes how to reach the metadata database. URL is a DSN: a
// plain filesystem path (or "file:..." / "sqlite:..." URI) selects
// SQLite, a "postgres://" URL selects PostgreSQL — mirroring how
// internal/config's BOSSPHORUS_DB_URL field is documented.
type Config struct {
	URL string
}

// resolve splits Config.URL into a DatabaseType and a driver-ready DSN.
func (c Config) resolve() (DatabaseType, string) {
	switch {
	case strings.HasPrefix(c.URL, "postgres://"), strings.HasPrefix(c.URL, "postgresql://"):
		return DatabaseTypePostgres, c.URL
	case strings.HasPrefix(c.URL, "sqlite://"):
		return DatabaseTypeSQLite, strings.TrimPrefix(c.URL, "sqlite://")
	case strings.HasPrefix(c.URL, "file:"):
		return DatabaseTypeSQLite, strings.TrimPrefix(c.URL, "file:")
	default:
		return DatabaseTypeSQLite, c.URL
	}
}

// Store is the GORM-backed metadata store.
type Store struct {
	db *gorm.DB

	mu            sync.Mutex
	cacheRootByID map[uint]string
}

// New opens (and, for SQLite, creates) the metadata database at
// cfg.URL and runs AutoMigrate.
func New(cfg Config) (*Store, error) {
	dbType, dsn := cfg.resolve()

	var dialector gorm.Dialector
	switch dbType {
	case DatabaseTypeSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("metadata: create db directory: %w", err)
			}
		}
		dialector = sqlite.Open(dsn + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	case DatabaseTypePostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("metadata: unsupported database type %q", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("metadata: connect: %w", err)
	}

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("metadata: migrate: %w", err)
	}

	return &Store{db: db, cacheRootByID: make(map[uint]string)}, nil
}

// DB returns the underlying *gorm.DB, for callers (migrate CLI command,
// tests) that need direct access.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// GetOrCreateCacheRoot returns the id of the CacheRoot row for path,
// inserting one if it doesn't exist yet — the Go analogue of
// SqliteCacheManager::get_cache_root_id's select-or-insert loop.
func (s *Store) GetOrCreateCacheRoot(ctx context.Context, path string) (uint, error) {
	var root CacheRoot
	err := s.db.WithContext(ctx).Where(CacheRoot{Path: path}).FirstOrCreate(&root, CacheRoot{Path: path}).Error
	if err != nil {
		return 0, fmt.Errorf("metadata: get or create cache root %q: %w", path, err)
	}

	s.mu.Lock()
	s.cacheRootByID[root.ID] = root.Path
	s.mu.Unlock()

	return root.ID, nil
}

// CacheRootPath resolves a cache root id to its filesystem path, first
// checking the in-memory cache_root_map before falling back to the DB —
// ported from get_cache_root_path_from_map.
func (s *Store) CacheRootPath(ctx context.Context, rootID uint) (string, error) {
	s.mu.Lock()
	if path, ok := s.cacheRootByID[rootID]; ok {
		s.mu.Unlock()
		return path, nil
	}
	s.mu.Unlock()

	var root CacheRoot
	if err := s.db.WithContext(ctx).First(&root, rootID).Error; err != nil {
		return "", convertNotFoundError(err, ErrNotFound)
	}

	s.mu.Lock()
	s.cacheRootByID[rootID] = root.Path
	s.mu.Unlock()

	return root.Path, nil
}

// LogAccess records a touch of blockKey under cacheRootID: if a record
// already exists, its request count is incremented and LastAccessedAt is
// bumped; otherwise a new record is inserted with RequestCount 1. This
// mirrors log_request's update, falling back to insert only when the
// update affects zero rows. The returned bool reports whether a new
// BlockRecord was inserted (true) versus an existing one touched
// (false), so callers can track the eviction strategy's size counter
// against inserts only.
func (s *Store) LogAccess(ctx context.Context, cacheRootID uint, blockKey string) (created bool, err error) {
	now := time.Now()

	result := s.db.WithContext(ctx).
		Model(&BlockRecord{}).
		Where("cache_root_id = ? AND block_key = ?", cacheRootID, blockKey).
		Updates(map[string]any{
			"request_count":    gorm.Expr("request_count + 1"),
			"last_accessed_at": now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("metadata: log access %q: %w", blockKey, result.Error)
	}
	if result.RowsAffected > 0 {
		return false, nil
	}

	record := BlockRecord{
		CacheRootID:    cacheRootID,
		BlockKey:       blockKey,
		RequestCount:   1,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return false, fmt.Errorf("metadata: insert access record %q: %w", blockKey, err)
	}
	return true, nil
}

// FindLRU returns the block keys of the n least-recently-accessed
// records, oldest first, implementing eviction.LRUProvider.
func (s *Store) FindLRU(n uint64) ([]string, error) {
	if n == 0 {
		return nil, nil
	}

	var records []BlockRecord
	if err := s.db.Order("last_accessed_at ASC").Limit(int(n)).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("metadata: find lru: %w", err)
	}

	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.BlockKey
	}
	return keys, nil
}

// Evict removes the BlockRecord rows for keys. remove is invoked once per
// key with its CacheRootID and BlockKey before the row is deleted, giving
// the caller a chance to remove the backing file; a remove failure skips
// that key's DB delete, matching clean_cache's "continue on file removal
// error" behavior.
func (s *Store) Evict(ctx context.Context, keys []string, remove func(cacheRootID uint, blockKey string) error) (int, error) {
	removed := 0
	for _, key := range keys {
		var record BlockRecord
		if err := s.db.WithContext(ctx).Where("block_key = ?", key).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return removed, fmt.Errorf("metadata: lookup %q for eviction: %w", key, err)
		}

		if remove != nil {
			if err := remove(record.CacheRootID, record.BlockKey); err != nil {
				continue
			}
		}

		if err := s.db.WithContext(ctx).Delete(&BlockRecord{}, record.ID).Error; err != nil {
			return removed, fmt.Errorf("metadata: delete record %q: %w", key, err)
		}
		removed++
	}
	return removed, nil
}

// CountBlocks returns the total number of tracked blocks, as reported by
// the "cache stats" command and the cached-blocks gauge. The eviction
// strategy's counter is not seeded from it.
func (s *Store) CountBlocks(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&BlockRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("metadata: count blocks: %w", err)
	}
	return count, nil
}

func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
