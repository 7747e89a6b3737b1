package metadata

import "time"

// CacheRoot records one local cache root directory this process has
// ever served blocks out of, mirroring the original's cache_roots table
// (a block's key is stored relative to its root, so the root itself
// only needs recording once).
type CacheRoot struct {
	ID   uint   `gorm:"primaryKey"`
	Path string `gorm:"uniqueIndex;not null"`
}

// BlockRecord tracks one cached cuboid's access history: how many times
// it has been requested and when it was last touched, the inputs to the
// eviction strategy's least-recently-used ordering.
type BlockRecord struct {
	ID             uint   `gorm:"primaryKey"`
	CacheRootID    uint   `gorm:"uniqueIndex:idx_block_records_root_key;not null"`
	BlockKey       string `gorm:"uniqueIndex:idx_block_records_root_key;not null"`
	RequestCount   int64  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	LastAccessedAt time.Time `gorm:"index"`
}

// AllModels lists every model AutoMigrate must create, mirroring the
// teacher's models.AllModels() used by GORMStore.New.
func AllModels() []any {
	return []any{
		&CacheRoot{},
		&BlockRecord{},
	}
}
