// Package local implements blockstore.Store on top of the local
// filesystem: each block is a single file of exactly Sx*Sy*Sz bytes,
// raw uint8 Z-Y-X-major voxel data, under a configured cache root.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aplbrain/bossphorus/internal/blockstore"
	"github.com/aplbrain/bossphorus/internal/telemetry/logger"
)

// Store is a filesystem-backed blockstore.Store rooted at Root.
type Store struct {
	Root string
}

// New returns a Store rooted at root. The root is created lazily by
// WriteBlock's parent-directory creation, not here.
func New(root string) *Store {
	return &Store{Root: root}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Root, key)
}

// ReadBlock implements blockstore.Store. A missing or empty file both
// report ErrBlockNotFound, matching the "exists ⇔ nonempty" invariant.
func (s *Store) ReadBlock(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, blockstore.ErrBlockNotFound
		}
		return nil, fmt.Errorf("local: read block %q: %w", key, err)
	}
	if len(data) == 0 {
		return nil, blockstore.ErrBlockNotFound
	}
	return data, nil
}

// WriteBlock implements blockstore.Store as a single create-or-truncate
// write (os.WriteFile), never pre-creating an empty file — a block is
// never observably "exists but empty" for longer than the write itself
// takes.
func (s *Store) WriteBlock(ctx context.Context, key string, data []byte) error {
	full := s.path(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("local: mkdir for block %q: %w", key, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("local: write block %q: %w", key, err)
	}
	return nil
}

// DeleteBlock implements blockstore.Store. A missing file is logged but
// not surfaced as an error.
func (s *Store) DeleteBlock(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("local blockstore: delete of missing block", "key", key)
			return nil
		}
		return fmt.Errorf("local: delete block %q: %w", key, err)
	}
	return nil
}
