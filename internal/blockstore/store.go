// Package blockstore defines the Store interface shared by the local
// filesystem and S3-compatible block persistence backends.
package blockstore

import (
	"context"
	"errors"
)

// ErrBlockNotFound is returned by ReadBlock when the block does not
// exist, or exists but is empty — the two are treated identically per
// the "exists ⇔ nonempty content is available" invariant.
var ErrBlockNotFound = errors.New("blockstore: block not found")

// Store persists fixed-size cuboid blocks addressed by key (the block's
// path relative to a cache root, e.g. "coll/exp/chan/0/x1_y0_z2").
//
// Implementations must treat a write as a single create-or-truncate
// step: never create an empty placeholder file before writing content,
// since that window would make a concurrent reader observe a block that
// "exists" but has no data.
type Store interface {
	// ReadBlock returns the raw bytes of the block at key, or
	// ErrBlockNotFound if it does not exist or is empty.
	ReadBlock(ctx context.Context, key string) ([]byte, error)

	// WriteBlock persists data under key, replacing any existing
	// content atomically with respect to observers of the key's
	// existence.
	WriteBlock(ctx context.Context, key string, data []byte) error

	// DeleteBlock removes the block at key. A missing block is not
	// treated as an error on the caller's success path but should be
	// logged by the implementation.
	DeleteBlock(ctx context.Context, key string) error
}
