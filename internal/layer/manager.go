// Package layer implements the cache proxy's orchestration core: a DAG
// of layers — local cache, upstream relay, terminal null — each
// satisfying the same Manager interface, composed by construction at
// startup (spec.md §4.4). Local.GetData is the read-through path:
// decompose the requested region into per-cuboid sub-windows, serve
// whatever is already on disk, and fill misses from the next layer with
// write-back. Local.PutData is the corresponding write-through path.
package layer

import (
	"context"
	"fmt"

	"github.com/aplbrain/bossphorus/internal/apperrors"
	"github.com/aplbrain/bossphorus/internal/blockstore"
	"github.com/aplbrain/bossphorus/internal/channel"
	"github.com/aplbrain/bossphorus/internal/coord"
	"github.com/aplbrain/bossphorus/internal/telemetry/logger"
	"github.com/aplbrain/bossphorus/internal/telemetry/metrics"
	"github.com/aplbrain/bossphorus/internal/usage"
)

// Manager is the layer interface every variant implements: GetData
// serves a cutout, PutData persists one, NextLayer exposes the next
// link in the DAG (nil at the terminal layer).
type Manager interface {
	GetData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3) ([]byte, error)
	// PutData persists data, a Z-major array of shape (destination-origin),
	// covering the region [origin, destination).
	PutData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3, data []byte) error
	NextLayer() Manager
}

// blockKey builds the on-disk/S3 key for cuboid index idx of channelURI
// at resolution, e.g. "col/exp/chan/0/x1_y0_z2".
func blockKey(channelURI string, resolution int, idx coord.Vector3) string {
	return fmt.Sprintf("%s/%d/%s", channel.Path(channelURI), resolution, idx.String())
}

// Local is the local-cache layer: it serves cuboids from store when
// present, and otherwise fetches the full cuboid from next and writes
// it back before answering.
type Local struct {
	Store      blockstore.Store
	CuboidSize coord.Vector3
	Next       Manager
	Metrics    *metrics.Metrics

	// UsageEnabled gates whether touched block keys are published to
	// the usage pipeline. It's a field rather than inferred from a nil
	// check so tests can exercise the pipeline deterministically.
	UsageEnabled bool
}

// NextLayer implements Manager.
func (l *Local) NextLayer() Manager { return l.Next }

// logCtx enriches ctx's LogContext (set by the API layer's requestLogger
// middleware) with the block key this operation touched, so a log line
// emitted here carries the same request ID/channel/resolution fields as
// the HTTP handler that initiated it, plus the block in question.
func logCtx(ctx context.Context, key string) context.Context {
	lc := logger.FromContext(ctx)
	if lc == nil {
		return ctx
	}
	return logger.WithContext(ctx, lc.WithBlock("", key))
}

// GetData implements Manager's read path (spec.md §4.4 steps 1-4).
func (l *Local) GetData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3) ([]byte, error) {
	blocks := coord.Decompose(origin, destination, l.CuboidSize)

	shape := destination.Sub(origin)
	out := make([]byte, shape.Volume())

	for idx, rng := range blocks {
		extent := rng.Stop.Sub(rng.Start)
		if extent.Volume() == 0 {
			// A zero-width local range touches nothing: skip entirely, so a
			// zero-extent cutout never issues a usage event or an upstream
			// call (spec.md E5).
			continue
		}

		key := blockKey(channelURI, resolution, idx)

		if l.UsageEnabled {
			usage.TrySend(key)
		}

		blockData, hit, err := l.readOrFill(ctx, channelURI, resolution, idx, key)
		if err != nil {
			return nil, fmt.Errorf("layer: fill block %q: %w", key, err)
		}
		l.Metrics.RecordCacheRequest("local", hit)

		blockOrigin := idx.GlobalOrigin(l.CuboidSize)
		destOrigin := blockOrigin.Add(rng.Start).Sub(origin)

		coord.CopyRegion(out, shape, destOrigin, blockData, l.CuboidSize, rng.Start, extent)
	}

	return out, nil
}

// readOrFill returns the full cuboid at idx, reading it from the local
// store if present, or fetching it from the next layer and writing it
// back (spec.md §4.4 step 3d) otherwise. The second return value
// reports whether the block was already cached (a hit).
func (l *Local) readOrFill(ctx context.Context, channelURI string, resolution int, idx coord.Vector3, key string) ([]byte, bool, error) {
	data, err := l.Store.ReadBlock(ctx, key)
	if err == nil {
		return data, true, nil
	}
	if err != blockstore.ErrBlockNotFound {
		// apperrors.ErrLocalIO: any local read failure (not just a miss)
		// falls through to the next layer rather than aborting the call.
		logger.WarnCtx(logCtx(ctx, key), "layer: local read failed, falling through", "error", fmt.Errorf("%w: %v", apperrors.ErrLocalIO, err))
	}

	if l.Next == nil {
		return nil, false, ErrNullLayer
	}

	blockOrigin := idx.GlobalOrigin(l.CuboidSize)
	blockStop := blockOrigin.Add(l.CuboidSize)

	fetched, err := l.Next.GetData(ctx, channelURI, resolution, blockOrigin, blockStop)
	if err != nil {
		return nil, false, fmt.Errorf("fetch from next layer: %w", err)
	}

	if err := l.Store.WriteBlock(ctx, key, fetched); err != nil {
		logger.WarnCtx(logCtx(ctx, key), "layer: write-back failed", "error", fmt.Errorf("%w: %v", apperrors.ErrLocalIO, err))
	} else {
		l.Metrics.RecordCacheFill(len(fetched))
	}

	return fetched, false, nil
}

// PutData implements Manager's write path (spec.md §4.4 write path).
func (l *Local) PutData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3, data []byte) error {
	shape := destination.Sub(origin)
	if shape.Volume() != uint64(len(data)) {
		return fmt.Errorf("layer: data length %d does not match shape %v (volume %d)", len(data), shape, shape.Volume())
	}
	blocks := coord.Decompose(origin, destination, l.CuboidSize)

	var firstErr error
	for idx, rng := range blocks {
		extent := rng.Stop.Sub(rng.Start)
		if extent.Volume() == 0 {
			continue
		}

		key := blockKey(channelURI, resolution, idx)

		blockData, err := l.Store.ReadBlock(ctx, key)
		if err != nil {
			if err != blockstore.ErrBlockNotFound {
				wrapped := fmt.Errorf("%w: %v", apperrors.ErrLocalIO, err)
				logger.WarnCtx(logCtx(ctx, key), "layer: read existing block for write failed", "error", wrapped)
				if firstErr == nil {
					firstErr = wrapped
				}
				continue
			}
			blockData = make([]byte, l.CuboidSize.Volume())
		}

		blockOrigin := idx.GlobalOrigin(l.CuboidSize)
		srcOrigin := blockOrigin.Add(rng.Start).Sub(origin)

		coord.CopyRegion(blockData, l.CuboidSize, rng.Start, data, shape, srcOrigin, extent)

		if err := l.Store.WriteBlock(ctx, key, blockData); err != nil {
			wrapped := fmt.Errorf("%w: %v", apperrors.ErrLocalIO, err)
			logger.WarnCtx(logCtx(ctx, key), "layer: write block failed", "error", wrapped)
			if firstErr == nil {
				firstErr = wrapped
			}
			continue
		}
	}

	return firstErr
}
