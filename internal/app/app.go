// Package app wires the cache proxy's components together from a
// loaded configuration: metadata store, eviction strategy, usage
// pipeline, block store backend, upstream relay, and the layered data
// manager chain. Grounded on the teacher's pkg/config.InitializeRegistry
// composition root, trimmed to this domain's dependency graph.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aplbrain/bossphorus/internal/blockstore"
	blocklocal "github.com/aplbrain/bossphorus/internal/blockstore/local"
	blocks3 "github.com/aplbrain/bossphorus/internal/blockstore/s3"
	"github.com/aplbrain/bossphorus/internal/config"
	"github.com/aplbrain/bossphorus/internal/coord"
	"github.com/aplbrain/bossphorus/internal/eviction"
	"github.com/aplbrain/bossphorus/internal/layer"
	"github.com/aplbrain/bossphorus/internal/metadata"
	"github.com/aplbrain/bossphorus/internal/telemetry/metrics"
	"github.com/aplbrain/bossphorus/internal/upstream"
	"github.com/aplbrain/bossphorus/internal/usage"
)

// App holds every long-lived component the cache proxy needs to serve
// requests, assembled once at startup by New.
type App struct {
	Config     *config.Config
	CuboidSize coord.Vector3
	Metadata   *metadata.Store
	Strategy   *eviction.MaxCountLRU
	Manager    layer.Manager
	Metrics    *metrics.Metrics
	Registry   *prometheus.Registry
	CacheRoot  uint
}

// New builds an App from cfg: opens the metadata store, constructs the
// eviction strategy, picks the local-layer block backend, starts the
// usage pipeline, and composes the Local -> Upstream -> Null layer DAG.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	x, y, z, err := config.ParseCuboidSize(cfg.Cache.CuboidSize)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	cuboidSize := coord.Vector3{X: x, Y: y, Z: z}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var store blockstore.Store
	switch cfg.Blockstore.Kind {
	case "s3":
		s3Store, err := blocks3.NewFromConfig(ctx, blocks3.Config{
			Bucket:         cfg.Blockstore.S3Bucket,
			Region:         cfg.Blockstore.S3Region,
			Endpoint:       cfg.Blockstore.S3Endpoint,
			ForcePathStyle: cfg.Blockstore.S3ForcePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("app: build s3 blockstore: %w", err)
		}
		store = s3Store
	default:
		store = blocklocal.New(cfg.Cache.RootPath)
	}

	mdStore, err := metadata.New(metadata.Config{URL: cfg.Metadata.DBURL})
	if err != nil {
		return nil, fmt.Errorf("app: open metadata store: %w", err)
	}

	cacheRoot, err := mdStore.GetOrCreateCacheRoot(ctx, cfg.Cache.RootPath)
	if err != nil {
		return nil, fmt.Errorf("app: register cache root: %w", err)
	}

	strategy := eviction.NewMaxCountLRU(cfg.Eviction.MaxBlocks, mdStore)

	removeFunc := func(cacheRootID uint, blockKey string) error {
		return store.DeleteBlock(ctx, blockKey)
	}
	dbTracker := &usage.CacheManagerTracker{
		Store:      mdStore,
		Strategy:   strategy,
		CacheRoot:  cacheRoot,
		RemoveFunc: removeFunc,
		Metrics:    m,
	}

	trackerKind := usage.ParseTrackerKind(cfg.Usage.Tracker)
	tracker, err := usage.NewTracker(trackerKind, dbTracker)
	if err != nil {
		return nil, fmt.Errorf("app: build usage tracker: %w", err)
	}
	usage.Run(tracker)

	relay := upstream.New("https://"+cfg.Upstream.Host, cfg.Upstream.Token)

	upstreamLayer := &layer.Upstream{Relay: relay, Metrics: m}
	local := &layer.Local{
		Store:        store,
		CuboidSize:   cuboidSize,
		Next:         upstreamLayer,
		Metrics:      m,
		UsageEnabled: trackerKind != usage.TrackerNone,
	}

	return &App{
		Config:     cfg,
		CuboidSize: cuboidSize,
		Metadata:   mdStore,
		Strategy:   strategy,
		Manager:    local,
		Metrics:    m,
		Registry:   reg,
		CacheRoot:  cacheRoot,
	}, nil
}
