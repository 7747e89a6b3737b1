// Package config loads the cache proxy's configuration, grounded on the
// teacher's pkg/config viper/mapstructure/validator pipeline but trimmed
// to this domain's fields, and with env vars taking precedence over an
// optional config file (reversed from the teacher's file-first default,
// to match this service's flat BOSSHOST/BOSSTOKEN/... env var surface).
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// UpstreamConfig configures the relay to the remote bossdb-compatible
// service used to fill cache misses.
type UpstreamConfig struct {
	Host  string `mapstructure:"host" validate:"required"`
	Token string `mapstructure:"token" validate:"required"`
}

// UsageConfig selects which usage-pipeline tracker consumes access events.
type UsageConfig struct {
	Tracker string `mapstructure:"tracker" validate:"required,oneof=none console db"`
}

// MetadataConfig configures the metadata store's database connection.
type MetadataConfig struct {
	DBURL string `mapstructure:"db_url" validate:"required"`
}

// CacheConfig configures the local cache root and cuboid geometry.
type CacheConfig struct {
	RootPath   string `mapstructure:"root_path" validate:"required"`
	CuboidSize string `mapstructure:"cuboid_size" validate:"required"` // "x,y,z"
}

// EvictionConfig configures the eviction strategy's block-count budget.
type EvictionConfig struct {
	MaxBlocks uint64 `mapstructure:"max_blocks" validate:"required,gt=0"`
}

// BlockstoreConfig selects and configures the local-layer block backend.
type BlockstoreConfig struct {
	Kind string `mapstructure:"kind" validate:"required,oneof=local s3"`

	S3Bucket         string `mapstructure:"s3_bucket"`
	S3Region         string `mapstructure:"s3_region"`
	S3Endpoint       string `mapstructure:"s3_endpoint"`
	S3ForcePathStyle bool   `mapstructure:"s3_force_path_style"`
}

// LoggingConfig controls the process-wide logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// Config is the fully resolved configuration for the bossphorusd process.
type Config struct {
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	Usage      UsageConfig      `mapstructure:"usage"`
	Metadata   MetadataConfig   `mapstructure:"metadata"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Eviction   EvictionConfig   `mapstructure:"eviction"`
	Blockstore BlockstoreConfig `mapstructure:"blockstore"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// envBindings maps each flat environment variable this service documents
// to the dotted viper key it fills in, so a bare "BOSSHOST=..." works
// without the "BOSSPHORUS_" prefix the rest of the teacher's ecosystem
// would expect.
var envBindings = map[string]string{
	"BOSSHOST":         "upstream.host",
	"BOSSTOKEN":        "upstream.token",
	"USAGE_TRACKER":    "usage.tracker",
	"BOSSPHORUS_DB_URL": "metadata.db_url",
	"CUBOID_ROOT_PATH": "cache.root_path",
	"CUBOID_SIZE":      "cache.cuboid_size",
	"MAX_CUBOIDS":      "eviction.max_blocks",
	"BLOCKSTORE_KIND":  "blockstore.kind",
	"LOG_LEVEL":        "logging.level",
	"LOG_FORMAT":       "logging.format",
	"METRICS_ADDR":     "metrics.addr",
}

// defaults mirrors the table in the configuration reference: every field
// has a usable default; BOSSPHORUS_DB_URL defaults to the SQLite file
// ./cache-db.sqlite and must be set explicitly to use Postgres.
func defaults() map[string]any {
	return map[string]any{
		"upstream.host":      "api.bossdb.io",
		"upstream.token":     "public",
		"usage.tracker":      "db",
		"metadata.db_url":    "./cache-db.sqlite",
		"cache.root_path":    "./cache",
		"cache.cuboid_size":  "512,512,16",
		"eviction.max_blocks": 1000,
		"blockstore.kind":    "local",
		"logging.level":      "INFO",
		"logging.format":     "text",
		"metrics.addr":       ":9090",
	}
}

// Load resolves configuration from, in increasing precedence: hard-coded
// defaults, an optional YAML file at configPath, and environment
// variables (both the flat BOSSHOST-style vars and BOSSPHORUS_-prefixed
// dotted overrides).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix("BOSSPHORUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for envVar, key := range envBindings {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("config: bind env %s: %w", envVar, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// ParseCuboidSize parses a "x,y,z" string (e.g. "512,512,16") into its
// three components. Used by internal/app to turn CacheConfig.CuboidSize
// into a coord.Vector3 without internal/config importing internal/coord.
func ParseCuboidSize(s string) (x, y, z uint64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("config: cuboid size %q: expected \"x,y,z\"", s)
	}
	vals := make([]uint64, 3)
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("config: cuboid size %q: %w", s, err)
		}
		vals[i] = n
	}
	return vals[0], vals[1], vals[2], nil
}
