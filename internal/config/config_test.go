package config

import "testing"

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upstream.Host != "api.bossdb.io" {
		t.Fatalf("unexpected default host: %v", cfg.Upstream.Host)
	}
	if cfg.Eviction.MaxBlocks != 1000 {
		t.Fatalf("unexpected default max blocks: %v", cfg.Eviction.MaxBlocks)
	}
	if cfg.Blockstore.Kind != "local" {
		t.Fatalf("unexpected default blockstore kind: %v", cfg.Blockstore.Kind)
	}
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("BOSSHOST", "custom.example.org")
	t.Setenv("MAX_CUBOIDS", "42")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upstream.Host != "custom.example.org" {
		t.Fatalf("expected env override, got %v", cfg.Upstream.Host)
	}
	if cfg.Eviction.MaxBlocks != 42 {
		t.Fatalf("expected env override, got %v", cfg.Eviction.MaxBlocks)
	}
}

func TestValidateRejectsUnknownTracker(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Usage.Tracker = "carrier-pigeon"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for unknown tracker")
	}
}

func TestParseCuboidSize(t *testing.T) {
	x, y, z, err := ParseCuboidSize("512,512,16")
	if err != nil {
		t.Fatalf("ParseCuboidSize: %v", err)
	}
	if x != 512 || y != 512 || z != 16 {
		t.Fatalf("unexpected parse result: %d,%d,%d", x, y, z)
	}

	if _, _, _, err := ParseCuboidSize("512,512"); err == nil {
		t.Fatalf("expected error for malformed cuboid size")
	}
}
