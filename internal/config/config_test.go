package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.World.ChunkSize != 16 || cfg.World.ChunkHeight != 128 {
		t.Fatalf("unexpected world defaults: %+v", cfg.World)
	}
	if cfg.Jobs.Workers != runtime.NumCPU() {
		t.Fatalf("workers = %d, want NumCPU", cfg.Jobs.Workers)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
world:
  chunk_size: 32
  load_radius: 2
  seed: 99
jobs:
  workers: 3
observer:
  enabled: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.World.ChunkSize != 32 || cfg.World.LoadRadius != 2 || cfg.World.Seed != 99 {
		t.Fatalf("overrides not applied: %+v", cfg.World)
	}
	if cfg.Jobs.Workers != 3 {
		t.Fatalf("workers = %d, want 3", cfg.Jobs.Workers)
	}
	if cfg.Observer.Enabled {
		t.Fatalf("observer should be disabled")
	}
	// Untouched sections keep their defaults.
	if cfg.World.ChunkHeight != 128 {
		t.Fatalf("chunk_height default lost: %d", cfg.World.ChunkHeight)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero chunk size", "world:\n  chunk_size: 0\n"},
		{"negative radius", "world:\n  load_radius: -1\n"},
		{"non-loopback observer", "observer:\n  listen_addr: 0.0.0.0:7722\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "world: [not a map")); err == nil {
		t.Fatalf("expected parse error")
	}
}
