package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the engine configuration, loaded from engine.yaml. Every field
// has a usable default so an empty path starts a working engine.
type Config struct {
	World    World    `yaml:"world"`
	Jobs     Jobs     `yaml:"jobs"`
	Persist  Persist  `yaml:"persist"`
	Observer Observer `yaml:"observer"`
}

type World struct {
	ChunkSize      int    `yaml:"chunk_size"`
	ChunkHeight    int    `yaml:"chunk_height"`
	LoadRadius     int    `yaml:"load_radius"`
	Seed           int64  `yaml:"seed"`
	BuildColliders bool   `yaml:"build_colliders"`
	BlocksPath     string `yaml:"blocks_path"`
}

type Jobs struct {
	// Workers <= 0 means one worker per CPU.
	Workers         int `yaml:"workers"`
	MainQueueBudget int `yaml:"main_queue_budget"`
}

type Persist struct {
	Enabled          bool   `yaml:"enabled"`
	DataDir          string `yaml:"data_dir"`
	AutosaveInterval int    `yaml:"autosave_seconds"`
}

type Observer struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("engine.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("engine.yaml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		World: World{
			ChunkSize:      16,
			ChunkHeight:    128,
			LoadRadius:     6,
			Seed:           1,
			BuildColliders: true,
			BlocksPath:     "configs/blocks.json",
		},
		Jobs: Jobs{
			Workers:         0,
			MainQueueBudget: 64,
		},
		Persist: Persist{
			Enabled:          true,
			DataDir:          "data",
			AutosaveInterval: 30,
		},
		Observer: Observer{
			Enabled:    true,
			ListenAddr: "127.0.0.1:7722",
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = runtime.NumCPU()
	}
	if c.Jobs.MainQueueBudget < 0 {
		c.Jobs.MainQueueBudget = 0
	}
	if strings.TrimSpace(c.Persist.DataDir) == "" {
		c.Persist.DataDir = "data"
	}
	if strings.TrimSpace(c.World.BlocksPath) == "" {
		c.World.BlocksPath = "configs/blocks.json"
	}
	if c.Observer.Enabled && strings.TrimSpace(c.Observer.ListenAddr) == "" {
		c.Observer.ListenAddr = "127.0.0.1:7722"
	}
}

func (c Config) Validate() error {
	if c.World.ChunkSize <= 0 {
		return fmt.Errorf("world.chunk_size must be > 0")
	}
	if c.World.ChunkHeight <= 0 {
		return fmt.Errorf("world.chunk_height must be > 0")
	}
	if c.World.LoadRadius < 0 {
		return fmt.Errorf("world.load_radius must be >= 0")
	}
	if c.Persist.AutosaveInterval < 0 {
		return fmt.Errorf("persist.autosave_seconds must be >= 0")
	}
	if c.Observer.Enabled {
		host := c.Observer.ListenAddr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		// The observer exposes engine internals; keep it off the network.
		if host != "127.0.0.1" && host != "localhost" && host != "::1" && host != "[::1]" {
			return fmt.Errorf("observer.listen_addr must be loopback, got %q", c.Observer.ListenAddr)
		}
	}
	return nil
}
