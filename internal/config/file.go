package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"voxmesh/internal/logging"
	"voxmesh/internal/world"
)

// Config is the on-disk configuration.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Mesher  MesherConfig  `yaml:"mesher"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type WorldConfig struct {
	Extents [3]int `yaml:"extents"`
	Radius  int    `yaml:"radius"`
	Seed    int64  `yaml:"seed"`
}

type MesherConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Extents: ChunkExtents(),
			Radius:  WorldRadius(),
			Seed:    Seed(),
		},
		Mesher: MesherConfig{
			Workers:   MeshWorkers(),
			QueueSize: QueueSize(),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML config over the defaults.
// If path == "", it falls back to VOXMESH_CONFIG and then to the defaults alone.
// VOXMESH_WORKERS supplies the worker count when the file leaves it unset.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.Mesher.Workers = 0
	if path == "" {
		path = os.Getenv("VOXMESH_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	cfg.Mesher.Workers = intWithEnvFallback(cfg.Mesher.Workers, "VOXMESH_WORKERS", MeshWorkers())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// intWithEnvFallback returns value with priority: config -> env -> default
func intWithEnvFallback(value int, envVar string, def int) int {
	if value > 0 {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if n, err := strconv.Atoi(envVal); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// Validate checks the values the mesher cannot clamp on its own.
func (c *Config) Validate() error {
	for axis, e := range c.World.Extents {
		if e < 1 || e > world.MaxExtent {
			return errors.Errorf("world.extents[%d] = %d, want 1..%d", axis, e, world.MaxExtent)
		}
	}
	if c.World.Radius < 0 || c.World.Radius > MaxWorldRadius {
		return errors.Errorf("world.radius = %d, want 0..%d", c.World.Radius, MaxWorldRadius)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}

// Apply pushes the config into the process-wide settings and the logger.
func (c *Config) Apply() {
	SetChunkExtents(c.World.Extents)
	SetWorldRadius(c.World.Radius)
	SetSeed(c.World.Seed)
	SetMeshWorkers(c.Mesher.Workers)
	SetQueueSize(c.Mesher.QueueSize)
	if lvl, err := logging.ParseLevel(c.Log.Level); err == nil {
		logging.SetLevel(lvl)
	}
}
