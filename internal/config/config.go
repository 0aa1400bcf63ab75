// Package config implements the session/runtime configuration layer
// (§4.13): a YAML-loadable settings file for tick rate, warp limits, bias
// constants, and archive search paths, in the spirit of the teacher's
// cmd/corelx_devkit/settings.go — default-then-load-then-clamp, optional
// file, missing/empty file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skyjake/doomsday-core/internal/coreerr"
)

// Config holds every tunable the core reads at startup. Fields map onto
// the ambient concerns SPEC_FULL.md §4.13 calls out: simulation timing,
// the network warp-correction threshold, the light bias engine's tunables,
// and where to find WAD/PK3-style archives on disk.
type Config struct {
	TicksPerSecond int      `yaml:"ticks_per_second"`
	WarpLimit      int32    `yaml:"warp_limit"`
	ArchivePaths   []string `yaml:"archive_paths"`

	Bias BiasConfig `yaml:"bias"`
}

// BiasConfig overrides the internal/bias package's tunable affect-set size,
// ignore threshold, and light-effect interpolation speed.
type BiasConfig struct {
	MaxAffected int   `yaml:"max_affected"`
	IgnoreLimit int32 `yaml:"ignore_limit"` // fixed-point, FixedUnit-scaled
	LightSpeed  int   `yaml:"light_speed"`
}

// Default returns the built-in configuration used when no file is present,
// matching the teacher's defaultDevKitSettings().
func Default() Config {
	return Config{
		TicksPerSecond: 35,
		WarpLimit:      128 << 16,
		ArchivePaths:   []string{},
		Bias: BiasConfig{
			MaxAffected: 6,
			IgnoreLimit: (1 << 16) / 100,
			LightSpeed:  5,
		},
	}
}

// Load reads and validates a YAML config file at path. A missing file is
// not an error — it returns Default(), exactly like loadDevKitSettings
// treating os.ErrNotExist as "use defaults". An empty file is likewise
// treated as all-defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, &coreerr.ConfigError{Op: "load", Err: err}
	}
	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), &coreerr.ConfigError{Op: "load", Err: fmt.Errorf("%s: %w", path, err)}
	}
	cfg.clamp()
	return cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return nil
	}
	cfg.clamp()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &coreerr.ConfigError{Op: "save", Err: err}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return &coreerr.ConfigError{Op: "save", Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &coreerr.ConfigError{Op: "save", Err: err}
	}
	return nil
}

// clamp replaces out-of-range values with the matching default, the same
// way loadDevKitSettings resets an invalid ViewMode/MainSplitOffset rather
// than rejecting the whole file.
func (c *Config) clamp() {
	def := Default()
	if c.TicksPerSecond <= 0 {
		c.TicksPerSecond = def.TicksPerSecond
	}
	if c.WarpLimit <= 0 {
		c.WarpLimit = def.WarpLimit
	}
	if c.ArchivePaths == nil {
		c.ArchivePaths = def.ArchivePaths
	}
	if c.Bias.MaxAffected <= 0 {
		c.Bias.MaxAffected = def.Bias.MaxAffected
	}
	if c.Bias.IgnoreLimit <= 0 {
		c.Bias.IgnoreLimit = def.Bias.IgnoreLimit
	}
	if c.Bias.LightSpeed <= 0 {
		c.Bias.LightSpeed = def.Bias.LightSpeed
	}
}
