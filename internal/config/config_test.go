package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "core.yaml")
	want := Config{
		TicksPerSecond: 70,
		WarpLimit:      64 << 16,
		ArchivePaths:   []string{"/data/doom1.wad", "/data/extra.pk3"},
		Bias: BiasConfig{
			MaxAffected: 10,
			IgnoreLimit: 500,
			LightSpeed:  8,
		},
	}

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadClampsInvalidValuesToDefaults(t *testing.T) {
	// Written directly with os.WriteFile, bypassing Save's own clamp, so
	// this actually exercises Load's clamp rather than Save's.
	path := filepath.Join(t.TempDir(), "bad.yaml")
	raw := "ticks_per_second: -5\nwarp_limit: 0\nbias:\n  max_affected: 0\n  ignore_limit: -1\n  light_speed: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.TicksPerSecond, got.TicksPerSecond)
	assert.Equal(t, def.WarpLimit, got.WarpLimit)
	assert.Equal(t, def.Bias.MaxAffected, got.Bias.MaxAffected)
	assert.Equal(t, def.Bias.IgnoreLimit, got.Bias.IgnoreLimit)
	assert.Equal(t, def.Bias.LightSpeed, got.Bias.LightSpeed)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malformed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ticks_per_second: [this is not a number\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
