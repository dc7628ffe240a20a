package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvlath-labs/terramesh/config"
	"github.com/lvlath-labs/terramesh/planererrors"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "planner.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeTemp(t, `sites_path = "sites.csv"`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.LOSModelCylindrical, cfg.LOSModel)
	assert.Equal(t, 25.0, cfg.MaxElevationAngleDeg)
	assert.Equal(t, 0.75, cfg.ConfidenceThreshold)
	assert.Equal(t, 2, cfg.DNDNSectorLimit)
	assert.Equal(t, 15, cfg.DNTotalSectorLimit)
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	path := writeTemp(t, `sites_path = "sites.csv"
totally_unrecognized_key = 42
`)

	_, err := config.Load(path)
	require.Error(t, err)
	var ce *planererrors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Field, "totally_unrecognized_key")
}

func TestLoad_RejectsBaseTopologyWithAutomaticSiteDetection(t *testing.T) {
	path := writeTemp(t, `base_topology_path = "base.json"
automatic_site_detection = true
`)

	_, err := config.Load(path)
	require.Error(t, err)
	var ce *planererrors.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestLoad_RejectsMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	var de *planererrors.DataError
	require.ErrorAs(t, err, &de)
}

func TestLoad_RequiresAtLeastOneInputSource(t *testing.T) {
	path := writeTemp(t, `log_level = "debug"`)

	_, err := config.Load(path)
	require.Error(t, err)
	var ce *planererrors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sites_path", ce.Field)
}
