package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Reference.Driver)
	assert.Equal(t, ";", cfg.Reference.CSVDelimiter)
	assert.Equal(t, 0.85, cfg.Matching.NameThreshold)
	assert.Equal(t, 0.4, cfg.Matching.NameWeight)
	assert.Equal(t, 0.6, cfg.Matching.AddressWeight)
	assert.Equal(t, 0.01, cfg.Matching.TieEpsilon)
	assert.Equal(t, 0.15, cfg.Matching.PostalMargin)
	assert.Equal(t, 15, cfg.Quota.MaxPerMinute)
	assert.Equal(t, 1500, cfg.Quota.MaxPerDay)
	assert.Equal(t, 4, cfg.Pipeline.MaxConcurrent)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `reference:
  driver: sqlite
  path: reference.db
matching:
  name_threshold: 0.9
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(dir+"/config.yaml", []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Reference.Driver)
	assert.Equal(t, "reference.db", cfg.Reference.Path)
	assert.Equal(t, 0.9, cfg.Matching.NameThreshold)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.4, cfg.Matching.NameWeight)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FACTURE_ANTHROPIC_KEY", "sk-test-123")
	t.Setenv("FACTURE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.Anthropic.Key)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "noisy", Format: "json"}))
}
