package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relstore/engine/internal/bufferpool"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlText := `
storage:
  data_dir: /var/lib/relstore
  page_size: 8192
buffer_pool:
  capacity: 128
  strategy: lru
housekeeping:
  enabled: false
  schedule: "@every 1m"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/relstore", cfg.Storage.DataDir)
	require.Equal(t, 8192, cfg.Storage.PageSize)
	require.Equal(t, 128, cfg.BufferPool.Capacity)
	require.Equal(t, bufferpool.LRU, cfg.Strategy())
	require.False(t, cfg.Housekeeping.Enabled)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaultStrategyIsFIFO(t *testing.T) {
	require.Equal(t, bufferpool.FIFO, Default().Strategy())
}
