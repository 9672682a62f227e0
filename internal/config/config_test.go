package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Monitoring.Host)
	assert.Equal(t, 5432, cfg.Monitoring.Port)
	assert.Equal(t, "piracy_tracker.db", cfg.LocalStore.Path)
	assert.Equal(t, 6*time.Hour, cfg.Sync.Interval)
	assert.Equal(t, 20, cfg.Sync.LogDisplayLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

// Absent auto-add flags default to true; explicit false stays false.
func TestSyncConfig_Options(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	opts := cfg.Sync.Options()
	assert.True(t, opts.AutoAddTopTargets)
	assert.True(t, opts.AutoAddNeeded)
	assert.False(t, opts.SyncAllFlagged)

	cfg, err = Load(writeConfig(t, `
sync:
  auto_add_top_targets: false
  auto_add_needed: false
  sync_all_flagged: true
`))
	require.NoError(t, err)

	opts = cfg.Sync.Options()
	assert.False(t, opts.AutoAddTopTargets)
	assert.False(t, opts.AutoAddNeeded)
	assert.True(t, opts.SyncAllFlagged)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TRACKER_TEST_DB", "investigations")

	cfg, err := Load(writeConfig(t, `
monitoring:
  dbname: ${TRACKER_TEST_DB}
`))
	require.NoError(t, err)

	assert.Equal(t, "investigations", cfg.Monitoring.DBName)
	assert.Contains(t, cfg.Monitoring.DSN(), "dbname=investigations")
}
