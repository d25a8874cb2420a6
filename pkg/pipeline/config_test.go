package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "telugu", cfg.Collection.Script)
	assert.Equal(t, 0.6, cfg.Collection.MinScriptRatio)
	assert.False(t, cfg.Scraping.RespectRobots)
	assert.False(t, cfg.Storage.EnableGitArchive)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestProductionPipelineConfig(t *testing.T) {
	cfg := ProductionPipelineConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Scraping.RespectRobots)
	assert.True(t, cfg.Storage.EnableGitArchive)
	assert.False(t, cfg.Logging.Console)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
collection:
  delay_between_requests: 2.5
  min_script_ratio: 0.8
scraping:
  respect_robots: true
server:
  port: 9090
scheduler:
  enabled: true
  schedule: "0 4 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Overridden values.
	assert.Equal(t, 2.5, cfg.Collection.DelaySeconds)
	assert.Equal(t, 0.8, cfg.Collection.MinScriptRatio)
	assert.True(t, cfg.Scraping.RespectRobots)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Scheduler.Enabled)

	// Untouched fields keep their defaults.
	assert.Equal(t, "telugu", cfg.Collection.Script)
	assert.Equal(t, 15, cfg.Collection.TimeoutSeconds)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collection:\n  min_script_ratio: 1.5\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min script ratio")
}

func TestValidateRejectsUnknownScript(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Collection.Script = "klingon"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultPipelineConfig()
	cfg.Server.Port = 70000
	require.Error(t, cfg.Validate())
}

func TestValidateSchedulerNeedsSchedule(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Schedule = ""
	require.Error(t, cfg.Validate())
}
