package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_DefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
db:
  host: localhost
  port: 5432
progress:
  alert_threshold: 8
outbox:
  interval_ms: 500
`), 0o644))
	t.Setenv("DB_HOST", "db.example")
	t.Setenv("SITELOG_PROGRESS__SCURVE_STEPS", "10")

	cfg, err := LoadFrom("local", dir)
	require.NoError(t, err)

	assert.Equal(t, "db.example", cfg.DB.Host)
	assert.Equal(t, 8.0, cfg.Progress.AlertThreshold)
	assert.Equal(t, 10, cfg.Progress.SCurveSteps)
	assert.Equal(t, 500*time.Millisecond, cfg.Outbox.Interval())
	// 未配置的保持默认
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.Equal(t, int64(3), cfg.Worker.MaxRetries)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Worker.SweepInterval())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Progress.SCurveSteps = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Progress.AlertThreshold = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Progress.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}

func TestValidate_Outbox(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OutboxConfig)
	}{
		{"zero interval", func(o *OutboxConfig) { o.IntervalMS = 0 }},
		{"negative interval", func(o *OutboxConfig) { o.IntervalMS = -5 }},
		{"zero batch", func(o *OutboxConfig) { o.BatchSize = 0 }},
		{"zero retries", func(o *OutboxConfig) { o.MaxRetries = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg.Outbox)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFrom_RejectsZeroOutboxInterval(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
outbox:
  interval_ms: 0
`), 0o644))

	_, err := LoadFrom("local", dir)
	assert.ErrorContains(t, err, "outbox.interval_ms")
}
