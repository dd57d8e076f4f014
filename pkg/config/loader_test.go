package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

type testConfig struct {
	DB       DBConfig `yaml:"db"`
	Progress struct {
		AlertThreshold float64 `yaml:"alert_threshold"`
		SCurveSteps    int     `yaml:"scurve_steps"`
	} `yaml:"progress"`
}

func TestLoadConfig_MergeSecretsAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  host: localhost
  port: 5432
  password: ${DB_SECRET}
progress:
  alert_threshold: 5
  scurve_steps: 6
`)
	writeFile(t, dir, "production.yaml", `
db:
  host: db.internal
`)
	writeFile(t, dir, "secrets.env", "# comment\nDB_SECRET=\"s3cret\"\n")
	t.Setenv("SITELOG_PROGRESS__SCURVE_STEPS", "12")

	cfgMap, err := LoadConfig("production", dir)
	require.NoError(t, err)

	var cfg testConfig
	require.NoError(t, Decode(cfgMap, &cfg))
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "s3cret", cfg.DB.Password)
	assert.Equal(t, 5.0, cfg.Progress.AlertThreshold)
	assert.Equal(t, 12, cfg.Progress.SCurveSteps)
}

func TestLoadConfig_MissingBase(t *testing.T) {
	_, err := LoadConfig("local", t.TempDir())
	assert.Error(t, err)
}

func TestMergeMaps_DoesNotMutateInputs(t *testing.T) {
	dst := map[string]interface{}{"a": map[string]interface{}{"x": 1, "y": 2}}
	src := map[string]interface{}{"a": map[string]interface{}{"y": 3}}

	merged := mergeMaps(dst, src)
	assert.Equal(t, map[string]interface{}{"x": 1, "y": 3}, merged["a"])
	assert.Equal(t, 2, dst["a"].(map[string]interface{})["y"])
}

func TestOverrideDBFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "not-a-number")
	cfg := DBConfig{Host: "localhost", Port: 5432}
	OverrideDBFromEnv(&cfg)
	assert.Equal(t, "pg", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
}
