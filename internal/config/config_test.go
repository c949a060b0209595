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
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadDefaults verifies that Load falls back to Default() when no file
// or environment variables are present.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("TASKS_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port, "default port should be 3000")
	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "data/tasks.json", cfg.Seed.Path)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
	assert.Zero(t, cfg.RateLimit.RPS, "rate limiting is off by default")
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
  request_timeout: 5s
log:
  level: DEBUG
  format: text
seed:
  path: fixtures/seed.yaml
rate_limit:
  rps: 10
  burst: 20
tracing:
  exporter: stdout
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level, "level is normalized to lower case")
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "fixtures/seed.yaml", cfg.Seed.Path)
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8081\n")
	t.Setenv("TASKS_SERVER_PORT", "9090")
	t.Setenv("TASKS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 7070\n")
	t.Setenv("TASKS_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadValidationErrors(t *testing.T) {
	cases := map[string]string{
		"port out of range": "server:\n  port: 70000\n",
		"unknown log level": "log:\n  level: verbose\n",
		"unknown format":    "log:\n  format: xml\n",
		"unknown exporter":  "tracing:\n  exporter: zipkin\n",
		"otlp w/o endpoint": "tracing:\n  exporter: otlp\n",
		"negative rps":      "rate_limit:\n  rps: -1\n",
		"relative metrics":  "metrics:\n  path: metrics\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}
