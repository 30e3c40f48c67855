package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadBaseConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
app:
  name: redis-orders
  http_addr: ":8080"
  log_level: info
  log_file: ./logs/app.log
redis:
  addr: "localhost:6379"
stress:
  counter_key: "perf:counter"
  compute_delay: 100ms
`)

	cfg, err := Load(dir, "dev")
	require.NoError(t, err)

	assert.Equal(t, "redis-orders", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.Stress.ComputeDelay)
	assert.Empty(t, cfg.Archive.MySQLDSN)
}

func TestLoadEnvOverlayWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
app:
  http_addr: ":8080"
redis:
  addr: "localhost:6379"
`)
	writeConfig(t, dir, "prod.yaml", `
redis:
  addr: "redis.internal:6379"
`)
	t.Setenv("REDISORDERS_APP__HTTP_ADDR", ":9090")

	cfg, err := Load(dir, "prod")
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr, "env-specific yaml overrides base")
	assert.Equal(t, ":9090", cfg.App.HTTPAddr, "environment variables override files")
}

func TestValidate(t *testing.T) {
	var cfg Config
	assert.Error(t, cfg.Validate(), "http addr required")

	cfg.App.HTTPAddr = ":8080"
	assert.Error(t, cfg.Validate(), "redis addr required")

	cfg.Redis.Addr = "localhost:6379"
	assert.NoError(t, cfg.Validate())

	cfg.Archive.MySQLDSN = "root:root@tcp(localhost:3306)/orders"
	assert.Error(t, cfg.Validate(), "archive workers required when archive enabled")

	cfg.Archive.Workers = 4
	assert.NoError(t, cfg.Validate())
}
