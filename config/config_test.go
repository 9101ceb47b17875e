package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `server:
  port: 9090
database:
  driver: sqlite
  dsn: "file:crew.db"
schedule:
  timezone: "Asia/Dubai"
  rest_day: "Friday"
roster:
  enabled: true
  interval_seconds: 30
  request:
    url: "http://hr.local/roster"
worker_pool:
  size: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "Asia/Dubai", cfg.Schedule.Location.String())
	assert.Equal(t, "08:00", cfg.Schedule.Opening)
	assert.Equal(t, "22:00", cfg.Schedule.Closing)
	assert.Equal(t, 30*time.Second, cfg.Roster.Interval)
	assert.Equal(t, 100, cfg.Roster.Request.PageSize)
	assert.Equal(t, 3, cfg.WorkerPool.Size)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Push.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "unknown driver", data: "database:\n  driver: mysql\n"},
		{name: "bad timezone", data: "schedule:\n  timezone: Mars/Olympus\n"},
		{name: "bad rest day", data: "schedule:\n  rest_day: someday\n"},
		{name: "closing before opening", data: "schedule:\n  opening: \"22:00\"\n  closing: \"08:00\"\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.data))
			assert.Error(t, err)
		})
	}
}
