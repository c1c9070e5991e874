package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 30, c.Monitoring.InactiveDays)
	assert.Equal(t, 7, c.Monitoring.BaselineDays)
	assert.Equal(t, 100, c.Monitoring.InsightLimit)
	assert.Equal(t, 48, c.Sweep.MaxAgeHours)
	assert.Equal(t, time.Hour, c.Sweep.Interval)
	assert.Equal(t, "file", c.Source.Type)
	assert.Equal(t, "file", c.Store.Type)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.True(t, c.RateLimit.Enabled)
	assert.Zero(t, c.Source.Cache.TTL)
	assert.Equal(t, 64, c.Source.Cache.MaxEntries)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9090
store:
  type: sqlite
  sqlite_path: /var/lib/bizpulse/state.db
sweep:
  enabled: true
  interval: 15m
  max_age_hours: 24
rate_limit:
  enabled: false
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "sqlite", c.Store.Type)
	assert.Equal(t, "/var/lib/bizpulse/state.db", c.Store.SQLitePath)
	assert.True(t, c.Sweep.Enabled)
	assert.Equal(t, 15*time.Minute, c.Sweep.Interval)
	assert.Equal(t, 24, c.Sweep.MaxAgeHours)
	assert.False(t, c.RateLimit.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown source", "source:\n  type: excel\n"},
		{"unknown store", "store:\n  type: s3\n"},
		{"http source without url", "source:\n  type: http\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"negative max age", "sweep:\n  max_age_hours: -1\n"},
		{"malformed yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("KAFKA_BROKERS", "a:1,b:2")
	t.Setenv("HTTP_PORT", "9191")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", c.Store.Type)
	assert.Equal(t, []string{"a:1", "b:2"}, c.Kafka.Brokers)
	assert.Equal(t, 9191, c.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
