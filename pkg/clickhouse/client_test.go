package clickhouse

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClientConfig
		want string
	}{
		{
			name: "native with timeouts",
			cfg: ClientConfig{
				Host: "ch.local", Port: 9000, Database: "bizpulse", User: "default",
				DialTimeout: 5 * time.Second, ReadTimeout: 30 * time.Second, MaxExecTime: 30 * time.Second,
			},
			want: "clickhouse://default:@ch.local:9000/bizpulse?dial_timeout=5s&max_execution_time=30&read_timeout=30s",
		},
		{
			name: "http without user",
			cfg:  ClientConfig{Host: "ch.local", Port: 8123, Database: "bizpulse", UseHTTP: true},
			want: "http://ch.local:8123/bizpulse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildDSN(tt.cfg))
		})
	}
}

func TestBuildDSN_EscapesPassword(t *testing.T) {
	dsn := BuildDSN(ClientConfig{Host: "::1", Port: 9000, Database: "db", User: "ops", Password: "p@ss/word?"})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss/word?", pw)
	assert.Equal(t, "[::1]:9000", u.Host)
}

func TestNewClient_RequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	cfg := DefaultClientConfig()
	for _, opt := range []ClientOption{
		WithAddress("ch.local", 0),
		WithDatabase(""),
		WithPool(20, 0, time.Minute),
	} {
		opt(&cfg)
	}

	assert.Equal(t, "ch.local", cfg.Host)
	assert.Equal(t, 9000, cfg.Port, "zero port keeps the default")
	assert.Equal(t, "default", cfg.Database)
	assert.Equal(t, 20, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, time.Minute, cfg.ConnMaxLifetime)
	assert.NoError(t, cfg.Validate())
}

func TestClientConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ClientConfig)
	}{
		{"missing host", func(c *ClientConfig) { c.Host = "" }},
		{"port out of range", func(c *ClientConfig) { c.Port = 70000 }},
		{"idle above open", func(c *ClientConfig) { c.MaxIdleConns = 50 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultClientConfig()
			cfg.Host = "ch.local"
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
