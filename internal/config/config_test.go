package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmatcher.yaml")
	yaml := `
backend:
  url: https://match.example.com
  rate_limit: 2.5
  burst: 3
store:
  backend: redis
  redis:
    addr: cache:6379
    db: 2
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://match.example.com", cfg.Backend.URL)
	assert.Equal(t, 2.5, cfg.Backend.RateLimit)
	assert.Equal(t, 3, cfg.Backend.Burst)
	assert.True(t, cfg.Backend.Validate, "unset keys keep defaults")
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "kmatcher:", cfg.Store.Redis.Prefix)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("KMATCHER_BACKEND_URL", "http://env:9000")
	t.Setenv("KMATCHER_STORE_BACKEND", "memory")
	t.Setenv("KMATCHER_DB", "/tmp/k.db")
	t.Setenv("KMATCHER_REDIS_ADDR", "redis:6380")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", cfg.Backend.URL)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "/tmp/k.db", cfg.Store.Path)
	assert.Equal(t, "redis:6380", cfg.Store.Redis.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty url", mutate: func(c *Config) { c.Backend.URL = " " }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.Backend.RateLimit = -1 }, wantErr: true},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Backend = "etcd" }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) {
			c.Store.Backend = StoreRedis
			c.Store.Redis.Addr = ""
		}, wantErr: true},
		{name: "memory", mutate: func(c *Config) { c.Store.Backend = StoreMemory }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
