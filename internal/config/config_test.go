package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORAGE", "SQLITE_PATH", "REDIS_URL", "CACHE_TTL", "CORS_ORIGIN", "DEV_MODE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8009" || cfg.Storage != StorageMemory || cfg.RedisURL != "" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.CacheTTL != 10*time.Minute || cfg.CORSOrigin != "*" || cfg.DevMode {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE", "sqlite")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")

	cfg := Load()
	if cfg.Port != "9000" || cfg.Storage != StorageSQLite || cfg.CacheTTL != 30*time.Second || !cfg.DevMode {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("unexpected redis url %q", cfg.RedisURL)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("DEV_MODE", "maybe")
	cfg := Load()
	if cfg.CacheTTL != 10*time.Minute || cfg.DevMode {
		t.Errorf("expected fallbacks, got ttl=%s dev=%v", cfg.CacheTTL, cfg.DevMode)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"postgres", func(c *Config) { c.Storage = StoragePostgres }, false},
		{"unknown storage", func(c *Config) { c.Storage = "mongo" }, true},
		{"no port", func(c *Config) { c.Port = "" }, true},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Port: "8009", Storage: StorageMemory, CacheTTL: time.Minute}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
