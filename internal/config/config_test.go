package config

import (
	"os"
	"testing"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "PORT", "API_KEY", "LOG_LEVEL", "DATABASE_URL", "METRICS_ENABLED", "METRICS_TOKEN", "WRITE_RATE_LIMIT")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 3000 {
		t.Fatalf("port=%d want=3000", cfg.Port)
	}
	if cfg.APIKey != "secret123" {
		t.Fatalf("api key=%q", cfg.APIKey)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level=%q", cfg.LogLevel)
	}
	if cfg.DatabaseURL != "" || cfg.MetricsEnabled || cfg.WriteRateLimit != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Addr() != ":3000" {
		t.Fatalf("addr=%q", cfg.Addr())
	}
}

func TestLoad_Env(t *testing.T) {
	unsetEnv(t, "LOG_LEVEL", "DATABASE_URL", "METRICS_TOKEN")
	t.Setenv("PORT", "8099")
	t.Setenv("API_KEY", "k")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("WRITE_RATE_LIMIT", "30")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8099 || cfg.APIKey != "k" || !cfg.MetricsEnabled || cfg.WriteRateLimit != 30 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	unsetEnv(t, "API_KEY", "LOG_LEVEL", "DATABASE_URL", "METRICS_ENABLED", "METRICS_TOKEN", "WRITE_RATE_LIMIT")
	t.Setenv("PORT", "8099")

	cfg, err := Load([]string{"--port=9000", "--log-level=debug"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		c := Config{Port: 0, APIKey: "x"}
		if err := c.Validate(); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("empty api key", func(t *testing.T) {
		c := Config{Port: 3000}
		if err := c.Validate(); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("negative rate limit", func(t *testing.T) {
		c := Config{Port: 3000, APIKey: "x", WriteRateLimit: -1}
		if err := c.Validate(); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("ok", func(t *testing.T) {
		c := Config{Port: 3000, APIKey: "x"}
		if err := c.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
