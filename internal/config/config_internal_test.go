package config

import (
	"os"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("TOKEN", "test-token")

	// t.Setenv registers the restore; the vars must be absent for the
	// envDefault values to apply.
	for _, key := range []string{"DB_NAME", "DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Token != "test-token" {
		t.Fatalf("unexpected token: %q", cfg.Token)
	}

	if cfg.DBName != "news_aggregator" {
		t.Fatalf("unexpected default DB name: %q", cfg.DBName)
	}

	if cfg.DBHost != "localhost" || cfg.DBPort != "5432" {
		t.Fatalf("unexpected default DB address: %s:%s", cfg.DBHost, cfg.DBPort)
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{
		DBName:     "news_aggregator",
		DBUser:     "news_bot",
		DBPassword: "secret",
		DBHost:     "db.local",
		DBPort:     "5433",
	}

	want := "host=db.local port=5433 user=news_bot password=secret dbname=news_aggregator sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
