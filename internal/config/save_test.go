package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSaveToRoundTrips(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Database = "/srv/plant.db"
	cfg.Server.RateLimit = -1
	cfg.Search.StoreTimeout.Duration = 2 * time.Second
	cfg.UI.Accent = "#A78BFA"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if *loaded != *cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo(" ", Default()); err == nil {
		t.Fatal("expected error for empty path")
	}
}
