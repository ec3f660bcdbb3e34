package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEPARTURE_ID", "")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MAX_CONCURRENCY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DepartureID != "CDG" {
		t.Errorf("DepartureID: got %q, want CDG", cfg.DepartureID)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency: got %d, want 4", cfg.MaxConcurrency)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout: got %v, want 30s", cfg.HTTPTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ARRIVAL_ID", "DSS")
	t.Setenv("MAX_CONCURRENCY", "not-a-number")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ArrivalID != "DSS" {
		t.Errorf("ArrivalID: got %q, want DSS", cfg.ArrivalID)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.MaxConcurrency)
	}
	if !cfg.PostgresEnabled {
		t.Error("PostgresEnabled should be true")
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flights.yaml")
	content := "search:\n  departure_id: ORY\n  return_date: \"2026-02-01\"\nstorage:\n  snapshot_prefix: vols_orly\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DepartureID != "ORY" {
		t.Errorf("DepartureID: got %q, want ORY", cfg.DepartureID)
	}
	if cfg.ReturnDate != "2026-02-01" {
		t.Errorf("ReturnDate: got %q", cfg.ReturnDate)
	}
	if cfg.SnapshotPrefix != "vols_orly" {
		t.Errorf("SnapshotPrefix: got %q", cfg.SnapshotPrefix)
	}
}

func TestValidateRejectsBadDates(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("OUTBOUND_DATE", "22/12/2025")

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed OUTBOUND_DATE")
	}
}

func TestFileNames(t *testing.T) {
	cfg := &Config{SnapshotDir: "out", SnapshotPrefix: "vols", MergedDir: "merged"}
	day := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	if got, want := cfg.SnapshotFileName(day), filepath.Join("out", "vols_2025-12-01.csv"); got != want {
		t.Errorf("SnapshotFileName: got %q, want %q", got, want)
	}
	if got, want := cfg.MergedFileName(day, "parquet"), filepath.Join("merged", "vols_all_2025-12-01.parquet"); got != want {
		t.Errorf("MergedFileName: got %q, want %q", got, want)
	}
}
