package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SQLitePath == "" {
		t.Fatal("expected a default sqlite path")
	}
	if cfg.LogMode != "prod" {
		t.Fatalf("expected prod default, got %q", cfg.LogMode)
	}
	if cfg.ContentDir != "content" {
		t.Fatalf("expected content default, got %q", cfg.ContentDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orbit.yaml")
	body := "sqlitePath: /tmp/custom.db\nlogMode: dev\ncontentDir: /srv/catalog\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SQLitePath != "/tmp/custom.db" || cfg.LogMode != "dev" || cfg.ContentDir != "/srv/catalog" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoadRejectsMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadRejectsBadLogMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orbit.yaml")
	if err := os.WriteFile(path, []byte("logMode: loud\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid logMode")
	}
}
