package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg.Server.Listen != want.Server.Listen || cfg.Pagination.DefaultLimit != want.Pagination.DefaultLimit {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestFromYAMLOverlaysDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("server:\n  listen: \"0.0.0.0:9000\"\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Listen != "0.0.0.0:9000" {
		t.Fatalf("listen = %q", cfg.Server.Listen)
	}
	// untouched sections keep their defaults
	if cfg.Pagination.MaxLimit != Default().Pagination.MaxLimit {
		t.Fatalf("max_limit = %d", cfg.Pagination.MaxLimit)
	}
}

func TestFromYAMLRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"empty listen", "server:\n  listen: \"\"\n", "listen is required"},
		{"zero default limit", "pagination:\n  default_limit: 0\n", "default_limit must be positive"},
		{"max below default", "pagination:\n  default_limit: 50\n  max_limit: 10\n", "max_limit must be >= default_limit"},
		{"broken yaml", "server: [\n", "invalid config yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestLoadReadsWorkspaceFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "alice.yml"), []byte("server:\n  base_path: \"/api\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.BasePath != "/api" {
		t.Fatalf("base_path = %q", cfg.Server.BasePath)
	}
}
