package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.PocketBase.AuthCollection != "users" {
		t.Errorf("expected default auth collection %q, got %q", "users", cfg.PocketBase.AuthCollection)
	}
	if cfg.Listing.PerPage != 10 {
		t.Errorf("expected default per_page 10, got %d", cfg.Listing.PerPage)
	}
	if cfg.Schema.File != "pb_schema.json" {
		t.Errorf("expected default schema file %q, got %q", "pb_schema.json", cfg.Schema.File)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.contenthub.yml")

	original := DefaultConfig()
	original.Server.Port = 9000
	original.Server.SessionTTL = 2 * time.Hour
	original.PocketBase.URL = "https://pb.example.com"
	original.Listing.PerPage = 25
	original.Schema.Exclude = []string{"_*", "tmp_*"}
	original.Log.Format = LogFormatJSON

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Server.Port != original.Server.Port {
		t.Errorf("port: got %d, want %d", loaded.Server.Port, original.Server.Port)
	}
	if loaded.Server.SessionTTL != original.Server.SessionTTL {
		t.Errorf("session_ttl: got %v, want %v", loaded.Server.SessionTTL, original.Server.SessionTTL)
	}
	if loaded.PocketBase.URL != original.PocketBase.URL {
		t.Errorf("pocketbase.url: got %q, want %q", loaded.PocketBase.URL, original.PocketBase.URL)
	}
	if loaded.Listing.PerPage != original.Listing.PerPage {
		t.Errorf("per_page: got %d, want %d", loaded.Listing.PerPage, original.Listing.PerPage)
	}
	if loaded.Log.Format != LogFormatJSON {
		t.Errorf("log.format: got %q, want %q", loaded.Log.Format, LogFormatJSON)
	}
	if len(loaded.Schema.Exclude) != 2 || loaded.Schema.Exclude[1] != "tmp_*" {
		t.Errorf("schema.exclude: got %v", loaded.Schema.Exclude)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("CONTENTHUB_SERVER__PORT", "9191")
	t.Setenv("CONTENTHUB_POCKETBASE__URL", "http://pb.internal:8090")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Port != 9191 {
		t.Errorf("env override failed: got %d, want 9191", loaded.Server.Port)
	}
	if loaded.PocketBase.URL != "http://pb.internal:8090" {
		t.Errorf("env override failed: got %q", loaded.PocketBase.URL)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative port", func(c *Config) { c.Server.Port = -1 }},
		{"zero session ttl", func(c *Config) { c.Server.SessionTTL = 0 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"empty pocketbase url", func(c *Config) { c.PocketBase.URL = "" }},
		{"relative pocketbase url", func(c *Config) { c.PocketBase.URL = "localhost" }},
		{"empty auth collection", func(c *Config) { c.PocketBase.AuthCollection = "" }},
		{"zero per page", func(c *Config) { c.Listing.PerPage = 0 }},
		{"max below per page", func(c *Config) { c.Listing.MaxPerPage = 5 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("POCKETBASE_URL", "http://127.0.0.1:8090")
	t.Setenv("POCKETBASE_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("POCKETBASE_ADMIN_PASSWORD", "secret")

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.Email != "admin@example.com" {
		t.Errorf("Email = %q, want %q", creds.Email, "admin@example.com")
	}
}

func TestLoadCredentialsMissing(t *testing.T) {
	t.Setenv("POCKETBASE_URL", "http://127.0.0.1:8090")
	t.Setenv("POCKETBASE_ADMIN_EMAIL", "")
	t.Setenv("POCKETBASE_ADMIN_PASSWORD", "")

	_, err := LoadCredentials()
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	for _, name := range []string{"POCKETBASE_ADMIN_EMAIL", "POCKETBASE_ADMIN_PASSWORD"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"_*", []string{"_*"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
