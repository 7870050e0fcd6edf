package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	opts := Defaults()
	if opts.BaseURL == "" || opts.SessionFile == "" {
		t.Fatalf("incomplete defaults: %+v", opts)
	}
	if opts.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v; want 30s", opts.Timeout)
	}
}

func TestResolve_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"base_url":"https://inv.example.com","timeout_seconds":5,"log_level":"debug"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := Defaults()
	opts.Config = path
	Resolve(opts)

	if opts.BaseURL != "https://inv.example.com" {
		t.Errorf("BaseURL = %q", opts.BaseURL)
	}
	if opts.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v; want 5s", opts.Timeout)
	}
	if opts.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", opts.LogLevel)
	}
	// Values absent from the file keep their defaults.
	if opts.SessionFile != "session.json" {
		t.Errorf("SessionFile = %q", opts.SessionFile)
	}
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"base_url":"https://file.example.com"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INVDASH_API_URL", "https://env.example.com")
	t.Setenv("INVDASH_TIMEOUT", "2s")

	opts := Defaults()
	opts.Config = path
	Resolve(opts)

	if opts.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q; env must win over file", opts.BaseURL)
	}
	if opts.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v; want 2s", opts.Timeout)
	}
}

func TestResolve_MissingFileIgnored(t *testing.T) {
	opts := Defaults()
	opts.Config = filepath.Join(t.TempDir(), "nope.json")
	Resolve(opts)
	if opts.BaseURL != Defaults().BaseURL {
		t.Errorf("missing config file must not change defaults, got %q", opts.BaseURL)
	}
}
