package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// redirectConfigHome points the user config directory at a temp dir.
func redirectConfigHome(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("config home redirect relies on XDG_CONFIG_HOME")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Branch != "main" {
		t.Errorf("Branch = %q, want %q", cfg.Branch, "main")
	}
	if cfg.AuthorName != "" || cfg.AuthorEmail != "" || cfg.LogFile != "" {
		t.Errorf("Default() = %+v, want empty identity and log file", cfg)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	redirectConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadReadsFile(t *testing.T) {
	home := redirectConfigHome(t)

	path := filepath.Join(home, "ki", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	content := "branch = \"trunk\"\nauthor_name = \"Deck Owner\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Branch != "trunk" {
		t.Errorf("Branch = %q, want %q", cfg.Branch, "trunk")
	}
	if cfg.AuthorName != "Deck Owner" {
		t.Errorf("AuthorName = %q, want %q", cfg.AuthorName, "Deck Owner")
	}
	// Unset keys keep their defaults.
	if cfg.AuthorEmail != "" {
		t.Errorf("AuthorEmail = %q, want empty", cfg.AuthorEmail)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	home := redirectConfigHome(t)

	path := filepath.Join(home, "ki", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("branch = \"trunk\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	t.Setenv("KI_BRANCH", "env-branch")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Branch != "env-branch" {
		t.Errorf("Branch = %q, want %q", cfg.Branch, "env-branch")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := redirectConfigHome(t)

	path := filepath.Join(home, "ki", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("branch = [unclosed"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a malformed config file")
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ki", "config.toml")

	if err := Init(path); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if !strings.Contains(string(data), "branch = \"main\"") {
		t.Errorf("Init() wrote:\n%s\nwant a branch = \"main\" line", data)
	}

	if err := Init(path); err == nil {
		t.Error("Init() overwrote an existing config file")
	}
}
