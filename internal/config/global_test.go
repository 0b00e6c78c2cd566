package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/topogen/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Empty XDG_CONFIG_HOME falls back to ~/.config
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "topogen", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestResolvePath_Explicit(t *testing.T) {
	path := writeTestConfig(t, "seed: 3\n")
	t.Setenv(EnvConfig, "")

	got, err := ResolvePath(path)
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if got != path {
		t.Errorf("ResolvePath() = %q, want %q", got, path)
	}
}

func TestResolvePath_ExplicitMissing(t *testing.T) {
	_, err := ResolvePath(filepath.Join(t.TempDir(), "nope.yml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("ResolvePath() error = %v, want ErrConfigNotFound", err)
	}
}

func TestResolvePath_Env(t *testing.T) {
	path := writeTestConfig(t, "seed: 3\n")
	t.Setenv(EnvConfig, path)

	got, err := ResolvePath("")
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if got != path {
		t.Errorf("ResolvePath() = %q, want %q", got, path)
	}
}

func TestResolve_NoFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, path, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if cfg.Seed != Default().Seed {
		t.Errorf("Seed = %d, want default %d", cfg.Seed, Default().Seed)
	}
}

func TestResolve_GlobalFile(t *testing.T) {
	t.Setenv(EnvConfig, "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	dir := filepath.Join(xdg, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte("seed: 99\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != GlobalConfigPath() {
		t.Errorf("path = %q, want %q", path, GlobalConfigPath())
	}
	if cfg.Seed != 99 {
		t.Errorf("Seed = %d, want 99", cfg.Seed)
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	msg := HelpfulConfigMessage()
	for _, want := range []string{LocalConfigFile, EnvConfig, "neighbour_cluster"} {
		if !strings.Contains(msg, want) {
			t.Errorf("HelpfulConfigMessage() missing %q", want)
		}
	}
}
