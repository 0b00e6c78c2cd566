package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topogen.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeTestConfig(t, `
seed: 42
cities:
  database: data/cities.db
  sample_size: 500
neighbour_cluster:
  min_pts: 3
  max_cluster_distance_km: 80
length_filter:
  enable: true
  rules:
    - min_density: 0
      max_length_km: 1000
    - min_density: 100
      max_length_km: 400
diagnostics:
  region: alps
  regions:
    alps: {min_lat: 45, max_lat: 48, min_lon: 5, max_lon: 16}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.NeighbourCluster.MinPts != 3 || cfg.NeighbourCluster.MaxClusterDistanceKm != 80 {
		t.Errorf("NeighbourCluster = %+v", cfg.NeighbourCluster)
	}
	// Untouched sections keep their defaults
	if cfg.MetropolisCluster != Default().MetropolisCluster {
		t.Errorf("MetropolisCluster = %+v, want default", cfg.MetropolisCluster)
	}
	if len(cfg.LengthFilter.Rules) != 2 {
		t.Errorf("len(Rules) = %d, want 2", len(cfg.LengthFilter.Rules))
	}
	wantDB := filepath.Join(filepath.Dir(path), "data", "cities.db")
	if cfg.Cities.Database != wantDB {
		t.Errorf("Cities.Database = %q, want %q", cfg.Cities.Database, wantDB)
	}
	if b := cfg.Diagnostics.Boxes()["alps"]; b.MaxLon != 16 || b.Label != "alps" {
		t.Errorf("Boxes()[alps] = %+v", b)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTestConfig(t, "seed: [not a number\n")
	_, err := Load(path)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() error = %v, want ErrInvalid", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeTestConfig(t, "seed: 1\n")
	t.Setenv(EnvSeed, "7")
	t.Setenv(EnvPopulationGrid, "/grids/pop.asc")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if cfg.Population.GridFile != "/grids/pop.asc" {
		t.Errorf("GridFile = %q", cfg.Population.GridFile)
	}

	t.Setenv(EnvSeed, "-3")
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() with bad seed error = %v, want ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"zero min_pts", func(c *Config) { c.NeighbourCluster.MinPts = 0 }, "MinPts"},
		{"negative distance", func(c *Config) { c.MetropolisCluster.MaxClusterDistanceKm = -1 }, "MaxClusterDistanceKm"},
		{"zero beta", func(c *Config) { c.BetaSkeleton.Beta = 0 }, "Beta"},
		{"bad colour", func(c *Config) { c.KMLGraphOutput.Pins.Color = "zzzzzz" }, "Color"},
		{"alpha above one", func(c *Config) { c.KMLGraphOutput.Edges.Alpha = 1.5 }, "Alpha"},
		{"debug without file", func(c *Config) { c.Debug.Enable = true }, "debug.cities_file"},
		{"no database", func(c *Config) { c.Cities.Database = "" }, "cities.database"},
		{"half seacable", func(c *Config) { c.Seacable.CablesFile = "cables.json" }, "seacable"},
		{"enabled without rules", func(c *Config) {
			c.LengthFilter.Enable = true
			c.LengthFilter.Rules = nil
		}, "length_filter.rules"},
		{"duplicate rule", func(c *Config) {
			c.LengthFilter.Rules = append(c.LengthFilter.Rules, c.LengthFilter.Rules[0])
		}, "duplicate min_density"},
		{"unknown region", func(c *Config) { c.Diagnostics.Region = "atlantis" }, "atlantis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() error = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidate_CustomRegionCase(t *testing.T) {
	cfg := Default()
	cfg.Diagnostics.Regions = map[string]Region{
		"Alps": {MinLat: 45, MaxLat: 48, MinLon: 5, MaxLon: 16},
	}
	for _, name := range []string{"Alps", "alps", "ALPS"} {
		cfg.Diagnostics.Region = name
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with region %q error = %v", name, err)
		}
	}

	boxes := cfg.Diagnostics.Boxes()
	if b, ok := boxes["alps"]; !ok || b.Label != "alps" {
		t.Errorf("Boxes() = %+v, want key alps", boxes)
	}
}

func TestSeacableEnabled(t *testing.T) {
	s := Seacable{}
	if s.Enabled() {
		t.Error("Enabled() = true with no files")
	}
	s.LandingPointsFile, s.CablesFile = "lp.json", "cables.json"
	if !s.Enabled() {
		t.Error("Enabled() = false with both files")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		path string
		want string
	}{
		{"~/data/cities.db", filepath.Join(home, "data/cities.db")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.path); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
