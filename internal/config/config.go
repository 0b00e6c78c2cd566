// Package config loads the generator configuration from YAML, applies defaults and
// validates it. The resulting Config is treated as immutable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/netsim/topogen/internal/filter"
	"github.com/netsim/topogen/internal/geo"
)

// ErrInvalid is returned for configuration that fails validation.
var ErrInvalid = errors.New("invalid configuration")

// validate is a singleton validator instance
var validate = validator.New()

// Config is the complete generator configuration.
type Config struct {
	Seed              uint64            `yaml:"seed" json:"seed"`
	Debug             Debug             `yaml:"debug" json:"debug"`
	Cities            Cities            `yaml:"cities" json:"cities"`
	NeighbourCluster  Cluster           `yaml:"neighbour_cluster" json:"neighbour_cluster"`
	MetropolisCluster Cluster           `yaml:"metropolis_cluster" json:"metropolis_cluster"`
	BetaSkeleton      BetaSkeleton      `yaml:"beta_skeleton" json:"beta_skeleton"`
	LengthFilter      LengthFilter      `yaml:"length_filter" json:"length_filter"`
	Population        Population        `yaml:"population" json:"population"`
	Seacable          Seacable          `yaml:"seacable" json:"seacable"`
	Diagnostics       Diagnostics       `yaml:"diagnostics" json:"diagnostics"`
	KMLGraphOutput    KMLOutput         `yaml:"kml_graph_output" json:"kml_graph_output"`
	SimpleGraphOutput SimpleGraphOutput `yaml:"simple_graph_output" json:"simple_graph_output"`
	JSONGraphOutput   JSONOutput        `yaml:"json_graph_output" json:"json_graph_output"`
	HTMLOutput        FileOutput        `yaml:"html_output" json:"html_output"`
	SVGOutput         SVGOutput         `yaml:"svg_output" json:"svg_output"`
	MetricsOutput     FileOutput        `yaml:"metrics_output" json:"metrics_output"`
	Fetch             Fetch             `yaml:"fetch" json:"fetch"`
}

// Debug replaces the city database with a fixed city list.
type Debug struct {
	Enable     bool   `yaml:"enable" json:"enable"`
	CitiesFile string `yaml:"cities_file" json:"cities_file"`
}

// Cities configures sampling from the city database.
type Cities struct {
	Database      string `yaml:"database" json:"database"`
	SampleSize    int    `yaml:"sample_size" json:"sample_size" validate:"gte=0"`
	MinPopulation int64  `yaml:"min_population" json:"min_population" validate:"gte=0"`
}

// Cluster configures one clustering pass.
type Cluster struct {
	MinPts               int     `yaml:"min_pts" json:"min_pts" validate:"gte=1"`
	MaxClusterDistanceKm float64 `yaml:"max_cluster_distance_km" json:"max_cluster_distance_km" validate:"gt=0"`
}

// BetaSkeleton configures the proximity filter.
type BetaSkeleton struct {
	Beta float64 `yaml:"beta" json:"beta" validate:"gt=0"`
}

// LengthFilter configures the density edge filter.
type LengthFilter struct {
	Enable  bool                `yaml:"enable" json:"enable"`
	Samples int                 `yaml:"samples" json:"samples" validate:"gte=2"`
	Rules   []filter.LengthRule `yaml:"rules" json:"rules" validate:"dive"`
}

// Population points at the density raster.
type Population struct {
	GridFile string `yaml:"grid_file" json:"grid_file"`
}

// Seacable configures ground-truth cable import.
type Seacable struct {
	LandingPointsFile string  `yaml:"landing_points_file" json:"landing_points_file"`
	CablesFile        string  `yaml:"cables_file" json:"cables_file"`
	MergeDistanceKm   float64 `yaml:"merge_distance_km" json:"merge_distance_km" validate:"gte=0"`
	SnapDistanceKm    float64 `yaml:"snap_distance_km" json:"snap_distance_km" validate:"gte=0"`
}

// Enabled reports whether cable files are configured.
func (s Seacable) Enabled() bool {
	return s.LandingPointsFile != "" && s.CablesFile != ""
}

// Region is a named bounding box for diagnostics.
type Region struct {
	MinLat float64 `yaml:"min_lat" json:"min_lat" validate:"gte=-90,lte=90"`
	MaxLat float64 `yaml:"max_lat" json:"max_lat" validate:"gte=-90,lte=90,gtefield=MinLat"`
	MinLon float64 `yaml:"min_lon" json:"min_lon" validate:"gte=-180,lte=180"`
	MaxLon float64 `yaml:"max_lon" json:"max_lon" validate:"gte=-180,lte=180"`
}

// Diagnostics configures the pre-prune degree report.
type Diagnostics struct {
	TopK    int               `yaml:"top_k" json:"top_k" validate:"gte=0"`
	Region  string            `yaml:"region" json:"region"`
	Regions map[string]Region `yaml:"regions" json:"regions,omitempty" validate:"dive"`
}

// Boxes converts the custom regions for geo.LookupRegion.
func (d Diagnostics) Boxes() map[string]geo.Box {
	out := make(map[string]geo.Box, len(d.Regions))
	for name, r := range d.Regions {
		name = strings.ToLower(strings.TrimSpace(name))
		out[name] = geo.Box{Label: name, MinLat: r.MinLat, MaxLat: r.MaxLat, MinLon: r.MinLon, MaxLon: r.MaxLon}
	}
	return out
}

// Style is a KML colour: hex "rrggbb" plus an opacity in [0, 1].
type Style struct {
	Color string  `yaml:"color" json:"color" validate:"required,hexadecimal,len=6"`
	Alpha float64 `yaml:"alpha" json:"alpha" validate:"gte=0,lte=1"`
}

// KMLOutput configures the KML writers.
type KMLOutput struct {
	DelaunayFile string `yaml:"delaunay_file" json:"delaunay_file"`
	GabrielFile  string `yaml:"gabriel_file" json:"gabriel_file"`
	Pins         Style  `yaml:"pins" json:"pins"`
	Edges        Style  `yaml:"edges" json:"edges"`
	Seacable     Style  `yaml:"seacable" json:"seacable"`
	SeacablePins Style  `yaml:"seacable_pins" json:"seacable_pins"`
}

// SimpleGraphOutput names the plain node and edge files.
type SimpleGraphOutput struct {
	NodeFile string `yaml:"node_file" json:"node_file"`
	EdgeFile string `yaml:"edge_file" json:"edge_file"`
}

// JSONOutput configures the interchange document.
type JSONOutput struct {
	Filename    string `yaml:"filename" json:"filename"`
	PrettyPrint bool   `yaml:"pretty_print" json:"pretty_print"`
	Compress    bool   `yaml:"compress" json:"compress"`
}

// FileOutput names a single output file; empty disables it.
type FileOutput struct {
	Filename string `yaml:"filename" json:"filename"`
}

// SVGOutput configures the map rendering.
type SVGOutput struct {
	Filename string `yaml:"filename" json:"filename"`
	Width    int    `yaml:"width" json:"width" validate:"gte=100"`
	Height   int    `yaml:"height" json:"height" validate:"gte=50"`
}

// Fetch configures downloading cable data.
type Fetch struct {
	BaseURL           string  `yaml:"base_url" json:"base_url" validate:"required,url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" validate:"gt=0"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" json:"timeout_seconds" validate:"gte=1"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Seed: 1,
		Cities: Cities{
			Database:      "cities.db",
			SampleSize:    0,
			MinPopulation: 50000,
		},
		NeighbourCluster:  Cluster{MinPts: 2, MaxClusterDistanceKm: 60},
		MetropolisCluster: Cluster{MinPts: 4, MaxClusterDistanceKm: 250},
		BetaSkeleton:      BetaSkeleton{Beta: 1},
		LengthFilter: LengthFilter{
			Enable:  false,
			Samples: 10,
			Rules: []filter.LengthRule{
				{MinDensity: 0, MaxLengthKm: 1500},
				{MinDensity: 50, MaxLengthKm: 900},
				{MinDensity: 300, MaxLengthKm: 500},
			},
		},
		Seacable: Seacable{MergeDistanceKm: 30, SnapDistanceKm: 50},
		Diagnostics: Diagnostics{
			TopK:   2,
			Region: "us",
		},
		KMLGraphOutput: KMLOutput{
			DelaunayFile: "delaunay.kml",
			GabrielFile:  "gabriel.kml",
			Pins:         Style{Color: "E97F02", Alpha: 1},
			Edges:        Style{Color: "490A3D", Alpha: 0.8},
			Seacable:     Style{Color: "8A9B0F", Alpha: 0.8},
			SeacablePins: Style{Color: "BD1550", Alpha: 1},
		},
		SimpleGraphOutput: SimpleGraphOutput{NodeFile: "nodes.txt", EdgeFile: "edges.txt"},
		JSONGraphOutput:   JSONOutput{Filename: "topology.json", PrettyPrint: true},
		SVGOutput:         SVGOutput{Width: 1600, Height: 800},
		Fetch: Fetch{
			BaseURL:           "https://www.submarinecablemap.com/api/v3",
			RequestsPerSecond: 1,
			TimeoutSeconds:    60,
		},
	}
}

// Load reads the YAML file at path over the defaults. Relative file names inside
// the configuration are resolved against the file's directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault returns the defaults with environment overrides applied.
func LoadDefault() (*Config, error) {
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment overrides.
const (
	EnvConfig         = "TOPOGEN_CONFIG"
	EnvSeed           = "TOPOGEN_SEED"
	EnvCitiesDB       = "TOPOGEN_CITIES_DB"
	EnvPopulationGrid = "TOPOGEN_POPULATION_GRID"
)

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an unsigned integer", ErrInvalid, EnvSeed, v)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv(EnvCitiesDB); v != "" {
		cfg.Cities.Database = v
	}
	if v := os.Getenv(EnvPopulationGrid); v != "" {
		cfg.Population.GridFile = v
	}
	return nil
}

// resolvePaths makes input file names relative to dir. Output names stay relative
// to the working directory.
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{
		&c.Debug.CitiesFile,
		&c.Cities.Database,
		&c.Population.GridFile,
		&c.Seacable.LandingPointsFile,
		&c.Seacable.CablesFile,
	} {
		*p = resolve(dir, *p)
	}
}

func resolve(dir, p string) string {
	if p == "" {
		return p
	}
	p = ExpandPath(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// Validate runs struct-tag validation and the cross-field checks.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, formatValidationError(err))
	}

	switch {
	case c.Debug.Enable && c.Debug.CitiesFile == "":
		return fmt.Errorf("%w: debug.cities_file is required when debug.enable is set", ErrInvalid)
	case !c.Debug.Enable && c.Cities.Database == "":
		return fmt.Errorf("%w: cities.database is required", ErrInvalid)
	case (c.Seacable.LandingPointsFile == "") != (c.Seacable.CablesFile == ""):
		return fmt.Errorf("%w: seacable.landing_points_file and seacable.cables_file must be set together", ErrInvalid)
	case c.LengthFilter.Enable && len(c.LengthFilter.Rules) == 0:
		return fmt.Errorf("%w: length_filter.rules must not be empty when enabled", ErrInvalid)
	}

	seen := make(map[float64]bool)
	for _, r := range c.LengthFilter.Rules {
		if seen[r.MinDensity] {
			return fmt.Errorf("%w: length_filter.rules: duplicate min_density %g", ErrInvalid, r.MinDensity)
		}
		seen[r.MinDensity] = true
	}

	if _, err := geo.LookupRegion(c.Diagnostics.Region, c.Diagnostics.Boxes()); err != nil {
		return fmt.Errorf("%w: diagnostics.region: %v", ErrInvalid, err)
	}
	return nil
}

// formatValidationError reports the first failing field in a readable form.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "gt", "gte":
			return fmt.Errorf("%s: must be %s %s, got %v", field, symbol(e.Tag()), e.Param(), e.Value())
		case "lte":
			return fmt.Errorf("%s: must not exceed %s, got %v", field, e.Param(), e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}

func symbol(tag string) string {
	if tag == "gt" {
		return ">"
	}
	return ">="
}
