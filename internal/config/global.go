package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "topogen"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// LocalConfigFile is looked up in the working directory.
	LocalConfigFile = "topogen.yml"
)

// ErrConfigNotFound is returned when an explicitly named config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// GlobalConfigPath returns the path to the per-user config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/topogen/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// ResolvePath picks the config file to load. An explicit path wins, then
// TOPOGEN_CONFIG, then ./topogen.yml, then the per-user file. An empty result
// means no file was found and the defaults apply.
func ResolvePath(explicit string) (string, error) {
	for _, named := range []string{explicit, os.Getenv(EnvConfig)} {
		if named == "" {
			continue
		}
		named = ExpandPath(named)
		if _, err := os.Stat(named); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, named)
		}
		return named, nil
	}

	for _, candidate := range []string{LocalConfigFile, GlobalConfigPath()} {
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// Resolve loads the config chosen by ResolvePath and reports which file was used.
func Resolve(explicit string) (*Config, string, error) {
	path, err := ResolvePath(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg, err := LoadDefault()
		return cfg, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// HelpfulConfigMessage returns a message explaining how to supply a config file.
func HelpfulConfigMessage() string {
	return fmt.Sprintf(`No configuration file found; using built-in defaults.

To configure the generator, create %s in the working directory,
or %s, or point %s at a file:

  seed: 42
  cities:
    database: cities.db
    min_population: 100000
  neighbour_cluster:
    min_pts: 2
    max_cluster_distance_km: 60
`, LocalConfigFile, GlobalConfigPath(), EnvConfig)
}
