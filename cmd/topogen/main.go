// Package main provides the topogen CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netsim/topogen/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configFile  string
	logger      = zap.NewNop()
)

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		exitWithError(exitCode(err), "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "topogen",
	Short: "Generate geographic network topologies",
	Long: `topogen builds a synthetic, geographically plausible network topology from
city locations.

Cities are clustered into metropolitan nodes, triangulated, thinned with a
beta-skeleton and an optional population density length filter, augmented
with submarine cable links and pruned to a single connected component.

All commands output JSON by default; logs go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is not an error.
		_ = godotenv.Load()

		l, err := newLogger(humanOutput)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output and console logs instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (default: $TOPOGEN_CONFIG, ./topogen.yml, then the per-user file)")
	rootCmd.Version = Version
}

// newLogger returns a JSON production logger, or a console development logger
// for human output. Both write to stderr.
func newLogger(human bool) (*zap.Logger, error) {
	if human {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig resolves and loads the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, path, err := config.Resolve(configFile)
	if err != nil {
		return nil, err
	}
	if path == "" {
		logger.Info("no configuration file found, using defaults")
		if humanOutput {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		}
	} else {
		logger.Info("loaded configuration", zap.String("file", path))
	}
	return cfg, nil
}
