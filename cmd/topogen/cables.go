package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netsim/topogen/internal/export"
	"github.com/netsim/topogen/internal/fetch"
)

var cablesOut string

func init() {
	cablesFetchCmd.Flags().StringVar(&cablesOut, "out", ".", "Directory to write the GeoJSON files into")
	cablesCmd.AddCommand(cablesFetchCmd)
	rootCmd.AddCommand(cablesCmd)
}

var cablesCmd = &cobra.Command{
	Use:   "cables",
	Short: "Manage submarine cable data",
}

var cablesFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download landing points and cable routes",
	Long: `Download the landing point and cable route GeoJSON files.

Requests are rate limited (fetch.requests_per_second) and the download is
checked to parse before anything is written. Point seacable.landing_points_file
and seacable.cables_file at the written files to use them.

Examples:
  topogen cables fetch --out data/`,
	Args: cobra.NoArgs,
	RunE: runCablesFetch,
}

// CablesFetchResult is the response for the cables fetch command.
type CablesFetchResult struct {
	LandingPointsFile string `json:"landing_points_file"`
	CablesFile        string `json:"cables_file"`
	fetch.Stats
}

func runCablesFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second)
	defer cancel()

	client := fetch.NewClient(
		fetch.WithBaseURL(cfg.Fetch.BaseURL),
		fetch.WithRate(cfg.Fetch.RequestsPerSecond),
		fetch.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second}),
		fetch.WithLogger(logger),
	)
	dl, err := client.FetchDataset(ctx)
	if err != nil {
		return err
	}

	lp, cables, err := dl.Save(cablesOut)
	if err != nil {
		return fmt.Errorf("%w: %v", export.ErrUnwritable, err)
	}
	logger.Info("saved cable data",
		zap.String("landing_points_file", lp),
		zap.String("cables_file", cables),
		zap.Int("landing_points", dl.Stats.LandingPoints),
		zap.Int("cables", dl.Stats.Cables))

	result := CablesFetchResult{LandingPointsFile: lp, CablesFile: cables, Stats: dl.Stats}
	if humanOutput {
		outputHuman("Fetched %d landing points and %d cables\n  %s\n  %s\n",
			result.LandingPoints, result.Cables, lp, cables)
		return nil
	}
	return outputJSON(result)
}
