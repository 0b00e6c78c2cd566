package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netsim/topogen/internal/pipeline"
	"github.com/netsim/topogen/internal/topology"
)

var (
	generateSeed     uint64
	generateKML      bool
	generateGraph    bool
	generateJSON     bool
	generateSimNodes string
	generateHTML     string
	generateSVG      string
	generateMetrics  string
)

func init() {
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "Random seed (overrides the configured seed)")
	generateCmd.Flags().BoolVar(&generateKML, "kml", false, "Write the triangulation and final graph as KML")
	generateCmd.Flags().BoolVar(&generateGraph, "graph", false, "Write the plain node and edge files")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Write the JSON document, optionally to the file given as argument")
	generateCmd.Flags().StringVar(&generateSimNodes, "sim-nodes", "", "JSON file of simulation nodes to attach")
	generateCmd.Flags().StringVar(&generateHTML, "html", "", "Write an interactive HTML visualization")
	generateCmd.Flags().StringVar(&generateSVG, "svg", "", "Write an SVG map")
	generateCmd.Flags().StringVar(&generateMetrics, "metrics-file", "", "Write per-stage metrics in Prometheus text format")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [--json [file]]",
	Short: "Run the topology pipeline",
	Long: `Run the topology pipeline and write the selected outputs.

Every destination is checked before any work starts, and files are only
committed once every output has been produced.

Examples:
  topogen generate --kml --graph
  topogen generate --seed 7 --json topology.json
  topogen generate --json --sim-nodes nodes.json --svg map.svg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	jsonFile, err := jsonFileArg(generateJSON, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = generateSeed
	}

	outputs := pipeline.SelectOutputs(cfg, generateKML, generateGraph, generateJSON,
		jsonFile, generateHTML, generateSVG, generateMetrics)
	if err := outputs.Check(cfg); err != nil {
		return err
	}

	in, err := pipeline.LoadInputs(cfg, generateSimNodes, logger)
	if err != nil {
		return err
	}

	runner := pipeline.New(cfg, logger, nil)
	res, err := runner.Run(in)
	if err != nil {
		return err
	}
	files, err := runner.Write(res, outputs)
	if err != nil {
		return err
	}
	logger.Info("run complete", zap.String("run_id", res.RunID))

	summary := pipeline.Summarize(res, files)
	if humanOutput {
		printSummaryHuman(summary)
		return nil
	}
	return outputJSON(summary)
}

// jsonFileArg returns the JSON file named after --json. A positional argument
// without --json is rejected.
func jsonFileArg(jsonFlag bool, args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	if !jsonFlag {
		return "", fmt.Errorf("unexpected argument %q (a file name is only accepted after --json)", args[0])
	}
	return args[0], nil
}

func printSummaryHuman(s pipeline.Summary) {
	outputHuman("Run %s (seed %d)\n", s.RunID, s.Seed)
	outputHuman("  Nodes:       %d\n", s.Nodes)
	outputHuman("  Edges:       %d (%d cable)\n", s.Edges, s.CableEdges)
	outputHuman("  Components:  %d before prune, %d nodes pruned\n", s.Components, s.Pruned)
	if s.SimNodes > 0 {
		outputHuman("  Sim nodes:   %d\n", s.SimNodes)
	}
	printDegreeEntries("Highest degree", s.Diagnostics.World)
	if s.Diagnostics.Region != "" {
		printDegreeEntries("Highest degree ("+s.Diagnostics.Region+")", s.Diagnostics.InRegion)
	}
	if len(s.Files) > 0 {
		outputHuman("\nWrote:\n")
		for _, f := range s.Files {
			outputHuman("  %s\n", f)
		}
	}
}

func printDegreeEntries(title string, entries []topology.DegreeEntry) {
	if len(entries) == 0 {
		return
	}
	outputHuman("  %s:\n", title)
	for _, e := range entries {
		name := e.Location.Name
		if name == "" {
			name = string(e.Location.Role)
		}
		outputHuman("    %d  %-24s degree %d  (%.4f, %.4f)\n", e.ID, name, e.Degree, e.Location.Lat, e.Location.Lon)
	}
}
