package pipeline

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/netsim/topogen/internal/config"
	"github.com/netsim/topogen/internal/export"
	"github.com/netsim/topogen/internal/topology"
	"github.com/netsim/topogen/internal/viz"
)

// Outputs selects which files a run writes. Empty file names disable an output.
type Outputs struct {
	KML         bool
	Graph       bool
	JSONFile    string
	HTMLFile    string
	SVGFile     string
	MetricsFile string
}

// SelectOutputs resolves file names against cfg. A JSON file named on the command
// line wins over json_graph_output.filename; json enables JSON output with the
// configured name.
func SelectOutputs(cfg *config.Config, kml, graph, json bool, jsonFile, htmlFile, svgFile, metricsFile string) Outputs {
	o := Outputs{
		KML:         kml,
		Graph:       graph,
		HTMLFile:    firstNonEmpty(htmlFile, cfg.HTMLOutput.Filename),
		SVGFile:     firstNonEmpty(svgFile, cfg.SVGOutput.Filename),
		MetricsFile: firstNonEmpty(metricsFile, cfg.MetricsOutput.Filename),
	}
	if json || jsonFile != "" {
		o.JSONFile = firstNonEmpty(jsonFile, cfg.JSONGraphOutput.Filename)
	}
	return o
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Paths lists every destination o will write.
func (o Outputs) Paths(cfg *config.Config) []string {
	var paths []string
	if o.KML {
		paths = append(paths, cfg.KMLGraphOutput.DelaunayFile, cfg.KMLGraphOutput.GabrielFile)
	}
	if o.Graph {
		paths = append(paths, cfg.SimpleGraphOutput.NodeFile, cfg.SimpleGraphOutput.EdgeFile)
	}
	for _, p := range []string{o.JSONFile, o.HTMLFile, o.SVGFile, o.MetricsFile} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Check verifies that every destination is writable before any work is done.
func (o Outputs) Check(cfg *config.Config) error {
	paths := o.Paths(cfg)
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" {
			return fmt.Errorf("%w: enabled output has no file name", config.ErrInvalid)
		}
		if seen[p] {
			return fmt.Errorf("%w: %s is used for two outputs", config.ErrInvalid, p)
		}
		seen[p] = true
	}
	return export.CheckWritable(paths...)
}

func kmlStyles(k config.KMLOutput) export.KMLStyles {
	style := func(s config.Style) export.Style {
		return export.Style{Color: s.Color, Alpha: s.Alpha}
	}
	return export.KMLStyles{
		Pins:         style(k.Pins),
		Edges:        style(k.Edges),
		Seacable:     style(k.Seacable),
		SeacablePins: style(k.SeacablePins),
	}
}

// Write stages every selected output and commits them together. Nothing is left
// behind when any writer fails.
func (r *Runner) Write(res *Result, o Outputs) ([]string, error) {
	cfg := r.cfg
	batch := export.NewBatch()
	ok := false
	defer func() {
		if !ok {
			batch.Abort()
		}
	}()

	if o.KML {
		styles := kmlStyles(cfg.KMLGraphOutput)
		if err := batch.Write(cfg.KMLGraphOutput.DelaunayFile, func(w io.Writer) error {
			return export.WriteKML(w, res.Delaunay, "Delaunay triangulation", styles)
		}); err != nil {
			return nil, err
		}
		if err := batch.Write(cfg.KMLGraphOutput.GabrielFile, func(w io.Writer) error {
			return export.WriteKML(w, res.Graph, "Beta skeleton", styles)
		}); err != nil {
			return nil, err
		}
	}

	if o.Graph {
		if err := batch.Write(cfg.SimpleGraphOutput.NodeFile, func(w io.Writer) error {
			return export.WriteNodes(w, res.Graph)
		}); err != nil {
			return nil, err
		}
		if err := batch.Write(cfg.SimpleGraphOutput.EdgeFile, func(w io.Writer) error {
			return export.WriteEdges(w, res.Graph)
		}); err != nil {
			return nil, err
		}
	}

	if o.JSONFile != "" {
		doc := export.NewDocument(res.Graph, export.Metadata{
			RunID:       res.RunID,
			Seed:        res.Seed,
			InputDigest: res.InputDigest,
		}, res.Attachments, &res.Diagnostics)
		opts := export.JSONOptions{Pretty: cfg.JSONGraphOutput.PrettyPrint, Compress: cfg.JSONGraphOutput.Compress}
		if err := batch.Write(o.JSONFile, func(w io.Writer) error {
			return export.WriteJSON(w, doc, opts)
		}); err != nil {
			return nil, err
		}
	}

	if o.HTMLFile != "" {
		opts := viz.DefaultOptions()
		opts.Title = fmt.Sprintf("Topology %s", res.RunID)
		html, err := viz.GenerateHTML(viz.BuildGraph(res.Graph), opts)
		if err != nil {
			return nil, err
		}
		if err := batch.Write(o.HTMLFile, func(w io.Writer) error {
			_, err := io.WriteString(w, html)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if o.SVGFile != "" {
		if err := batch.Write(o.SVGFile, func(w io.Writer) error {
			return export.WriteSVG(w, res.Graph, cfg.SVGOutput.Width, cfg.SVGOutput.Height)
		}); err != nil {
			return nil, err
		}
	}

	if o.MetricsFile != "" {
		tmp, err := batch.Reserve(o.MetricsFile)
		if err != nil {
			return nil, err
		}
		if err := r.metrics.WriteTextfile(tmp); err != nil {
			return nil, err
		}
	}

	written := batch.Pending()
	if err := batch.Commit(); err != nil {
		return nil, err
	}
	ok = true
	r.logger.Info("outputs written", zap.Strings("files", written))
	return written, nil
}

// Summary is a compact description of a run for command output.
type Summary struct {
	RunID       string                `json:"run_id"`
	Seed        uint64                `json:"seed"`
	Nodes       int                   `json:"nodes"`
	Edges       int                   `json:"edges"`
	CableEdges  int                   `json:"cable_edges"`
	Components  int                   `json:"components_before_prune"`
	Pruned      int                   `json:"pruned_nodes"`
	SimNodes    int                   `json:"simulation_nodes"`
	Diagnostics topology.DegreeReport `json:"diagnostics"`
	Files       []string              `json:"files,omitempty"`
}

// Summarize builds the Summary of res.
func Summarize(res *Result, files []string) Summary {
	return Summary{
		RunID:       res.RunID,
		Seed:        res.Seed,
		Nodes:       res.Graph.NumNodes(),
		Edges:       res.Graph.NumEdges(),
		CableEdges:  res.Graph.EdgeCountByKind()[topology.KindGroundTruth],
		Components:  res.Prune.Components,
		Pruned:      res.Prune.RemovedNodes,
		SimNodes:    len(res.Attachments),
		Diagnostics: res.Diagnostics,
		Files:       files,
	}
}
