// Package pipeline runs the topology generation stages in order: clustering,
// identity assignment, triangulation, filtering, diagnostics, ground-truth
// augmentation, pruning and simulation node attachment.
package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/netsim/topogen/internal/cluster"
	"github.com/netsim/topogen/internal/config"
	"github.com/netsim/topogen/internal/delaunay"
	"github.com/netsim/topogen/internal/export"
	"github.com/netsim/topogen/internal/filter"
	"github.com/netsim/topogen/internal/geo"
	"github.com/netsim/topogen/internal/groundtruth"
	"github.com/netsim/topogen/internal/importer"
	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/metrics"
	"github.com/netsim/topogen/internal/population"
	"github.com/netsim/topogen/internal/simtopo"
	"github.com/netsim/topogen/internal/topology"
)

// Stage names used in logs and metrics.
const (
	StageLoad       = "load"
	StageDensity    = "density_annotate"
	StageNeighbour  = "neighbour_cluster"
	StageMetropolis = "metropolis_cluster"
	StageCables     = "cable_merge"
	StageIdentity   = "assign_ids"
	StageTriangle   = "triangulate"
	StageBeta       = "beta_skeleton"
	StageLength     = "length_filter"
	StageAugment    = "augment"
	StagePrune      = "prune"
	StageAttach     = "attach_sim_nodes"
)

// Inputs is the data a run works on. Cities is required; the rest is optional.
type Inputs struct {
	Cities      []location.Location
	Grid        *population.Grid
	Cables      *groundtruth.Dataset
	SimNodes    []importer.SimNode
	InputDigest string
}

// Result is everything produced by a run.
type Result struct {
	RunID       string
	Seed        uint64
	InputDigest string

	// Delaunay is the graph straight after triangulation.
	Delaunay *topology.Graph
	// Graph is the final, pruned topology.
	Graph *topology.Graph

	Diagnostics topology.DegreeReport
	Attachments []simtopo.Attachment
	Merge       groundtruth.MergeResult
	Prune       topology.PruneResult
	Stages      []metrics.Stage
}

// Runner executes the pipeline.
type Runner struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Registry
}

// New creates a Runner. A nil logger discards logs; a nil registry gets a fresh one.
func New(cfg *config.Config, logger *zap.Logger, reg *metrics.Registry) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Runner{cfg: cfg, logger: logger, metrics: reg}
}

// Metrics returns the registry the runner records into.
func (r *Runner) Metrics() *metrics.Registry {
	return r.metrics
}

// Run executes every stage on in.
func (r *Runner) Run(in Inputs) (*Result, error) {
	cfg := r.cfg
	res := &Result{
		Seed:        cfg.Seed,
		InputDigest: in.InputDigest,
		RunID:       export.RunID(cfg.Seed, in.InputDigest),
	}
	r.metrics.SetRun(res.RunID, res.Seed)
	r.logger.Info("starting run", zap.String("run_id", res.RunID), zap.Uint64("seed", res.Seed))

	store := location.NewStore(in.Cities...)
	r.observe(res, metrics.Stage{Name: StageLoad, Nodes: store.Len()})

	if in.Grid != nil {
		start := time.Now()
		cities := store.All()
		n := in.Grid.Annotate(cities)
		if err := store.Replace(cities); err != nil {
			return nil, err
		}
		r.observe(res, metrics.Stage{Name: StageDensity, Nodes: n, Duration: time.Since(start)})
	}

	var err error
	if err = r.cluster(res, StageNeighbour, store, cfg.NeighbourCluster, location.RoleCity); err != nil {
		return nil, err
	}
	if err = r.cluster(res, StageMetropolis, store, cfg.MetropolisCluster, location.RoleMetropolis); err != nil {
		return nil, err
	}

	if in.Cables != nil {
		start := time.Now()
		res.Merge, err = groundtruth.Merge(store, in.Cables, groundtruth.MergeOptions{
			MergeDistanceKm: cfg.Seacable.MergeDistanceKm,
			SnapDistanceKm:  cfg.Seacable.SnapDistanceKm,
		})
		if err != nil {
			return nil, fmt.Errorf("merging cables: %w", err)
		}
		r.observe(res, metrics.Stage{Name: StageCables, Nodes: store.Len(), Duration: time.Since(start)},
			zap.Int("cables", res.Merge.Cables),
			zap.Int("landing_points", res.Merge.LandingPoints),
			zap.Int("reused_locations", res.Merge.ReusedLocation),
			zap.Int("waypoints", res.Merge.Waypoints),
			zap.Int("unsnapped_ends", res.Merge.UnsnappedEnds),
			zap.Int("links", len(res.Merge.Links)))
	}

	if err := store.AssignIDs(); err != nil {
		return nil, fmt.Errorf("assigning ids: %w", err)
	}
	roles := store.CountByRole()
	r.observe(res, metrics.Stage{Name: StageIdentity, Nodes: store.Len()},
		zap.Int("cities", roles[location.RoleCity]),
		zap.Int("metropolises", roles[location.RoleMetropolis]),
		zap.Int("landing_points", roles[location.RoleLandingPoint]),
		zap.Int("waypoints", roles[location.RoleWaypoint]))

	start := time.Now()
	g, tri, err := delaunay.BuildGraph(store)
	if err != nil {
		return nil, err
	}
	res.Delaunay = g.Clone()
	r.observe(res, metrics.Stage{Name: StageTriangle, Nodes: g.NumNodes(), Edges: g.NumEdges(), Duration: time.Since(start)},
		zap.Int("triangles", len(tri.Triangles)),
		zap.Int("flips", tri.Flips))

	start = time.Now()
	beta, err := filter.BetaSkeleton(g, cfg.BetaSkeleton.Beta)
	if err != nil {
		return nil, err
	}
	r.observe(res, metrics.Stage{Name: StageBeta, Nodes: g.NumNodes(), Edges: g.NumEdges(), Removed: beta.Removed, Duration: time.Since(start)},
		zap.Float64("beta", cfg.BetaSkeleton.Beta))

	if cfg.LengthFilter.Enable {
		var sampler filter.DensitySampler = population.EndpointSampler{}
		if in.Grid != nil {
			sampler = in.Grid
		}
		start = time.Now()
		dr, err := filter.DensityLength(g, sampler, cfg.LengthFilter.Rules, cfg.LengthFilter.Samples)
		if err != nil {
			return nil, err
		}
		r.observe(res, metrics.Stage{Name: StageLength, Nodes: g.NumNodes(), Edges: g.NumEdges(), Removed: dr.Removed, Duration: time.Since(start)},
			zap.Bool("grid", in.Grid != nil))
	}

	region, err := geo.LookupRegion(cfg.Diagnostics.Region, cfg.Diagnostics.Boxes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	res.Diagnostics = g.Report(cfg.Diagnostics.TopK, region)
	r.logDiagnostics(res.Diagnostics)

	if len(res.Merge.Links) > 0 {
		start = time.Now()
		ar, err := groundtruth.Augment(g, res.Merge.Links)
		if err != nil {
			return nil, fmt.Errorf("augmenting cables: %w", err)
		}
		r.observe(res, metrics.Stage{Name: StageAugment, Nodes: g.NumNodes(), Edges: g.NumEdges(), Duration: time.Since(start)},
			zap.Int("added", ar.Added),
			zap.Int("retagged", ar.Retagged))
	}

	start = time.Now()
	res.Prune = g.Prune()
	r.observe(res, metrics.Stage{Name: StagePrune, Nodes: g.NumNodes(), Edges: g.NumEdges(), Removed: res.Prune.RemovedNodes, Duration: time.Since(start)},
		zap.Int("components", res.Prune.Components),
		zap.Int("removed_edges", res.Prune.RemovedEdges))
	if !g.IsConnected() {
		return nil, fmt.Errorf("final topology: %d components after prune", len(g.Components()))
	}
	res.Graph = g

	if len(in.SimNodes) > 0 {
		start = time.Now()
		res.Attachments, err = simtopo.Attach(g, in.SimNodes)
		if err != nil {
			return nil, err
		}
		r.observe(res, metrics.Stage{Name: StageAttach, Nodes: len(res.Attachments), Duration: time.Since(start)})
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("final topology: %w", err)
	}
	r.logger.Info("run complete",
		zap.String("run_id", res.RunID),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()))
	return res, nil
}

// cluster runs one clustering pass over the store and replaces its contents with
// the survivors.
func (r *Runner) cluster(res *Result, stage string, store *location.Store, c config.Cluster, role location.Role) error {
	start := time.Now()
	points := store.All()
	out, err := cluster.Filter(points, cluster.ParamsFromKm(c.MaxClusterDistanceKm, c.MinPts, role), r.cfg.Seed)
	if err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	if err := store.Replace(out.Locations); err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	r.observe(res, metrics.Stage{
		Name:     stage,
		Nodes:    store.Len(),
		Removed:  len(points) - store.Len(),
		Duration: time.Since(start),
	},
		zap.Int("clusters", out.Clusters),
		zap.Int("noise", out.Noise))
	return nil
}

func (r *Runner) observe(res *Result, s metrics.Stage, fields ...zap.Field) {
	res.Stages = append(res.Stages, s)
	r.metrics.ObserveStage(s)
	base := []zap.Field{
		zap.String("stage", s.Name),
		zap.Int("nodes", s.Nodes),
		zap.Int("edges", s.Edges),
		zap.Int("removed", s.Removed),
		zap.Duration("took", s.Duration),
	}
	r.logger.Info("stage done", append(base, fields...)...)
}

func (r *Runner) logDiagnostics(d topology.DegreeReport) {
	for _, e := range d.World {
		r.logger.Info("highest degree",
			zap.String("scope", "world"),
			zap.Int("id", e.ID),
			zap.String("name", e.Location.Name),
			zap.Float64("lat", e.Location.Lat),
			zap.Float64("lon", e.Location.Lon),
			zap.Int("degree", e.Degree))
	}
	for _, e := range d.InRegion {
		r.logger.Info("highest degree",
			zap.String("scope", d.Region),
			zap.Int("id", e.ID),
			zap.String("name", e.Location.Name),
			zap.Float64("lat", e.Location.Lat),
			zap.Float64("lon", e.Location.Lon),
			zap.Int("degree", e.Degree))
	}
}
