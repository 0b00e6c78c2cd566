// Package metrics records per-stage pipeline statistics in a Prometheus registry
// and writes them as a node-exporter text file.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for one pipeline run.
type Registry struct {
	StageNodes    *prometheus.GaugeVec
	StageEdges    *prometheus.GaugeVec
	StageRemoved  *prometheus.GaugeVec
	StageDuration *prometheus.HistogramVec
	RunInfo       *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric initialised.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.StageNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "topogen_stage_nodes",
			Help: "Number of locations or graph nodes after a pipeline stage",
		},
		[]string{"stage"},
	)

	r.StageEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "topogen_stage_edges",
			Help: "Number of graph edges after a pipeline stage",
		},
		[]string{"stage"},
	)

	r.StageRemoved = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "topogen_stage_removed",
			Help: "Number of items removed by a pipeline stage",
		},
		[]string{"stage"},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topogen_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"stage"},
	)

	r.RunInfo = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "topogen_run_info",
			Help: "Constant 1, labelled with the run identity",
		},
		[]string{"run_id", "seed"},
	)

	return r
}

// Stage is the outcome of one pipeline stage.
type Stage struct {
	Name     string
	Nodes    int
	Edges    int
	Removed  int
	Duration time.Duration
}

// ObserveStage records a finished stage.
func (r *Registry) ObserveStage(s Stage) {
	r.StageNodes.WithLabelValues(s.Name).Set(float64(s.Nodes))
	r.StageEdges.WithLabelValues(s.Name).Set(float64(s.Edges))
	r.StageRemoved.WithLabelValues(s.Name).Set(float64(s.Removed))
	r.StageDuration.WithLabelValues(s.Name).Observe(s.Duration.Seconds())
}

// SetRun labels the output with the run identity.
func (r *Registry) SetRun(runID string, seed uint64) {
	r.RunInfo.Reset()
	r.RunInfo.WithLabelValues(runID, fmt.Sprint(seed)).Set(1)
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every metric in the text exposition format.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
