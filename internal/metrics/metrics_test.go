package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.StageNodes == nil || r.StageEdges == nil || r.StageDuration == nil {
		t.Fatal("NewRegistry() left metrics uninitialised")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestObserveStage(t *testing.T) {
	r := NewRegistry()
	r.ObserveStage(Stage{Name: "triangulate", Nodes: 10, Edges: 24, Duration: 20 * time.Millisecond})
	r.ObserveStage(Stage{Name: "beta_skeleton", Nodes: 10, Edges: 15, Removed: 9, Duration: 5 * time.Millisecond})

	if got := testutil.ToFloat64(r.StageEdges.WithLabelValues("triangulate")); got != 24 {
		t.Errorf("triangulate edges = %v, want 24", got)
	}
	if got := testutil.ToFloat64(r.StageRemoved.WithLabelValues("beta_skeleton")); got != 9 {
		t.Errorf("beta_skeleton removed = %v, want 9", got)
	}
	if n := testutil.CollectAndCount(r.StageDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.SetRun("6f1c", 42)
	r.ObserveStage(Stage{Name: "prune", Nodes: 3, Edges: 2, Removed: 1})

	path := filepath.Join(t.TempDir(), "topogen.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`topogen_stage_nodes{stage="prune"} 3`,
		`topogen_run_info{run_id="6f1c",seed="42"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics file missing %q:\n%s", want, text)
		}
	}
}
