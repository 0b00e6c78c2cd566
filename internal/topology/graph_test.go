package topology

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsim/topogen/internal/geo"
	"github.com/netsim/topogen/internal/location"
)

func line(n int) []location.Location {
	locs := make([]location.Location, n)
	for i := range locs {
		locs[i] = location.New(0, float64(i), location.RoleCity)
		locs[i].ID = i
	}
	return locs
}

func TestAddEdge(t *testing.T) {
	g := New(line(3))

	tests := []struct {
		name    string
		u, v    int
		kind    Kind
		wantErr error
	}{
		{"valid", 0, 1, KindGeometric, nil},
		{"duplicate reversed", 1, 0, KindGeometric, ErrDuplicateEdge},
		{"self loop", 2, 2, KindGeometric, ErrSelfLoop},
		{"unknown node", 0, 7, KindGeometric, ErrUnknownNode},
		{"negative node", -1, 0, KindGeometric, ErrUnknownNode},
		{"unknown kind", 1, 2, Kind("fiber"), ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddEdge(tt.u, tt.v, tt.kind)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "AddEdge() = %v, want %v", err, tt.wantErr)
		})
	}

	assert.Equal(t, 1, g.NumEdges())
	e, ok := g.Edge(1, 0)
	require.True(t, ok)
	assert.Equal(t, 0, e.U)
	assert.Equal(t, 1, e.V)
	assert.InDelta(t, geo.DistanceKm(0, 0, 0, 1), e.WeightKm, 1e-9)
	assert.NoError(t, g.Validate())
}

func TestRemoveEdge(t *testing.T) {
	g := New(line(3))
	require.NoError(t, g.AddEdge(0, 1, KindGeometric))

	assert.True(t, g.RemoveEdge(1, 0))
	assert.False(t, g.RemoveEdge(1, 0))
	assert.Equal(t, 0, g.Degree(0))
	assert.NoError(t, g.Validate())
}

func TestSetKind(t *testing.T) {
	g := New(line(2))
	require.NoError(t, g.AddEdge(0, 1, KindGeometric))
	require.NoError(t, g.SetKind(1, 0, KindGroundTruth))

	e, _ := g.Edge(0, 1)
	assert.Equal(t, KindGroundTruth, e.Kind)
	assert.Equal(t, map[Kind]int{KindGroundTruth: 1}, g.EdgeCountByKind())
	assert.Error(t, g.SetKind(0, 1, Kind("bogus")))
}

func TestEdgesSorted(t *testing.T) {
	g := New(line(4))
	require.NoError(t, g.AddEdge(3, 2, KindGeometric))
	require.NoError(t, g.AddEdge(0, 3, KindGeometric))
	require.NoError(t, g.AddEdge(1, 0, KindGeometric))

	var keys []EdgeKey
	for _, e := range g.Edges() {
		keys = append(keys, e.Key())
	}
	assert.Equal(t, []EdgeKey{{0, 1}, {0, 3}, {2, 3}}, keys)
	assert.True(t, g.HasEdge(3, 0))
	assert.False(t, g.HasEdge(0, 2))
	assert.Equal(t, 2, g.Degree(0))
}

func TestCloneIsIndependent(t *testing.T) {
	g := New(line(3))
	require.NoError(t, g.AddEdge(0, 1, KindGeometric))

	c := g.Clone()
	require.NoError(t, c.AddEdge(1, 2, KindGeometric))
	c.RemoveEdge(0, 1)

	assert.True(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(1, 2))
	assert.NoError(t, c.Validate())
}

func TestPruneKeepsLargestComponent(t *testing.T) {
	// component A = {0, 2, 4}, component B = {1, 3}
	g := New(line(5))
	require.NoError(t, g.AddEdge(0, 2, KindGeometric))
	require.NoError(t, g.AddEdge(2, 4, KindGeometric))
	require.NoError(t, g.AddEdge(1, 3, KindGeometric))

	res := g.Prune()
	assert.Equal(t, 2, res.Components)
	assert.Equal(t, 2, res.RemovedNodes)
	assert.Equal(t, 1, res.RemovedEdges)
	assert.Equal(t, []int{0, -1, 1, -1, 2}, res.Remap)

	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 2, g.NumEdges())
	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(1, 2))
	assert.Equal(t, 4.0, g.Node(2).Location.Lon)
	assert.Equal(t, 4, g.Node(2).Location.ID, "location identity is frozen")
	assert.True(t, g.IsConnected())
	assert.NoError(t, g.Validate())
}

func TestPruneTieGoesToLowestID(t *testing.T) {
	g := New(line(4))
	require.NoError(t, g.AddEdge(1, 2, KindGeometric))
	require.NoError(t, g.AddEdge(0, 3, KindGeometric))

	res := g.Prune()
	assert.Equal(t, []int{0, -1, -1, 1}, res.Remap)
	assert.Equal(t, 0.0, g.Node(0).Location.Lon)
	assert.Equal(t, 3.0, g.Node(1).Location.Lon)
}

func TestPruneEmptyGraph(t *testing.T) {
	g := New(nil)
	res := g.Prune()
	assert.Zero(t, res.Components)
	assert.Zero(t, g.NumNodes())
}

func TestPruneRemovesIsolatedNodes(t *testing.T) {
	g := New(line(3))
	require.NoError(t, g.AddEdge(1, 2, KindGroundTruth))

	g.Prune()
	assert.Equal(t, 2, g.NumNodes())
	e, ok := g.Edge(0, 1)
	require.True(t, ok)
	assert.Equal(t, KindGroundTruth, e.Kind)
}

func TestHighestDegreeNodes(t *testing.T) {
	locs := []location.Location{
		location.New(40, -100, location.RoleCity), // us
		location.New(50, 10, location.RoleCity),   // europe
		location.New(45, 5, location.RoleCity),    // europe
		location.New(35, -90, location.RoleCity),  // us
	}
	g := New(locs)
	require.NoError(t, g.AddEdge(0, 1, KindGeometric))
	require.NoError(t, g.AddEdge(0, 2, KindGeometric))
	require.NoError(t, g.AddEdge(0, 3, KindGeometric))
	require.NoError(t, g.AddEdge(1, 2, KindGeometric))
	before := g.Edges()

	top := g.HighestDegreeNodes(2, nil)
	require.Len(t, top, 2)
	assert.Equal(t, 0, top[0].ID)
	assert.Equal(t, 1, top[1].ID, "degree tie broken by lowest id")

	eu := g.HighestDegreeNodes(5, geo.Europe)
	require.Len(t, eu, 2)
	assert.Equal(t, []int{1, 2}, []int{eu[0].ID, eu[1].ID})

	us := g.HighestDegreeNodes(1, geo.ContinentalUS)
	require.Len(t, us, 1)
	assert.Equal(t, 0, us[0].ID)

	assert.Nil(t, g.HighestDegreeNodes(0, nil))
	assert.Equal(t, before, g.Edges(), "diagnostics must not mutate the graph")
	assert.Equal(t, map[int]int{3: 1, 2: 2, 1: 1}, g.DegreeHistogram())
}

func TestReport(t *testing.T) {
	g := New([]location.Location{
		location.New(40, -100, location.RoleCity),
		location.New(50, 10, location.RoleCity),
		location.New(35, -90, location.RoleCity),
	})
	require.NoError(t, g.AddEdge(0, 1, KindGeometric))
	require.NoError(t, g.AddEdge(1, 2, KindGeometric))

	r := g.Report(1, geo.ContinentalUS)
	require.Len(t, r.World, 1)
	assert.Equal(t, 1, r.World[0].ID)
	assert.Equal(t, 2, r.World[0].Degree)
	assert.Equal(t, "us", r.Region)
	require.Len(t, r.InRegion, 1)
	assert.Equal(t, 0, r.InRegion[0].ID, "lowest id wins the degree tie inside the region")

	world := g.Report(2, nil)
	assert.Empty(t, world.Region)
	assert.Nil(t, world.InRegion)
}

func TestPruneProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	const n = 25
	properties.Property("pruned graph is one maximum component with contiguous ids", prop.ForAll(
		func(us, vs []int) bool {
			g := New(line(n))
			for i := 0; i < len(us) && i < len(vs); i++ {
				if us[i] != vs[i] && !g.HasEdge(us[i], vs[i]) {
					if err := g.AddEdge(us[i], vs[i], KindGeometric); err != nil {
						return false
					}
				}
			}
			maxSize := 0
			for _, c := range g.Components() {
				maxSize = max(maxSize, len(c))
			}

			res := g.Prune()
			if g.NumNodes() != maxSize || !g.IsConnected() || g.Validate() != nil {
				return false
			}
			seen := make(map[int]bool)
			for _, newID := range res.Remap {
				if newID < 0 {
					continue
				}
				if newID >= maxSize || seen[newID] {
					return false
				}
				seen[newID] = true
			}
			return len(seen) == maxSize
		},
		gen.SliceOfN(20, gen.IntRange(0, n-1)),
		gen.SliceOfN(20, gen.IntRange(0, n-1)),
	))

	properties.TestingRun(t)
}
