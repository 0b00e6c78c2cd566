package filter

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsim/topogen/internal/delaunay"
	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/population"
	"github.com/netsim/topogen/internal/topology"
)

func triangulated(t *testing.T, locs ...location.Location) *topology.Graph {
	t.Helper()
	store := location.NewStore(locs...)
	require.NoError(t, store.AssignIDs())
	g, _, err := delaunay.BuildGraph(store)
	require.NoError(t, err)
	return g
}

func edgeSet(g *topology.Graph) map[topology.EdgeKey]bool {
	set := make(map[topology.EdgeKey]bool)
	for _, e := range g.Edges() {
		set[e.Key()] = true
	}
	return set
}

func TestBetaSkeletonUnitSquare(t *testing.T) {
	g := triangulated(t,
		location.New(0, 0, location.RoleCity),
		location.New(0, 1, location.RoleCity),
		location.New(1, 1, location.RoleCity),
		location.New(1, 0, location.RoleCity),
	)
	require.Equal(t, 5, g.NumEdges())

	res, err := BetaSkeleton(g, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Examined)
	assert.Equal(t, 1, res.Removed)

	assert.Equal(t, 4, g.NumEdges())
	for id := 0; id < 4; id++ {
		assert.Equal(t, 2, g.Degree(id), "node %d should sit on a 4-cycle", id)
	}
	assert.False(t, g.HasEdge(0, 2))
	assert.False(t, g.HasEdge(1, 3))
}

func TestBetaSkeletonInvalidBeta(t *testing.T) {
	g := topology.New(nil)
	for _, beta := range []float64{0, -1} {
		_, err := BetaSkeleton(g, beta)
		assert.ErrorIs(t, err, ErrInvalidBeta)
	}
}

func TestBetaSkeletonIgnoresWaypointsAndGroundTruth(t *testing.T) {
	locs := []location.Location{
		location.New(0, 0, location.RoleCity),
		location.New(0, 2, location.RoleCity),
		location.New(0.01, 1, location.RoleWaypoint),
		location.New(0, 1, location.RoleCity),
	}
	g := topology.New(locs)
	require.NoError(t, g.AddEdge(0, 1, topology.KindGeometric))
	require.NoError(t, g.AddEdge(0, 2, topology.KindGroundTruth))

	res, err := BetaSkeleton(g, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Examined)
	assert.Equal(t, 1, res.Removed, "city 3 lies on the segment")
	assert.True(t, g.HasEdge(0, 2))

	g2 := topology.New(locs[:3])
	require.NoError(t, g2.AddEdge(0, 1, topology.KindGeometric))
	res, err = BetaSkeleton(g2, 1)
	require.NoError(t, err)
	assert.Zero(t, res.Removed, "waypoints never block an edge")
}

func TestLuneShapes(t *testing.T) {
	u, v := r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}

	d1, d2 := lune(u, v, 1)
	assert.Equal(t, d1, d2, "gabriel lune is the diametral disk")
	assert.InDelta(t, 1, d1.radius, 1e-12)

	d1, d2 = lune(u, v, 2)
	assert.InDelta(t, 2, d1.radius, 1e-12)
	assert.InDelta(t, 2, d1.center.X, 1e-12)
	assert.InDelta(t, 0, d2.center.X, 1e-12)

	d1, d2 = lune(u, v, 0.5)
	assert.InDelta(t, 2, d1.radius, 1e-12)
	assert.True(t, d1.contains(u) && d1.contains(v))
	assert.True(t, d2.contains(u) && d2.contains(v))
	assert.InDelta(t, -d1.center.Y, d2.center.Y, 1e-12)
}

func TestBetaSkeletonSubsetProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("skeleton edges are triangulation edges and shrink with beta", prop.ForAll(
		func(lats, lons []float64) bool {
			var locs []location.Location
			for i := 0; i < len(lats) && i < len(lons); i++ {
				locs = append(locs, location.New(lats[i], lons[i], location.RoleCity))
			}
			store := location.NewStore(locs...)
			if store.AssignIDs() != nil {
				return false
			}
			g, _, err := delaunay.BuildGraph(store)
			if err != nil {
				return true
			}
			tri := edgeSet(g)

			gabriel := g.Clone()
			if _, err := BetaSkeleton(gabriel, 1); err != nil {
				return false
			}
			wide := g.Clone()
			if _, err := BetaSkeleton(wide, 2); err != nil {
				return false
			}

			gab := edgeSet(gabriel)
			for k := range gab {
				if !tri[k] {
					return false
				}
			}
			for k := range edgeSet(wide) {
				if !gab[k] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(25, gen.Float64Range(-60, 60)),
		gen.SliceOfN(25, gen.Float64Range(-170, 170)),
	))

	properties.TestingRun(t)
}

func TestDensityLengthSubsetProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("density filter only removes geometric skeleton edges", prop.ForAll(
		func(lats, lons, densities, offsets, lengths []float64) bool {
			var locs []location.Location
			for i := 0; i < len(lats) && i < len(lons) && i < len(densities); i++ {
				l := location.New(lats[i], lons[i], location.RoleCity)
				d := densities[i]
				l.Density = &d
				locs = append(locs, l)
			}
			store := location.NewStore(locs...)
			if store.AssignIDs() != nil {
				return false
			}
			g, _, err := delaunay.BuildGraph(store)
			if err != nil {
				return true
			}
			if _, err := BetaSkeleton(g, 1); err != nil {
				return false
			}
			for i, e := range g.Edges() {
				if i%3 == 0 {
					if g.SetKind(e.U, e.V, topology.KindGroundTruth) != nil {
						return false
					}
				}
			}
			before := g.Edges()
			skeleton := edgeSet(g)

			var rules []LengthRule
			for i := 0; i < len(offsets) && i < len(lengths); i++ {
				rules = append(rules, LengthRule{MinDensity: float64(i)*500 + offsets[i], MaxLengthKm: lengths[i]})
			}
			res, err := DensityLength(g, population.EndpointSampler{}, rules, 4)
			if err != nil {
				return false
			}

			after := edgeSet(g)
			for k := range after {
				if !skeleton[k] {
					return false
				}
			}
			for _, e := range before {
				if e.Kind == topology.KindGroundTruth && !after[e.Key()] {
					return false
				}
			}
			return len(skeleton)-len(after) == res.Removed
		},
		gen.SliceOfN(25, gen.Float64Range(-60, 60)),
		gen.SliceOfN(25, gen.Float64Range(-170, 170)),
		gen.SliceOfN(25, gen.Float64Range(0, 2000)),
		gen.SliceOfN(3, gen.Float64Range(0, 499)),
		gen.SliceOfN(3, gen.Float64Range(50, 3000)),
	))

	properties.TestingRun(t)
}

type fixedSampler map[topology.EdgeKey]float64

func (f fixedSampler) DensityAlong(a, b location.Location, _ int) float64 {
	return f[topology.Key(a.ID, b.ID)]
}

func TestDensityLength(t *testing.T) {
	locs := []location.Location{
		location.New(0, 0, location.RoleCity),
		location.New(0, 1, location.RoleCity),  // ~111 km from 0
		location.New(0, 5, location.RoleCity),  // ~445 km from 1
		location.New(0, 10, location.RoleCity), // ~556 km from 2
	}
	for i := range locs {
		locs[i].ID = i
	}
	g := topology.New(locs)
	require.NoError(t, g.AddEdge(0, 1, topology.KindGeometric))
	require.NoError(t, g.AddEdge(1, 2, topology.KindGeometric))
	require.NoError(t, g.AddEdge(2, 3, topology.KindGroundTruth))
	require.NoError(t, g.AddEdge(0, 3, topology.KindGeometric))

	sampler := fixedSampler{
		topology.Key(0, 1): 500, // dense: capped at 200 km, kept
		topology.Key(1, 2): 120, // medium: capped at 300 km, removed
		topology.Key(2, 3): 500, // ground truth, untouched
		topology.Key(0, 3): 1,   // below every rule, kept
	}
	rules := []LengthRule{
		{MinDensity: 300, MaxLengthKm: 200},
		{MinDensity: 100, MaxLengthKm: 300},
	}

	before := edgeSet(g)
	res, err := DensityLength(g, sampler, rules, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Examined)
	assert.Equal(t, 1, res.Removed)
	assert.False(t, g.HasEdge(1, 2))
	assert.True(t, g.HasEdge(2, 3))
	for k := range edgeSet(g) {
		assert.True(t, before[k])
	}
}

func TestDensityLengthRejectsBadRules(t *testing.T) {
	g := topology.New(nil)
	tests := []struct {
		name    string
		rules   []LengthRule
		samples int
	}{
		{"too few samples", []LengthRule{{MinDensity: 0, MaxLengthKm: 10}}, 1},
		{"zero length", []LengthRule{{MinDensity: 0, MaxLengthKm: 0}}, 5},
		{"negative density", []LengthRule{{MinDensity: -1, MaxLengthKm: 10}}, 5},
		{"duplicate density", []LengthRule{{MinDensity: 5, MaxLengthKm: 10}, {MinDensity: 5, MaxLengthKm: 20}}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DensityLength(g, fixedSampler{}, tt.rules, tt.samples)
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestSelectRule(t *testing.T) {
	rules := []LengthRule{{MinDensity: 0, MaxLengthKm: 1000}, {MinDensity: 50, MaxLengthKm: 400}}
	r, ok := selectRule(rules, 49.9)
	require.True(t, ok)
	assert.Equal(t, 1000.0, r.MaxLengthKm)

	r, ok = selectRule(rules, 50)
	require.True(t, ok)
	assert.Equal(t, 400.0, r.MaxLengthKm)

	_, ok = selectRule(rules[1:], 10)
	assert.False(t, ok)
}
