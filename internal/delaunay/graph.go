package delaunay

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/netsim/topogen/internal/geo"
	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/topology"
)

// BuildGraph creates the initial topology: one node per stored location and one
// geometric edge per triangulation edge. Waypoints become nodes but take no part in
// the triangulation; their edges come from ground-truth augmentation.
func BuildGraph(store *location.Store) (*topology.Graph, *Triangulation, error) {
	if !store.Frozen() {
		return nil, nil, fmt.Errorf("building graph: %w", location.ErrNotFrozen)
	}
	locs := store.All()

	var (
		points []r2.Point
		ids    []int // triangulation index -> location ID
	)
	for _, l := range locs {
		if l.Role == location.RoleWaypoint {
			continue
		}
		points = append(points, geo.Project(l.Lat, l.Lon))
		ids = append(ids, l.ID)
	}

	tri, err := Triangulate(points)
	if err != nil {
		return nil, nil, fmt.Errorf("triangulating %d locations: %w", len(points), err)
	}

	g := topology.New(locs)
	for _, e := range tri.Edges() {
		if err := g.AddEdge(ids[e[0]], ids[e[1]], topology.KindGeometric); err != nil {
			return nil, nil, fmt.Errorf("adding triangulation edge: %w", err)
		}
	}
	return g, tri, nil
}
