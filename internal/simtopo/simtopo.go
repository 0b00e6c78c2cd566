// Package simtopo places externally supplied simulation nodes onto the final
// topology.
package simtopo

import (
	"errors"
	"fmt"
	"math"

	"github.com/netsim/topogen/internal/importer"
	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/topology"
)

// ErrEmptyTopology is returned when there is no node to attach to.
var ErrEmptyTopology = errors.New("topology has no nodes")

// Attachment binds a simulation node to its nearest topology node.
type Attachment struct {
	SimID      int     `json:"sim_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	NodeID     int     `json:"node_id"`
	DistanceKm float64 `json:"distance_km"`
}

// Attach finds, for every simulation node, the closest node of g by great-circle
// distance. Ties go to the lower node ID. The graph is not modified.
func Attach(g *topology.Graph, nodes []importer.SimNode) ([]Attachment, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	if g.NumNodes() == 0 {
		return nil, fmt.Errorf("attaching %d simulation nodes: %w", len(nodes), ErrEmptyTopology)
	}

	graphNodes := g.Nodes()
	seen := make(map[int]bool, len(nodes))
	out := make([]Attachment, 0, len(nodes))
	for _, sn := range nodes {
		if seen[sn.ID] {
			return nil, fmt.Errorf("%w: duplicate simulation node id %d", importer.ErrMalformed, sn.ID)
		}
		seen[sn.ID] = true
		loc := location.New(sn.Lat, sn.Lon, location.RoleSimulation)
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: simulation node %d: %v", importer.ErrMalformed, sn.ID, err)
		}

		best, bestDist := -1, math.Inf(1)
		for _, n := range graphNodes {
			d := loc.DistanceKm(n.Location)
			if d < bestDist {
				best, bestDist = n.ID, d
			}
		}
		out = append(out, Attachment{
			SimID:      sn.ID,
			Latitude:   sn.Lat,
			Longitude:  sn.Lon,
			NodeID:     best,
			DistanceKm: bestDist,
		})
	}
	return out, nil
}
