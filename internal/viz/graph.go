package viz

import (
	"fmt"

	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/topology"
)

// BuildGraph converts a topology into visualization data.
func BuildGraph(g *topology.Graph) *GraphData {
	nodes := make([]Node, 0, g.NumNodes())
	for _, n := range g.Nodes() {
		nodes = append(nodes, newNode(n, g.Degree(n.ID)))
	}

	edges := make([]Edge, 0, g.NumEdges())
	for _, e := range g.Edges() {
		edges = append(edges, Edge{
			Source:   nodeID(e.U),
			Target:   nodeID(e.V),
			Kind:     string(e.Kind),
			WeightKm: e.WeightKm,
		})
	}

	return &GraphData{Nodes: nodes, Edges: edges}
}

func newNode(n topology.Node, degree int) Node {
	label := n.Location.Name
	if label == "" && n.Location.Role != location.RoleWaypoint {
		label = fmt.Sprintf("#%d", n.ID)
	}
	return Node{
		ID:         nodeID(n.ID),
		Type:       string(n.Location.Role),
		Label:      label,
		Country:    n.Location.Country,
		Latitude:   n.Location.Lat,
		Longitude:  n.Location.Lon,
		Population: n.Location.Population,
		Degree:     degree,
	}
}

// nodeID prefixes numeric IDs; Cytoscape.js selectors reject bare numbers.
func nodeID(id int) string {
	return fmt.Sprintf("n%d", id)
}
