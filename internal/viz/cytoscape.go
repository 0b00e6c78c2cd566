package viz

import (
	"encoding/json"
	"fmt"
)

// geoScale is the number of canvas pixels per degree in the geographic layout.
const geoScale = 8.0

// CytoscapeElements represents the Cytoscape.js data format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode represents a node in Cytoscape.js format.
type CytoscapeNode struct {
	Data     Node      `json:"data"`
	Position *Position `json:"position,omitempty"`
}

// Position is a preset canvas position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CytoscapeEdge represents an edge in Cytoscape.js format.
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData contains the edge data fields.
type CytoscapeEdgeData struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Kind     string  `json:"kind"`
	WeightKm float64 `json:"weightKm"`
}

// geoPosition places a node by longitude and latitude, north up.
func geoPosition(n Node) *Position {
	return &Position{X: n.Longitude * geoScale, Y: -n.Latitude * geoScale}
}

// ToCytoscapeJSON converts GraphData to Cytoscape.js JSON format. With positioned
// set, every node carries its geographic position for the preset layout.
func (g *GraphData) ToCytoscapeJSON(positioned bool) (string, error) {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(g.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		cn := CytoscapeNode{Data: n}
		if positioned {
			cn.Position = geoPosition(n)
		}
		elements.Nodes = append(elements.Nodes, cn)
	}

	for _, e := range g.Edges {
		elements.Edges = append(elements.Edges, CytoscapeEdge{
			Data: CytoscapeEdgeData{
				ID:       edgeID(e.Source, e.Target),
				Source:   e.Source,
				Target:   e.Target,
				Kind:     e.Kind,
				WeightKm: e.WeightKm,
			},
		})
	}

	jsonBytes, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// edgeID is stable because the graph holds at most one edge per node pair.
func edgeID(source, target string) string {
	return source + "-" + target
}
