// Package viz renders a topology as an interactive Cytoscape.js page.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a topology node.
type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"` // location role

	// Display
	Label string `json:"label"`

	// Tooltip fields
	Country    string  `json:"country,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Population int64   `json:"population,omitempty"`

	// Sizing
	Degree int `json:"degree"`
}

// Edge is a topology link.
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Kind     string  `json:"kind"`
	WeightKm float64 `json:"weightKm"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
