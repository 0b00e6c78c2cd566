package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/simtopo"
	"github.com/netsim/topogen/internal/topology"
)

// Metadata identifies a run.
type Metadata struct {
	Generator   string `json:"generator"`
	RunID       string `json:"run_id"`
	Seed        uint64 `json:"seed"`
	InputDigest string `json:"input_digest"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	CableEdges  int    `json:"cable_edges"`
}

// Node is a graph node as written to JSON.
type Node struct {
	ID         int           `json:"id"`
	Name       string        `json:"name,omitempty"`
	Country    string        `json:"country,omitempty"`
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	Role       location.Role `json:"role"`
	Population int64         `json:"population,omitempty"`
	Degree     int           `json:"degree"`
}

// Document is the JSON interchange form of a generated topology.
type Document struct {
	Metadata        Metadata               `json:"metadata"`
	Nodes           []Node                 `json:"nodes"`
	Edges           []topology.Edge        `json:"edges"`
	SimulationNodes []simtopo.Attachment   `json:"simulation_nodes,omitempty"`
	Diagnostics     *topology.DegreeReport `json:"diagnostics,omitempty"`
}

// NewDocument assembles a Document. meta's counts are filled from g.
func NewDocument(g *topology.Graph, meta Metadata, sims []simtopo.Attachment, diag *topology.DegreeReport) *Document {
	meta.Generator = "topogen"
	meta.Nodes = g.NumNodes()
	meta.Edges = g.NumEdges()
	meta.CableEdges = g.EdgeCountByKind()[topology.KindGroundTruth]

	nodes := make([]Node, 0, g.NumNodes())
	for _, n := range g.Nodes() {
		nodes = append(nodes, Node{
			ID:         n.ID,
			Name:       n.Location.Name,
			Country:    n.Location.Country,
			Latitude:   n.Location.Lat,
			Longitude:  n.Location.Lon,
			Role:       n.Location.Role,
			Population: n.Location.Population,
			Degree:     g.Degree(n.ID),
		})
	}
	return &Document{
		Metadata:        meta,
		Nodes:           nodes,
		Edges:           g.Edges(),
		SimulationNodes: sims,
		Diagnostics:     diag,
	}
}

// JSONOptions controls JSON encoding.
type JSONOptions struct {
	Pretty   bool
	Compress bool
}

// WriteJSON encodes doc, optionally inside a snappy framed stream.
func WriteJSON(w io.Writer, doc *Document, opts JSONOptions) error {
	var sw *snappy.Writer
	if opts.Compress {
		sw = snappy.NewBufferedWriter(w)
		w = sw
	}

	enc := json.NewEncoder(w)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	if sw != nil {
		if err := sw.Close(); err != nil {
			return fmt.Errorf("flushing snappy stream: %w", err)
		}
	}
	return nil
}

// ReadJSON decodes a document written by WriteJSON.
func ReadJSON(r io.Reader, compressed bool) (*Document, error) {
	if compressed {
		r = snappy.NewReader(r)
	}
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	return &doc, nil
}
