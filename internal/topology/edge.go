// Package topology holds the network graph built by the pipeline: an arena of nodes
// indexed by contiguous integer IDs and a set of undirected weighted edges.
package topology

import (
	"errors"
	"fmt"
)

// Kind tells how an edge entered the graph.
type Kind string

// Edge kinds.
const (
	KindGeometric   Kind = "geometric"
	KindGroundTruth Kind = "ground_truth"
)

// Edge is an undirected link between two nodes. U is always the smaller ID.
type Edge struct {
	U        int     `json:"u"`
	V        int     `json:"v"`
	WeightKm float64 `json:"weight_km"`
	Kind     Kind    `json:"kind"`
}

// Validation errors.
var (
	ErrSelfLoop      = errors.New("edge endpoints must differ")
	ErrUnknownNode   = errors.New("edge references unknown node")
	ErrDuplicateEdge = errors.New("edge already exists")
	ErrUnknownKind   = errors.New("unknown edge kind")
)

// Key returns the identity of this edge.
func (e Edge) Key() EdgeKey {
	return Key(e.U, e.V)
}

// EdgeKey is the identity of an undirected edge: the ordered pair (min, max).
type EdgeKey struct {
	U int
	V int
}

// Key orders a pair of endpoints.
func Key(a, b int) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{U: a, V: b}
}

// validateEndpoints checks an edge against a graph of n nodes.
func validateEndpoints(u, v, n int) error {
	if u == v {
		return fmt.Errorf("%w: %d", ErrSelfLoop, u)
	}
	if u < 0 || u >= n {
		return fmt.Errorf("%w: %d", ErrUnknownNode, u)
	}
	if v < 0 || v >= n {
		return fmt.Errorf("%w: %d", ErrUnknownNode, v)
	}
	return nil
}

func validKind(k Kind) bool {
	return k == KindGeometric || k == KindGroundTruth
}
