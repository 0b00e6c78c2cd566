package topology

import (
	"fmt"
	"sort"

	"github.com/netsim/topogen/internal/location"
)

// Node is a graph vertex. ID is the node's position in the graph arena; it starts
// equal to Location.ID and diverges after pruning compacts the ID space.
type Node struct {
	ID       int               `json:"id"`
	Location location.Location `json:"location"`
}

// Graph is an undirected simple graph. Nodes are addressed by ID in [0, N).
type Graph struct {
	nodes []Node
	edges map[EdgeKey]Edge
	adj   []map[int]struct{}
}

// New returns a graph with one node per location and no edges.
func New(locs []location.Location) *Graph {
	g := &Graph{
		nodes: make([]Node, len(locs)),
		edges: make(map[EdgeKey]Edge),
		adj:   make([]map[int]struct{}, len(locs)),
	}
	for i, l := range locs {
		g.nodes[i] = Node{ID: i, Location: l}
		g.adj[i] = make(map[int]struct{})
	}
	return g
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id int) Node {
	return g.nodes[id]
}

// Nodes returns a copy of the nodes in ID order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// AddEdge inserts an edge weighted by the great-circle distance between its
// endpoints.
func (g *Graph) AddEdge(u, v int, kind Kind) error {
	if err := validateEndpoints(u, v, len(g.nodes)); err != nil {
		return err
	}
	if !validKind(kind) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	key := Key(u, v)
	if _, ok := g.edges[key]; ok {
		return fmt.Errorf("%w: (%d, %d)", ErrDuplicateEdge, key.U, key.V)
	}
	g.edges[key] = Edge{
		U:        key.U,
		V:        key.V,
		WeightKm: g.nodes[u].Location.DistanceKm(g.nodes[v].Location),
		Kind:     kind,
	}
	g.adj[u][v] = struct{}{}
	g.adj[v][u] = struct{}{}
	return nil
}

// RemoveEdge deletes the edge between u and v and reports whether it existed.
func (g *Graph) RemoveEdge(u, v int) bool {
	key := Key(u, v)
	if _, ok := g.edges[key]; !ok {
		return false
	}
	delete(g.edges, key)
	delete(g.adj[u], v)
	delete(g.adj[v], u)
	return true
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v int) bool {
	_, ok := g.edges[Key(u, v)]
	return ok
}

// Edge returns the edge between u and v.
func (g *Graph) Edge(u, v int) (Edge, bool) {
	e, ok := g.edges[Key(u, v)]
	return e, ok
}

// SetKind re-tags an existing edge.
func (g *Graph) SetKind(u, v int, kind Kind) error {
	if !validKind(kind) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	key := Key(u, v)
	e, ok := g.edges[key]
	if !ok {
		return fmt.Errorf("%w: (%d, %d) not present", ErrUnknownNode, key.U, key.V)
	}
	e.Kind = kind
	g.edges[key] = e
	return nil
}

// Edges returns every edge sorted by (U, V).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].U != out[j].U {
			return out[i].U < out[j].U
		}
		return out[i].V < out[j].V
	})
	return out
}

// EdgeCountByKind tallies edges per kind.
func (g *Graph) EdgeCountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range g.edges {
		counts[e.Kind]++
	}
	return counts
}

// Degree returns the number of neighbours of id.
func (g *Graph) Degree(id int) int {
	return len(g.adj[id])
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes: make([]Node, len(g.nodes)),
		edges: make(map[EdgeKey]Edge, len(g.edges)),
		adj:   make([]map[int]struct{}, len(g.adj)),
	}
	copy(c.nodes, g.nodes)
	for k, e := range g.edges {
		c.edges[k] = e
	}
	for i, nb := range g.adj {
		c.adj[i] = make(map[int]struct{}, len(nb))
		for n := range nb {
			c.adj[i][n] = struct{}{}
		}
	}
	return c
}

// Validate checks the structural invariants: node IDs match positions, edge
// endpoints exist and differ, and adjacency agrees with the edge set.
func (g *Graph) Validate() error {
	for i, n := range g.nodes {
		if n.ID != i {
			return fmt.Errorf("node at position %d has id %d", i, n.ID)
		}
	}
	degreeSum := 0
	for key, e := range g.edges {
		if e.Key() != key || e.U > e.V {
			return fmt.Errorf("edge (%d, %d) stored under key (%d, %d)", e.U, e.V, key.U, key.V)
		}
		if err := validateEndpoints(e.U, e.V, len(g.nodes)); err != nil {
			return err
		}
		if _, ok := g.adj[e.U][e.V]; !ok {
			return fmt.Errorf("edge (%d, %d) missing from adjacency", e.U, e.V)
		}
	}
	for _, nb := range g.adj {
		degreeSum += len(nb)
	}
	if degreeSum != 2*len(g.edges) {
		return fmt.Errorf("adjacency holds %d half-edges for %d edges", degreeSum, len(g.edges))
	}
	return nil
}
