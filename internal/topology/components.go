package topology

import "sort"

// Components returns the connected components. Each component lists its node IDs in
// ascending order; components are ordered by their smallest node ID.
func (g *Graph) Components() [][]int {
	visited := make([]bool, len(g.nodes))
	var components [][]int

	// BFS from each unvisited node in ID order
	for start := range g.nodes {
		if visited[start] {
			continue
		}
		component := []int{}
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			component = append(component, id)
			for n := range g.adj[id] {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		sort.Ints(component)
		components = append(components, component)
	}
	return components
}

// IsConnected reports whether the graph has at most one component.
func (g *Graph) IsConnected() bool {
	return len(g.Components()) <= 1
}

// PruneResult describes what Prune removed.
type PruneResult struct {
	Components   int   // components before pruning
	RemovedNodes int   // nodes outside the kept component
	RemovedEdges int   // edges outside the kept component
	Remap        []int // old ID -> new ID, -1 for removed nodes
}

// Prune keeps only the largest connected component by node count. When several
// components share the maximum size, the one containing the lowest node ID wins.
// Surviving nodes are renumbered to [0, M) in ascending order of their old IDs.
func (g *Graph) Prune() PruneResult {
	components := g.Components()
	res := PruneResult{Components: len(components), Remap: make([]int, len(g.nodes))}
	if len(components) == 0 {
		return res
	}

	// components are ordered by smallest ID, so the first maximum wins ties
	keep := components[0]
	for _, c := range components[1:] {
		if len(c) > len(keep) {
			keep = c
		}
	}

	for i := range res.Remap {
		res.Remap[i] = -1
	}
	nodes := make([]Node, len(keep))
	adj := make([]map[int]struct{}, len(keep))
	for newID, oldID := range keep {
		res.Remap[oldID] = newID
		nodes[newID] = g.nodes[oldID]
		nodes[newID].ID = newID
		adj[newID] = make(map[int]struct{}, len(g.adj[oldID]))
	}

	edges := make(map[EdgeKey]Edge, len(g.edges))
	for _, e := range g.edges {
		u, v := res.Remap[e.U], res.Remap[e.V]
		if u < 0 || v < 0 {
			res.RemovedEdges++
			continue
		}
		key := Key(u, v)
		e.U, e.V = key.U, key.V
		edges[key] = e
		adj[u][v] = struct{}{}
		adj[v][u] = struct{}{}
	}

	res.RemovedNodes = len(g.nodes) - len(keep)
	g.nodes, g.edges, g.adj = nodes, edges, adj
	return res
}
