package topology

import (
	"sort"

	"github.com/netsim/topogen/internal/geo"
)

// HighestDegreeNodes returns up to k nodes ordered by degree descending, then ID
// ascending. A nil region considers every node. The graph is not modified.
func (g *Graph) HighestDegreeNodes(k int, region geo.Region) []Node {
	if k <= 0 {
		return nil
	}
	candidates := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if region != nil && !region.Contains(n.Location.Lat, n.Location.Lon) {
			continue
		}
		candidates = append(candidates, n)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := g.Degree(candidates[i].ID), g.Degree(candidates[j].ID)
		if di != dj {
			return di > dj
		}
		return candidates[i].ID < candidates[j].ID
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// DegreeHistogram maps each degree to the number of nodes having it.
func (g *Graph) DegreeHistogram() map[int]int {
	hist := make(map[int]int)
	for id := range g.nodes {
		hist[g.Degree(id)]++
	}
	return hist
}

// DegreeEntry is a node together with its degree.
type DegreeEntry struct {
	Node
	Degree int `json:"degree"`
}

// DegreeReport summarises the degree distribution of a graph.
type DegreeReport struct {
	TopK      int           `json:"top_k"`
	World     []DegreeEntry `json:"world"`
	Region    string        `json:"region,omitempty"`
	InRegion  []DegreeEntry `json:"in_region,omitempty"`
	Histogram map[int]int   `json:"histogram"`
}

// Report collects the k highest-degree nodes worldwide and, when region is not
// nil, inside region.
func (g *Graph) Report(k int, region geo.Region) DegreeReport {
	r := DegreeReport{
		TopK:      k,
		World:     g.entries(g.HighestDegreeNodes(k, nil)),
		Histogram: g.DegreeHistogram(),
	}
	if region != nil {
		r.Region = region.Name()
		r.InRegion = g.entries(g.HighestDegreeNodes(k, region))
	}
	return r
}

func (g *Graph) entries(nodes []Node) []DegreeEntry {
	out := make([]DegreeEntry, len(nodes))
	for i, n := range nodes {
		out[i] = DegreeEntry{Node: n, Degree: g.Degree(n.ID)}
	}
	return out
}
