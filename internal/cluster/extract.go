package cluster

import (
	"github.com/golang/geo/s1"

	"github.com/netsim/topogen/internal/location"
)

// Noise is the cluster label of points that belong to no cluster.
const Noise = -1

// Extract labels every point of the ordering with a cluster number or Noise, cutting
// the reachability plot at threshold. Labels are indexed like the input points.
func Extract(ord Ordering, threshold s1.Angle) []int {
	labels := make([]int, len(ord))
	current := Noise
	next := 0
	for _, op := range ord {
		if op.Reach > threshold {
			if op.CoreDist <= threshold {
				current = next
				next++
				labels[op.Index] = current
			} else {
				current = Noise
				labels[op.Index] = Noise
			}
			continue
		}
		labels[op.Index] = current
	}
	return labels
}

// Result is the outcome of one clustering pass.
type Result struct {
	Locations []location.Location
	Clusters  int // number of clusters collapsed
	Noise     int // points kept because they belong to no cluster
}

// Filter runs one clustering pass: each cluster collapses to a single
// representative, noise points are kept unchanged. Survivors keep their relative
// input order.
func Filter(points []location.Location, p Params, seed uint64) (Result, error) {
	ord, err := Order(points, p, seed)
	if err != nil {
		return Result{}, err
	}
	labels := Extract(ord, p.ExtractEps)

	type group struct {
		rep        int // input index of the representative
		population int64
	}
	groups := make(map[int]*group)
	var res Result
	for _, op := range ord {
		label := labels[op.Index]
		if label == Noise {
			res.Noise++
			continue
		}
		g, ok := groups[label]
		pop := points[op.Index].Population
		if !ok {
			groups[label] = &group{rep: op.Index, population: pop}
			continue
		}
		g.population += pop
		if pop > points[g.rep].Population {
			g.rep = op.Index
		}
	}
	res.Clusters = len(groups)

	reps := make(map[int]int64, len(groups)) // input index -> summed population
	for _, g := range groups {
		reps[g.rep] = g.population
	}
	res.Locations = make([]location.Location, 0, res.Noise+len(groups))
	for i, pt := range points {
		if labels[i] == Noise {
			res.Locations = append(res.Locations, pt)
			continue
		}
		if sum, ok := reps[i]; ok {
			rep := pt
			rep.Role = p.Role
			rep.Population = sum
			res.Locations = append(res.Locations, rep)
		}
	}
	return res, nil
}
