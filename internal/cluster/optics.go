package cluster

import (
	"container/heap"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/golang/geo/s1"

	"github.com/netsim/topogen/internal/geo"
	"github.com/netsim/topogen/internal/location"
)

// Undefined marks a missing core or reachability distance.
var Undefined = s1.Angle(math.Inf(1))

// OrderedPoint is one entry of a cluster ordering.
type OrderedPoint struct {
	Index    int      // position in the input slice
	CoreDist s1.Angle // Undefined when the point is not a core point
	Reach    s1.Angle // Undefined for the first point of each traversal
}

// Ordering is the OPTICS visit order of every input point.
type Ordering []OrderedPoint

// Order computes the OPTICS ordering of points. The seed fixes the start-point
// order and the tie-break between equally reachable seeds.
func Order(points []location.Location, p Params, seed uint64) (Ordering, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := len(points)
	if n == 0 {
		return Ordering{}, nil
	}

	lats := make([]float64, n)
	lons := make([]float64, n)
	for i, pt := range points {
		lats[i], lons[i] = pt.Lat, pt.Lon
	}
	index := geo.NewBandIndex(lats, lons)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	visit := rng.Perm(n)
	rank := make([]int, n)
	for pos, i := range visit {
		rank[i] = pos
	}

	o := &optics{
		params:    p,
		index:     index,
		processed: make([]bool, n),
		reach:     make([]s1.Angle, n),
		seeds:     &seedHeap{rank: rank, pos: make([]int, n)},
		ordering:  make(Ordering, 0, n),
	}
	for i := range o.reach {
		o.reach[i] = Undefined
		o.seeds.pos[i] = -1
	}
	o.seeds.reach = o.reach

	for _, start := range visit {
		if o.processed[start] {
			continue
		}
		o.expand(start)
		for o.seeds.Len() > 0 {
			next := heap.Pop(o.seeds).(int)
			o.expand(next)
		}
	}
	return o.ordering, nil
}

type optics struct {
	params    Params
	index     *geo.BandIndex
	processed []bool
	reach     []s1.Angle
	seeds     *seedHeap
	ordering  Ordering
}

func (o *optics) expand(i int) {
	neighbors := o.index.Within(i, o.params.Eps)
	o.processed[i] = true
	core := coreDistance(neighbors, o.params.MinPts)
	o.ordering = append(o.ordering, OrderedPoint{Index: i, CoreDist: core, Reach: o.reach[i]})
	if core == Undefined {
		return
	}
	for _, nb := range neighbors {
		if o.processed[nb.Index] {
			continue
		}
		r := max(core, nb.Distance)
		switch {
		case o.reach[nb.Index] == Undefined:
			o.reach[nb.Index] = r
			heap.Push(o.seeds, nb.Index)
		case r < o.reach[nb.Index]:
			o.reach[nb.Index] = r
			heap.Fix(o.seeds, o.seeds.pos[nb.Index])
		}
	}
}

// coreDistance is the distance to the minPts-th closest neighbour, the point itself
// included.
func coreDistance(neighbors []geo.Neighbor, minPts int) s1.Angle {
	if len(neighbors) < minPts {
		return Undefined
	}
	d := make([]float64, len(neighbors))
	for i, nb := range neighbors {
		d[i] = float64(nb.Distance)
	}
	sort.Float64s(d)
	return s1.Angle(d[minPts-1])
}

// seedHeap is an indexed min-heap of point indices ordered by reachability, then by
// random rank.
type seedHeap struct {
	items []int
	reach []s1.Angle
	rank  []int
	pos   []int // heap position of each point, -1 when absent
}

func (h *seedHeap) Len() int { return len(h.items) }

func (h *seedHeap) Less(a, b int) bool {
	i, j := h.items[a], h.items[b]
	if h.reach[i] != h.reach[j] {
		return h.reach[i] < h.reach[j]
	}
	return h.rank[i] < h.rank[j]
}

func (h *seedHeap) Swap(a, b int) {
	h.items[a], h.items[b] = h.items[b], h.items[a]
	h.pos[h.items[a]] = a
	h.pos[h.items[b]] = b
}

func (h *seedHeap) Push(x any) {
	i := x.(int)
	h.pos[i] = len(h.items)
	h.items = append(h.items, i)
}

func (h *seedHeap) Pop() any {
	last := len(h.items) - 1
	i := h.items[last]
	h.items = h.items[:last]
	h.pos[i] = -1
	return i
}
