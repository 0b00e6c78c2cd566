package geo

import (
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
)

// PlanarIndex answers x-range queries over a fixed set of planar points.
type PlanarIndex struct {
	points []r2.Point
	order  []int // point indices sorted by X
}

// NewPlanarIndex indexes points by their X coordinate.
func NewPlanarIndex(points []r2.Point) *PlanarIndex {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return points[order[a]].X < points[order[b]].X
	})
	return &PlanarIndex{points: points, order: order}
}

// Point returns the indexed point i.
func (x *PlanarIndex) Point(i int) r2.Point {
	return x.points[i]
}

// Len returns the number of indexed points.
func (x *PlanarIndex) Len() int {
	return len(x.points)
}

// InRange calls fn for every point whose X lies in [minX, maxX]. Iteration stops
// when fn returns false.
func (x *PlanarIndex) InRange(minX, maxX float64, fn func(i int) bool) {
	start := sort.Search(len(x.order), func(k int) bool {
		return x.points[x.order[k]].X >= minX
	})
	for k := start; k < len(x.order); k++ {
		i := x.order[k]
		if x.points[i].X > maxX {
			return
		}
		if !fn(i) {
			return
		}
	}
}

// Neighbor is a point found by a BandIndex query.
type Neighbor struct {
	Index    int
	Distance s1.Angle
}

// BandIndex answers great-circle radius queries. Points are sorted by latitude so a
// query only inspects the latitude band that can contain matches; the angular
// difference in latitude never exceeds the great-circle angle.
type BandIndex struct {
	lats  []float64
	lons  []float64
	order []int
}

// NewBandIndex indexes coordinates given in degrees.
func NewBandIndex(lats, lons []float64) *BandIndex {
	order := make([]int, len(lats))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lats[order[a]] < lats[order[b]]
	})
	return &BandIndex{lats: lats, lons: lons, order: order}
}

// Within returns every indexed point at most radius away from point i, including
// i itself, ordered by index.
func (b *BandIndex) Within(i int, radius s1.Angle) []Neighbor {
	lat, lon := b.lats[i], b.lons[i]
	band := radius.Degrees()
	start := sort.Search(len(b.order), func(k int) bool {
		return b.lats[b.order[k]] >= lat-band
	})

	var out []Neighbor
	for k := start; k < len(b.order); k++ {
		j := b.order[k]
		if b.lats[j] > lat+band {
			break
		}
		d := Angle(lat, lon, b.lats[j], b.lons[j])
		if d <= radius {
			out = append(out, Neighbor{Index: j, Distance: d})
		}
	}
	sort.Slice(out, func(x, y int) bool { return out[x].Index < out[y].Index })
	return out
}
