package groundtruth

import (
	"math"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/netsim/topogen/internal/geo"
)

// geohash cell dimensions in degrees by precision (index 0 = precision 1)
var (
	cellHeight = []float64{45, 5.625, 1.40625, 0.17578125, 0.0439453125, 0.0054931640625}
	cellWidth  = []float64{45, 11.25, 1.40625, 0.3515625, 0.0439453125, 0.010986328125}
)

const (
	kmPerDegree = geo.EarthRadiusKm * math.Pi / 180
	maxSamples  = 4096
)

// cellIndex buckets coordinates by geohash prefix for radius queries.
type cellIndex struct {
	precision int
	radiusKm  float64
	cells     map[string][]int
	coords    []Coord
}

func newCellIndex(radiusKm float64) *cellIndex {
	span := 2 * radiusKm / kmPerDegree
	p := 1
	for p < len(cellHeight) && cellHeight[p] >= span {
		p++
	}
	return &cellIndex{precision: p, radiusKm: radiusKm, cells: make(map[string][]int)}
}

func (x *cellIndex) key(lat, lon float64) string {
	return geohash.Encode(lat, wrapLon(lon))[:x.precision]
}

// insert indexes c under the caller's id.
func (x *cellIndex) insert(id int, c Coord) {
	for len(x.coords) <= id {
		x.coords = append(x.coords, Coord{Lat: math.NaN()})
	}
	x.coords[id] = c
	k := x.key(c.Lat, c.Lon)
	x.cells[k] = append(x.cells[k], id)
}

// nearest returns the closest indexed id within the radius of c. Ties go to the
// lower id.
func (x *cellIndex) nearest(c Coord) (int, float64, bool) {
	dLat := x.radiusKm / kmPerDegree
	cosLat := math.Cos(c.Lat * math.Pi / 180)
	dLon := 180.0
	if cosLat > 1e-6 {
		dLon = math.Min(dLat/cosLat, 180)
	}

	h, w := cellHeight[x.precision-1], cellWidth[x.precision-1]
	lats := samples(c.Lat-dLat, c.Lat+dLat, h)
	lons := samples(c.Lon-dLon, c.Lon+dLon, w)

	best, bestDist := -1, math.Inf(1)
	consider := func(id int) {
		o := x.coords[id]
		d := geo.DistanceKm(c.Lat, c.Lon, o.Lat, o.Lon)
		if d > x.radiusKm {
			return
		}
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}

	// near the poles the box covers too many cells; scan everything
	if len(lats)*len(lons) > maxSamples {
		for _, ids := range x.cells {
			for _, id := range ids {
				consider(id)
			}
		}
		return best, bestDist, best >= 0
	}

	keys := make(map[string]struct{})
	for _, lat := range lats {
		lat = math.Max(-90, math.Min(90, lat))
		for _, lon := range lons {
			keys[x.key(lat, lon)] = struct{}{}
		}
	}
	for k := range keys {
		for _, id := range x.cells[k] {
			consider(id)
		}
	}
	return best, bestDist, best >= 0
}

// samples spreads points over [lo, hi] so that every cell of the given size that
// intersects the interval contains at least one of them.
func samples(lo, hi, cell float64) []float64 {
	n := int(math.Ceil((hi-lo)/cell)) + 1
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func wrapLon(lon float64) float64 {
	for lon < -180 {
		lon += 360
	}
	for lon >= 180 {
		lon -= 360
	}
	return lon
}
