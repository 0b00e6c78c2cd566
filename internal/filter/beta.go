// Package filter removes geometrically or demographically implausible edges from a
// triangulated topology. Filters only ever delete edges.
package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"github.com/netsim/topogen/internal/geo"
	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/topology"
)

// ErrInvalidBeta is returned for a non-positive or non-finite shape parameter.
var ErrInvalidBeta = errors.New("beta must be a positive finite number")

// lune membership is tested on closed disks with this relative slack
const luneTolerance = 1e-9

type disk struct {
	center r2.Point
	radius float64
}

func (d disk) contains(p r2.Point) bool {
	return p.Sub(d.center).Norm() <= d.radius*(1+luneTolerance)
}

// lune returns the two disks whose intersection is the beta-skeleton region of the
// segment uv.
func lune(u, v r2.Point, beta float64) (disk, disk) {
	d := v.Sub(u).Norm()
	if beta >= 1 {
		r := beta * d / 2
		return disk{center: u.Add(v.Sub(u).Mul(beta / 2)), radius: r},
			disk{center: v.Add(u.Sub(v).Mul(beta / 2)), radius: r}
	}
	r := d / (2 * beta)
	mid := u.Add(v).Mul(0.5)
	h := math.Sqrt(math.Max(r*r-d*d/4, 0))
	normal := v.Sub(u).Ortho().Normalize()
	return disk{center: mid.Add(normal.Mul(h)), radius: r},
		disk{center: mid.Sub(normal.Mul(h)), radius: r}
}

// BetaResult reports what BetaSkeleton did.
type BetaResult struct {
	Examined int
	Removed  int
}

// BetaSkeleton removes every geometric edge whose lune contains a third node. Only
// triangulated nodes act as witnesses; waypoints and ground-truth edges are
// ignored.
func BetaSkeleton(g *topology.Graph, beta float64) (BetaResult, error) {
	if beta <= 0 || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return BetaResult{}, fmt.Errorf("%w: %v", ErrInvalidBeta, beta)
	}

	nodes := g.Nodes()
	points := make([]r2.Point, len(nodes))
	witness := make([]bool, len(nodes))
	for i, n := range nodes {
		points[i] = geo.Project(n.Location.Lat, n.Location.Lon)
		witness[i] = n.Location.Role != location.RoleWaypoint
	}
	index := geo.NewPlanarIndex(points)

	var res BetaResult
	var doomed []topology.EdgeKey
	for _, e := range g.Edges() {
		if e.Kind == topology.KindGroundTruth {
			continue
		}
		res.Examined++
		d1, d2 := lune(points[e.U], points[e.V], beta)
		minX := math.Max(d1.center.X-d1.radius, d2.center.X-d2.radius)
		maxX := math.Min(d1.center.X+d1.radius, d2.center.X+d2.radius)

		blocked := false
		index.InRange(minX-luneTolerance, maxX+luneTolerance, func(w int) bool {
			if w == e.U || w == e.V || !witness[w] {
				return true
			}
			if d1.contains(points[w]) && d2.contains(points[w]) {
				blocked = true
				return false
			}
			return true
		})
		if blocked {
			doomed = append(doomed, e.Key())
		}
	}

	for _, k := range doomed {
		g.RemoveEdge(k.U, k.V)
	}
	res.Removed = len(doomed)
	return res, nil
}
