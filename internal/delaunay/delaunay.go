// Package delaunay builds planar Delaunay triangulations and the initial topology
// graph derived from them.
package delaunay

import (
	"errors"
	"fmt"
	"sort"

	"github.com/golang/geo/r2"

	"github.com/netsim/topogen/internal/geo"
)

// ErrDegenerate is returned when no triangulation exists for the input.
var ErrDegenerate = errors.New("degenerate point set")

// Triangle holds three point indices in counter-clockwise order.
type Triangle [3]int

// Triangulation is a Delaunay triangulation of Points.
type Triangulation struct {
	Points    []r2.Point
	Triangles []Triangle
	Flips     int // edge flips performed to reach the Delaunay condition
}

type edgeKey struct{ a, b int }

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Triangulate computes the Delaunay triangulation of points. It needs at least three
// distinct, non-collinear points.
func Triangulate(points []r2.Point) (*Triangulation, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 points, got %d", ErrDegenerate, len(points))
	}
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := points[order[i]], points[order[j]]
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	for k := 1; k < len(order); k++ {
		if points[order[k]] == points[order[k-1]] {
			return nil, fmt.Errorf("%w: points %d and %d coincide", ErrDegenerate, order[k-1], order[k])
		}
	}

	t := &Triangulation{Points: points}
	if err := t.sweep(order); err != nil {
		return nil, err
	}
	if err := t.legalize(); err != nil {
		return nil, err
	}
	return t, nil
}

// sweep inserts points in lexicographic order, fanning each new point to the hull
// edges it can see. The result is a valid triangulation of the convex hull.
func (t *Triangulation) sweep(order []int) error {
	p := t.Points

	// first point off the line through the first two
	k := 2
	for k < len(order) && geo.Orient2D(p[order[0]], p[order[1]], p[order[k]]) == 0 {
		k++
	}
	if k == len(order) {
		return fmt.Errorf("%w: all points are collinear", ErrDegenerate)
	}
	apex := order[k]
	chain := order[:k]

	var hull []int
	if geo.Orient2D(p[chain[0]], p[chain[1]], p[apex]) > 0 {
		for i := 0; i+1 < len(chain); i++ {
			t.Triangles = append(t.Triangles, Triangle{chain[i], chain[i+1], apex})
		}
		hull = append(hull, chain...)
		hull = append(hull, apex)
	} else {
		for i := 0; i+1 < len(chain); i++ {
			t.Triangles = append(t.Triangles, Triangle{chain[i+1], chain[i], apex})
		}
		for i := len(chain) - 1; i >= 0; i-- {
			hull = append(hull, chain[i])
		}
		hull = append(hull, apex)
	}

	for _, q := range order[k+1:] {
		var err error
		hull, err = t.addToHull(hull, q)
		if err != nil {
			return err
		}
	}
	return nil
}

// addToHull connects q to every hull edge that has q strictly on its outer side and
// returns the updated counter-clockwise hull.
func (t *Triangulation) addToHull(hull []int, q int) ([]int, error) {
	m := len(hull)
	visible := make([]bool, m)
	for i := range hull {
		a, b := hull[i], hull[(i+1)%m]
		visible[i] = geo.Orient2D(t.Points[a], t.Points[b], t.Points[q]) < 0
	}

	start := -1
	for i := range visible {
		if visible[i] && !visible[(i+m-1)%m] {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: point %d sees no hull edge", ErrDegenerate, q)
	}

	end := start
	for visible[end%m] {
		a, b := hull[end%m], hull[(end+1)%m]
		t.Triangles = append(t.Triangles, Triangle{b, a, q})
		end++
	}

	// new hull: hull[start], q, hull[end], ..., back to hull[start]
	next := make([]int, 0, m+1)
	next = append(next, hull[start], q)
	for i := end; i%m != start; i++ {
		next = append(next, hull[i%m])
	}
	return next, nil
}

// legalize flips edges until every interior edge is locally Delaunay.
func (t *Triangulation) legalize() error {
	edges := make(map[edgeKey][2]int)
	for id, tri := range t.Triangles {
		for i := 0; i < 3; i++ {
			k := keyOf(tri[i], tri[(i+1)%3])
			pair, ok := edges[k]
			if !ok {
				pair = [2]int{-1, -1}
			}
			if pair[0] < 0 {
				pair[0] = id
			} else {
				pair[1] = id
			}
			edges[k] = pair
		}
	}

	stack := make([]edgeKey, 0, len(edges))
	for k, pair := range edges {
		if pair[1] >= 0 {
			stack = append(stack, k)
		}
	}
	// map iteration order is random; flips must not depend on it
	sort.Slice(stack, func(i, j int) bool {
		if stack[i].a != stack[j].a {
			return stack[i].a < stack[j].a
		}
		return stack[i].b < stack[j].b
	})

	n := len(t.Points)
	limit := n*n + 1024
	replace := func(k edgeKey, from, to int) {
		pair := edges[k]
		if pair[0] == from {
			pair[0] = to
		} else if pair[1] == from {
			pair[1] = to
		}
		edges[k] = pair
	}

	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pair, ok := edges[k]
		if !ok || pair[0] < 0 || pair[1] < 0 {
			continue
		}
		t1, t2 := pair[0], pair[1]

		// orient t1 as (x, y, c) so that x->y is the shared edge
		c := opposite(t.Triangles[t1], k)
		x, y := rotateTo(t.Triangles[t1], c)
		d := opposite(t.Triangles[t2], k)

		px, py, pc, pd := t.Points[x], t.Points[y], t.Points[c], t.Points[d]
		if geo.InCircle(px, py, pc, pd) <= 0 {
			continue
		}

		t.Flips++
		if t.Flips > limit {
			return fmt.Errorf("%w: edge flipping did not converge", ErrDegenerate)
		}

		t.Triangles[t1] = Triangle{x, d, c}
		t.Triangles[t2] = Triangle{d, y, c}
		delete(edges, k)
		edges[keyOf(d, c)] = [2]int{t1, t2}
		replace(keyOf(x, d), t2, t1)
		replace(keyOf(y, c), t1, t2)

		stack = append(stack, keyOf(x, d), keyOf(d, y), keyOf(y, c), keyOf(c, x))
	}
	return nil
}

// opposite returns the vertex of tri not on edge k.
func opposite(tri Triangle, k edgeKey) int {
	for _, v := range tri {
		if v != k.a && v != k.b {
			return v
		}
	}
	return -1
}

// rotateTo returns the two vertices preceding c in the counter-clockwise cycle of
// tri, so that (x, y, c) is a rotation of tri.
func rotateTo(tri Triangle, c int) (x, y int) {
	for i := 0; i < 3; i++ {
		if tri[(i+2)%3] == c {
			return tri[i], tri[(i+1)%3]
		}
	}
	return -1, -1
}

// Edges returns the unique triangulation edges as index pairs (a < b), sorted.
func (t *Triangulation) Edges() [][2]int {
	seen := make(map[edgeKey]struct{}, 3*len(t.Triangles))
	out := make([][2]int, 0, 3*len(t.Triangles)/2+3)
	for _, tri := range t.Triangles {
		for i := 0; i < 3; i++ {
			k := keyOf(tri[i], tri[(i+1)%3])
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, [2]int{k.a, k.b})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}
