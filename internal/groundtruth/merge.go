package groundtruth

import (
	"fmt"

	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/topology"
)

// MergeOptions controls how cable data joins the location set.
type MergeOptions struct {
	MergeDistanceKm float64 // landing points this close to a location reuse it
	SnapDistanceKm  float64 // cable ends this close to a landing point attach to it
}

// Link is a ground-truth connection between two store positions.
type Link struct {
	A     int
	B     int
	Cable string
}

// MergeResult summarises a merge.
type MergeResult struct {
	Links          []Link
	LandingPoints  int // landing points added as new locations
	ReusedLocation int // landing points merged into an existing location
	Waypoints      int
	Cables         int
	SnappedEnds    int
	UnsnappedEnds  int // line ends with no landing point in reach, kept as waypoints
}

// Merge adds landing points and cable waypoints to store and returns the links
// between them. It must run before identity assignment. Link endpoints are store
// positions, which become node IDs once the store is frozen.
func Merge(store *location.Store, ds *Dataset, opts MergeOptions) (MergeResult, error) {
	var res MergeResult
	if store.Frozen() {
		return res, fmt.Errorf("merging cables: %w", location.ErrFrozen)
	}
	if opts.MergeDistanceKm < 0 || opts.SnapDistanceKm < 0 {
		return res, fmt.Errorf("merging cables: negative distance in %+v", opts)
	}

	existing := newCellIndex(opts.MergeDistanceKm)
	for i := 0; i < store.Len(); i++ {
		l := store.At(i)
		existing.insert(i, Coord{Lat: l.Lat, Lon: l.Lon})
	}

	landing := newCellIndex(opts.SnapDistanceKm)
	for _, lp := range ds.LandingPoints {
		pos, _, ok := existing.nearest(lp.At)
		if ok {
			res.ReusedLocation++
		} else {
			l := location.New(lp.At.Lat, lp.At.Lon, location.RoleLandingPoint)
			l.Name = lp.Name
			var err error
			if pos, err = store.Add(l); err != nil {
				return res, fmt.Errorf("landing point %s: %w", lp.ID, err)
			}
			existing.insert(pos, lp.At)
			res.LandingPoints++
		}
		at := store.At(pos)
		landing.insert(pos, Coord{Lat: at.Lat, Lon: at.Lon})
	}

	waypoints := make(map[Coord]int)
	waypoint := func(c Coord, name string) (int, error) {
		if pos, ok := waypoints[c]; ok {
			return pos, nil
		}
		l := location.New(c.Lat, c.Lon, location.RoleWaypoint)
		l.Name = name
		pos, err := store.Add(l)
		if err != nil {
			return 0, err
		}
		waypoints[c] = pos
		res.Waypoints++
		return pos, nil
	}

	seen := make(map[topology.EdgeKey]bool)
	for _, cable := range ds.Cables {
		res.Cables++
		for _, line := range cable.Lines {
			if len(line) < 2 {
				continue
			}
			chain := make([]int, 0, len(line))
			for i, c := range line {
				end := i == 0 || i == len(line)-1
				if end {
					if pos, _, ok := landing.nearest(c); ok {
						res.SnappedEnds++
						chain = append(chain, pos)
						continue
					}
					res.UnsnappedEnds++
				}
				pos, err := waypoint(c, cable.Name)
				if err != nil {
					return res, fmt.Errorf("cable %s: %w", cable.ID, err)
				}
				chain = append(chain, pos)
			}
			for i := 1; i < len(chain); i++ {
				a, b := chain[i-1], chain[i]
				k := topology.Key(a, b)
				if a == b || seen[k] {
					continue
				}
				seen[k] = true
				res.Links = append(res.Links, Link{A: a, B: b, Cable: cable.ID})
			}
		}
	}
	return res, nil
}

// AugmentResult summarises an augmentation.
type AugmentResult struct {
	Added    int
	Retagged int // geometric edges that coincide with a cable segment
}

// Augment inserts the links as ground-truth edges. It runs after the geometric
// filters so that they never see these edges.
func Augment(g *topology.Graph, links []Link) (AugmentResult, error) {
	var res AugmentResult
	for _, l := range links {
		if l.A == l.B {
			continue
		}
		if e, ok := g.Edge(l.A, l.B); ok {
			if e.Kind != topology.KindGroundTruth {
				if err := g.SetKind(l.A, l.B, topology.KindGroundTruth); err != nil {
					return res, err
				}
				res.Retagged++
			}
			continue
		}
		if err := g.AddEdge(l.A, l.B, topology.KindGroundTruth); err != nil {
			return res, fmt.Errorf("cable %s: %w", l.Cable, err)
		}
		res.Added++
	}
	return res, nil
}
