package geo

import (
	"fmt"
	"sort"
	"strings"
)

// Region restricts diagnostics to part of the globe.
type Region interface {
	Name() string
	Contains(lat, lon float64) bool
}

// Box is a latitude/longitude bounding box. A box whose MinLon is greater than its
// MaxLon wraps across the antimeridian.
type Box struct {
	Label  string
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Name returns the region label.
func (b Box) Name() string {
	return b.Label
}

// Contains reports whether the coordinate lies inside the box (inclusive).
func (b Box) Contains(lat, lon float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.MinLon <= b.MaxLon {
		return lon >= b.MinLon && lon <= b.MaxLon
	}
	return lon >= b.MinLon || lon <= b.MaxLon
}

// Named regions available without configuration.
var (
	ContinentalUS = Box{Label: "us", MinLat: 24.52, MaxLat: 49.38, MinLon: -124.77, MaxLon: -66.95}
	Europe        = Box{Label: "europe", MinLat: 34.5, MaxLat: 71.2, MinLon: -25.0, MaxLon: 45.0}
)

var builtinRegions = map[string]Region{
	"us":     ContinentalUS,
	"europe": Europe,
}

// LookupRegion resolves a region name. "world" and "" resolve to a nil Region,
// meaning no restriction. Extra regions take precedence over the built-in ones.
func LookupRegion(name string, extra map[string]Box) (Region, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "world" {
		return nil, nil
	}
	if b, ok := extra[key]; ok {
		if b.Label == "" {
			b.Label = key
		}
		return b, nil
	}
	if r, ok := builtinRegions[key]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("unknown region %q (known: %s)", name, strings.Join(RegionNames(extra), ", "))
}

// RegionNames lists every resolvable region name, sorted.
func RegionNames(extra map[string]Box) []string {
	names := []string{"world"}
	for k := range builtinRegions {
		names = append(names, k)
	}
	for k := range extra {
		if _, dup := builtinRegions[k]; !dup {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
