// Package groundtruth merges known physical links, submarine cables, into the
// location set and the topology graph.
package groundtruth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/netsim/topogen/internal/geo"
	"github.com/netsim/topogen/internal/importer"
)

// ErrMalformed is returned for unreadable cable data.
var ErrMalformed = errors.New("malformed cable data")

// Coord is a coordinate in degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// LandingPoint is a cable landing station.
type LandingPoint struct {
	ID   string
	Name string
	At   Coord
}

// Cable is a cable system; each line is one routed segment.
type Cable struct {
	ID    string
	Name  string
	Color string
	Lines [][]Coord
}

// Dataset is the complete ground-truth input.
type Dataset struct {
	LandingPoints []LandingPoint
	Cables        []Cable
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties struct {
		ID    importer.FlexibleString `json:"id"`
		Name  string                  `json:"name"`
		Color string                  `json:"color"`
	} `json:"properties"`
	Geometry *struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
}

// Load reads landing points and cables from GeoJSON files.
func Load(landingPointsPath, cablesPath string) (*Dataset, error) {
	lf, err := os.Open(landingPointsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening landing points: %w", ErrMalformed, err)
	}
	defer lf.Close()
	points, err := ParseLandingPoints(lf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", landingPointsPath, err)
	}

	cf, err := os.Open(cablesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening cables: %w", ErrMalformed, err)
	}
	defer cf.Close()
	cables, err := ParseCables(cf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cablesPath, err)
	}
	return &Dataset{LandingPoints: points, Cables: cables}, nil
}

func decodeCollection(r io.Reader) (*featureCollection, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: expected FeatureCollection, got %q", ErrMalformed, fc.Type)
	}
	return &fc, nil
}

// ParseLandingPoints reads a GeoJSON FeatureCollection of Point features.
func ParseLandingPoints(r io.Reader) ([]LandingPoint, error) {
	fc, err := decodeCollection(r)
	if err != nil {
		return nil, err
	}
	points := make([]LandingPoint, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil || f.Geometry.Type != "Point" {
			return nil, fmt.Errorf("%w: feature %d: expected Point geometry", ErrMalformed, i)
		}
		var pos []float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &pos); err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", ErrMalformed, i, err)
		}
		c, err := toCoord(pos)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		id := f.Properties.ID.String()
		if id == "" {
			id = fmt.Sprintf("lp-%d", i)
		}
		points = append(points, LandingPoint{ID: id, Name: f.Properties.Name, At: c})
	}
	return points, nil
}

// ParseCables reads a GeoJSON FeatureCollection of LineString or MultiLineString
// features.
func ParseCables(r io.Reader) ([]Cable, error) {
	fc, err := decodeCollection(r)
	if err != nil {
		return nil, err
	}
	cables := make([]Cable, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, fmt.Errorf("%w: feature %d: missing geometry", ErrMalformed, i)
		}
		var raw [][][]float64
		switch f.Geometry.Type {
		case "LineString":
			var line [][]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &line); err != nil {
				return nil, fmt.Errorf("%w: feature %d: %v", ErrMalformed, i, err)
			}
			raw = [][][]float64{line}
		case "MultiLineString":
			if err := json.Unmarshal(f.Geometry.Coordinates, &raw); err != nil {
				return nil, fmt.Errorf("%w: feature %d: %v", ErrMalformed, i, err)
			}
		default:
			return nil, fmt.Errorf("%w: feature %d: unsupported geometry %q", ErrMalformed, i, f.Geometry.Type)
		}

		cable := Cable{ID: f.Properties.ID.String(), Name: f.Properties.Name, Color: f.Properties.Color}
		if cable.ID == "" {
			cable.ID = fmt.Sprintf("cable-%d", i)
		}
		for _, line := range raw {
			coords := make([]Coord, 0, len(line))
			for _, pos := range line {
				c, err := toCoord(pos)
				if err != nil {
					return nil, fmt.Errorf("cable %s: %w", cable.ID, err)
				}
				coords = append(coords, c)
			}
			cable.Lines = append(cable.Lines, coords)
		}
		cables = append(cables, cable)
	}
	return cables, nil
}

// toCoord converts a GeoJSON position [lon, lat, (alt)].
func toCoord(pos []float64) (Coord, error) {
	if len(pos) < 2 {
		return Coord{}, fmt.Errorf("%w: position needs two values, got %d", ErrMalformed, len(pos))
	}
	c := Coord{Lat: pos[1], Lon: pos[0]}
	if !geo.ValidCoordinate(c.Lat, c.Lon) {
		return Coord{}, fmt.Errorf("%w: position (%g, %g) out of range", ErrMalformed, c.Lat, c.Lon)
	}
	return c, nil
}
