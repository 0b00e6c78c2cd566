// Package population provides population density lookups used to judge whether an
// edge length is plausible for the area it crosses.
package population

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/netsim/topogen/internal/geo"
	"github.com/netsim/topogen/internal/location"
)

// ErrMalformed is returned for unreadable grid files.
var ErrMalformed = errors.New("malformed population grid")

// Grid is a raster of population density (people per km²) in geographic
// coordinates, read from an ESRI ASCII grid.
type Grid struct {
	Cols     int
	Rows     int
	MinLon   float64 // west edge of the raster
	MinLat   float64 // south edge of the raster
	CellSize float64 // degrees
	NoData   float64
	values   []float32 // row-major, north row first
}

// LoadGrid reads an ESRI ASCII grid file.
func LoadGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening population grid: %w", ErrMalformed, err)
	}
	defer f.Close()

	g, err := ReadGrid(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadGrid parses an ESRI ASCII grid. Both corner and centre registration of the
// lower-left cell are accepted; the NODATA_value header is optional.
func ReadGrid(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	header := make(map[string]float64)
	var firstRow []string
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		key := strings.ToLower(fields[0])
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			firstRow = fields
			break
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: bad header line %q", ErrMalformed, scanner.Text())
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: header %s: %v", ErrMalformed, key, err)
		}
		header[key] = v
	}

	g := &Grid{NoData: -9999}
	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[k]; !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformed, k)
		}
	}
	g.Cols, g.Rows, g.CellSize = int(header["ncols"]), int(header["nrows"]), header["cellsize"]
	if g.Cols <= 0 || g.Rows <= 0 || g.CellSize <= 0 {
		return nil, fmt.Errorf("%w: non-positive dimensions", ErrMalformed)
	}
	switch {
	case hasKeys(header, "xllcorner", "yllcorner"):
		g.MinLon, g.MinLat = header["xllcorner"], header["yllcorner"]
	case hasKeys(header, "xllcenter", "yllcenter"):
		g.MinLon, g.MinLat = header["xllcenter"]-g.CellSize/2, header["yllcenter"]-g.CellSize/2
	default:
		return nil, fmt.Errorf("%w: missing lower-left registration", ErrMalformed)
	}
	if v, ok := header["nodata_value"]; ok {
		g.NoData = v
	}

	g.values = make([]float32, 0, g.Cols*g.Rows)
	appendFields := func(fields []string) error {
		for _, s := range fields {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return fmt.Errorf("%w: cell %d: %v", ErrMalformed, len(g.values), err)
			}
			g.values = append(g.values, float32(v))
		}
		return nil
	}
	if err := appendFields(firstRow); err != nil {
		return nil, err
	}
	for scanner.Scan() {
		if err := appendFields(strings.Fields(scanner.Text())); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading population grid: %w", err)
	}
	if len(g.values) != g.Cols*g.Rows {
		return nil, fmt.Errorf("%w: expected %d cells, found %d", ErrMalformed, g.Cols*g.Rows, len(g.values))
	}
	return g, nil
}

func hasKeys(m map[string]float64, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// DensityAt returns the density of the cell containing the coordinate. ok is false
// outside the raster or on NODATA cells.
func (g *Grid) DensityAt(lat, lon float64) (float64, bool) {
	col := int(math.Floor((lon - g.MinLon) / g.CellSize))
	rowFromSouth := int(math.Floor((lat - g.MinLat) / g.CellSize))
	if col == g.Cols && lon == g.MinLon+float64(g.Cols)*g.CellSize {
		col--
	}
	if rowFromSouth == g.Rows && lat == g.MinLat+float64(g.Rows)*g.CellSize {
		rowFromSouth--
	}
	if col < 0 || col >= g.Cols || rowFromSouth < 0 || rowFromSouth >= g.Rows {
		return 0, false
	}
	row := g.Rows - 1 - rowFromSouth
	v := float64(g.values[row*g.Cols+col])
	if v == g.NoData || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// DensityAlong averages the density at samples evenly spaced points of the
// great-circle arc from a to b, endpoints included. Cells without data count as
// unpopulated.
func (g *Grid) DensityAlong(a, b location.Location, samples int) float64 {
	if samples < 2 {
		samples = 2
	}
	var sum float64
	for i := 0; i < samples; i++ {
		f := float64(i) / float64(samples-1)
		lat, lon := geo.Interpolate(a.Lat, a.Lon, b.Lat, b.Lon, f)
		if d, ok := g.DensityAt(lat, lon); ok {
			sum += d
		}
	}
	return sum / float64(samples)
}

// Annotate sets the Density of every location that falls on a data cell.
func (g *Grid) Annotate(locs []location.Location) int {
	n := 0
	for i := range locs {
		if d, ok := g.DensityAt(locs[i].Lat, locs[i].Lon); ok {
			locs[i].Density = &d
			n++
		}
	}
	return n
}
