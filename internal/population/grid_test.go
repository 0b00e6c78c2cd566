package population

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsim/topogen/internal/location"
)

const sampleGrid = `ncols 4
nrows 2
xllcorner 0
yllcorner 0
cellsize 1
NODATA_value -9999
1 2 3 4
10 20 -9999 40
`

func TestReadGrid(t *testing.T) {
	g, err := ReadGrid(strings.NewReader(sampleGrid))
	require.NoError(t, err)
	assert.Equal(t, 4, g.Cols)
	assert.Equal(t, 2, g.Rows)

	tests := []struct {
		name     string
		lat, lon float64
		want     float64
		ok       bool
	}{
		{"north west", 1.5, 0.5, 1, true},
		{"south west", 0.5, 0.5, 10, true},
		{"south east", 0.2, 3.9, 40, true},
		{"nodata", 0.5, 2.5, 0, false},
		{"outside", 5, 5, 0, false},
		{"east edge", 1.5, 4, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.DensityAt(tt.lat, tt.lon)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadGridCenterRegistration(t *testing.T) {
	in := strings.Replace(strings.Replace(sampleGrid, "xllcorner 0", "xllcenter 0.5", 1), "yllcorner 0", "yllcenter 0.5", 1)
	g, err := ReadGrid(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.MinLon)
	assert.Equal(t, 0.0, g.MinLat)
}

func TestReadGridMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing ncols", "nrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n1\n"},
		{"missing registration", "ncols 1\nnrows 1\ncellsize 1\n1\n"},
		{"short data", "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n"},
		{"bad value", "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\nabc\n"},
		{"bad header", "ncols 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGrid(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestLoadGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "density.asc")
	require.NoError(t, os.WriteFile(path, []byte(sampleGrid), 0644))

	g, err := LoadGrid(path)
	require.NoError(t, err)
	assert.Equal(t, 8, len(g.values))

	_, err = LoadGrid(filepath.Join(t.TempDir(), "missing.asc"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDensityAlong(t *testing.T) {
	g, err := ReadGrid(strings.NewReader(sampleGrid))
	require.NoError(t, err)

	a := location.New(0.5, 0.5, location.RoleCity)
	b := location.New(0.5, 1.5, location.RoleCity)
	assert.InDelta(t, 15, g.DensityAlong(a, b, 2), 1e-9)

	c := location.New(0.5, 2.5, location.RoleCity)
	assert.InDelta(t, 10, g.DensityAlong(a, c, 3), 1e-6, "nodata cells count as zero")
}

func TestAnnotate(t *testing.T) {
	g, err := ReadGrid(strings.NewReader(sampleGrid))
	require.NoError(t, err)

	locs := []location.Location{
		location.New(1.5, 1.5, location.RoleCity),
		location.New(50, 50, location.RoleCity),
	}
	assert.Equal(t, 1, g.Annotate(locs))
	require.NotNil(t, locs[0].Density)
	assert.Equal(t, 2.0, *locs[0].Density)
	assert.Nil(t, locs[1].Density)
}

func TestEndpointSampler(t *testing.T) {
	d := 100.0
	a := location.New(0, 0, location.RoleCity)
	a.Density = &d
	b := location.New(1, 1, location.RoleCity)

	assert.Equal(t, 50.0, EndpointSampler{}.DensityAlong(a, b, 10))
}
