package geo

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{"same point", 52.52, 13.40, 52.52, 13.40, 0, 1e-9},
		{"quarter meridian", 0, 0, 90, 0, math.Pi / 2 * EarthRadiusKm, 1e-6},
		{"berlin to paris", 52.5200, 13.4050, 48.8566, 2.3522, 877.5, 5},
		{"across antimeridian", 0, 179.5, 0, -179.5, math.Pi / 180 * EarthRadiusKm, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.tolerance)
		})
	}
}

func TestKmAngleRoundTrip(t *testing.T) {
	for _, km := range []float64{0, 1, 250, 1000, 20000} {
		assert.InDelta(t, km, AngleToKm(KmToAngle(km)), 1e-9)
	}
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(0, 0))
	assert.True(t, ValidCoordinate(-90, 180))
	assert.False(t, ValidCoordinate(91, 0))
	assert.False(t, ValidCoordinate(0, -181))
	assert.False(t, ValidCoordinate(math.NaN(), 0))
}

func TestInterpolate(t *testing.T) {
	lat, lon := Interpolate(0, 0, 0, 90, 0.5)
	assert.InDelta(t, 0, lat, 1e-9)
	assert.InDelta(t, 45, lon, 1e-9)

	lat, lon = Interpolate(10, 20, 30, 40, 0)
	assert.InDelta(t, 10, lat, 1e-9)
	assert.InDelta(t, 20, lon, 1e-9)
}

func TestOrient2D(t *testing.T) {
	a, b := r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}
	assert.Greater(t, Orient2D(a, b, r2.Point{X: 0, Y: 1}), 0.0)
	assert.Less(t, Orient2D(a, b, r2.Point{X: 0, Y: -1}), 0.0)
	assert.Equal(t, 0.0, Orient2D(a, b, r2.Point{X: 5, Y: 0}))
}

func TestInCircle(t *testing.T) {
	a, b, c := r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0, Y: 1}
	assert.Greater(t, InCircle(a, b, c, r2.Point{X: 0.5, Y: 0.5}), 0.0)
	assert.Less(t, InCircle(a, b, c, r2.Point{X: 3, Y: 3}), 0.0)
	assert.Equal(t, 0.0, InCircle(a, b, c, r2.Point{X: 1, Y: 1}), "unit square corners are cocircular")
}

func TestBoxContains(t *testing.T) {
	assert.True(t, ContinentalUS.Contains(39.74, -104.99), "Denver")
	assert.False(t, ContinentalUS.Contains(52.52, 13.40), "Berlin")

	pacific := Box{Label: "pacific", MinLat: -60, MaxLat: 60, MinLon: 150, MaxLon: -120}
	assert.True(t, pacific.Contains(0, 170))
	assert.True(t, pacific.Contains(0, -150))
	assert.False(t, pacific.Contains(0, 0))
}

func TestLookupRegion(t *testing.T) {
	r, err := LookupRegion("world", nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = LookupRegion("US", nil)
	require.NoError(t, err)
	assert.Equal(t, "us", r.Name())

	extra := map[string]Box{"alps": {MinLat: 45, MaxLat: 48, MinLon: 5, MaxLon: 16}}
	r, err = LookupRegion("alps", extra)
	require.NoError(t, err)
	assert.Equal(t, "alps", r.Name())

	_, err = LookupRegion("atlantis", extra)
	assert.Error(t, err)
}

func TestPlanarIndexInRange(t *testing.T) {
	idx := NewPlanarIndex([]r2.Point{{X: 3}, {X: -1}, {X: 2}, {X: 10}})
	var got []int
	idx.InRange(0, 5, func(i int) bool {
		got = append(got, i)
		return true
	})
	assert.ElementsMatch(t, []int{0, 2}, got)
}

func TestBandIndexWithin(t *testing.T) {
	lats := []float64{0, 0, 0, 45}
	lons := []float64{0, 0.5, 3, 0}
	idx := NewBandIndex(lats, lons)

	got := idx.Within(0, KmToAngle(100))
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
	assert.Zero(t, got[0].Distance)
}
