// Package geo holds the geometric primitives shared by the topology pipeline:
// great-circle distances on the Earth sphere, the planar projection used for
// triangulation, and floating-point predicates with error bounds.
package geo

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the sphere radius used for every angle <-> kilometre conversion.
const EarthRadiusKm = 6371.000785

// LatLng returns the s2 representation of a coordinate pair given in degrees.
func LatLng(lat, lon float64) s2.LatLng {
	return s2.LatLngFromDegrees(lat, lon)
}

// Angle returns the great-circle angle between two coordinates given in degrees.
func Angle(lat1, lon1, lat2, lon2 float64) s1.Angle {
	return LatLng(lat1, lon1).Distance(LatLng(lat2, lon2))
}

// DistanceKm returns the great-circle distance between two coordinates in kilometres.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return AngleToKm(Angle(lat1, lon1, lat2, lon2))
}

// KmToAngle converts a surface distance to the angle it subtends at the Earth's centre.
func KmToAngle(km float64) s1.Angle {
	return s1.Angle(km / EarthRadiusKm)
}

// AngleToKm converts a central angle to a surface distance.
func AngleToKm(a s1.Angle) float64 {
	return a.Radians() * EarthRadiusKm
}

// ValidCoordinate reports whether lat and lon are finite and within degree ranges.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Interpolate returns the coordinate at fraction f of the great-circle arc from
// (lat1, lon1) to (lat2, lon2).
func Interpolate(lat1, lon1, lat2, lon2, f float64) (float64, float64) {
	a := s2.PointFromLatLng(LatLng(lat1, lon1))
	b := s2.PointFromLatLng(LatLng(lat2, lon2))
	ll := s2.LatLngFromPoint(s2.Interpolate(f, a, b))
	return ll.Lat.Degrees(), ll.Lng.Degrees()
}

// Project maps a coordinate to the plane used for triangulation and proximity
// tests: x is longitude and y is latitude, both in degrees.
func Project(lat, lon float64) r2.Point {
	return r2.Point{X: lon, Y: lat}
}
