// Package location defines the geographic points fed into the topology pipeline and
// the ordered store that assigns them stable identities.
package location

import (
	"errors"
	"fmt"

	"github.com/netsim/topogen/internal/geo"
)

// Role tags where a location came from.
type Role string

// Location roles.
const (
	RoleCity         Role = "city"
	RoleMetropolis   Role = "metropolis"
	RoleLandingPoint Role = "landing_point"
	RoleWaypoint     Role = "waypoint"
	RoleSimulation   Role = "simulation"
)

// Unassigned is the ID of a location before identity assignment.
const Unassigned = -1

// Location is a geographic point.
type Location struct {
	ID         int      `json:"id"`
	Name       string   `json:"name,omitempty"`
	Country    string   `json:"country,omitempty"`
	Lat        float64  `json:"latitude"`
	Lon        float64  `json:"longitude"`
	Role       Role     `json:"role"`
	Population int64    `json:"population,omitempty"`
	Density    *float64 `json:"density,omitempty"` // people per km²
}

// Validation errors.
var (
	ErrFrozen            = errors.New("location store is frozen")
	ErrNotFrozen         = errors.New("location ids not assigned")
	ErrInvalidCoordinate = errors.New("coordinate out of range")
)

// New returns an unassigned location with the given role.
func New(lat, lon float64, role Role) Location {
	return Location{ID: Unassigned, Lat: lat, Lon: lon, Role: role}
}

// Validate checks the coordinate ranges.
func (l Location) Validate() error {
	if !geo.ValidCoordinate(l.Lat, l.Lon) {
		return fmt.Errorf("%w: (%g, %g)", ErrInvalidCoordinate, l.Lat, l.Lon)
	}
	return nil
}

// DistanceKm returns the great-circle distance to o.
func (l Location) DistanceKm(o Location) float64 {
	return geo.DistanceKm(l.Lat, l.Lon, o.Lat, o.Lon)
}

// IsGroundTruth reports whether the location was introduced by known physical links.
func (l Location) IsGroundTruth() bool {
	return l.Role == RoleLandingPoint || l.Role == RoleWaypoint
}
