// Package cluster reduces dense groups of locations to single representatives using
// an OPTICS ordering and a DBSCAN-style extraction at a fixed threshold.
package cluster

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s1"

	"github.com/netsim/topogen/internal/geo"
	"github.com/netsim/topogen/internal/location"
)

// ExtractRatio is the extraction threshold as a fraction of the ordering radius.
const ExtractRatio = 0.8

// ErrInvalidParams is returned for unusable clustering parameters.
var ErrInvalidParams = errors.New("invalid clustering parameters")

// Params configures one clustering pass. Eps and ExtractEps are central angles.
type Params struct {
	Eps        s1.Angle
	MinPts     int
	ExtractEps s1.Angle
	Role       location.Role // role given to cluster representatives
}

// ParamsFromKm builds parameters from a surface distance in kilometres.
func ParamsFromKm(maxDistanceKm float64, minPts int, role location.Role) Params {
	eps := geo.KmToAngle(maxDistanceKm)
	return Params{
		Eps:        eps,
		MinPts:     minPts,
		ExtractEps: s1.Angle(ExtractRatio * float64(eps)),
		Role:       role,
	}
}

// Validate rejects parameters the ordering cannot run with.
func (p Params) Validate() error {
	switch {
	case p.MinPts < 1:
		return fmt.Errorf("%w: min_pts must be at least 1, got %d", ErrInvalidParams, p.MinPts)
	case p.Eps <= 0:
		return fmt.Errorf("%w: eps must be positive, got %v", ErrInvalidParams, p.Eps)
	case p.ExtractEps <= 0 || p.ExtractEps >= p.Eps:
		return fmt.Errorf("%w: extraction threshold %v must lie in (0, %v)", ErrInvalidParams, p.ExtractEps, p.Eps)
	}
	return nil
}
