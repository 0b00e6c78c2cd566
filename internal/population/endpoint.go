package population

import "github.com/netsim/topogen/internal/location"

// EndpointSampler estimates edge density from the endpoint locations alone. It is
// used when no grid is configured; locations without a density count as zero.
type EndpointSampler struct{}

// DensityAlong returns the mean of the two endpoint densities.
func (EndpointSampler) DensityAlong(a, b location.Location, _ int) float64 {
	return (densityOf(a) + densityOf(b)) / 2
}

func densityOf(l location.Location) float64 {
	if l.Density == nil {
		return 0
	}
	return *l.Density
}
