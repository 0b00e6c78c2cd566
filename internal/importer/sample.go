package importer

import (
	"math/rand/v2"
	"sort"

	"github.com/netsim/topogen/internal/location"
)

// SampleCities picks n cities uniformly at random using seed. The sample keeps the
// relative order of the input. n <= 0 or n >= len(cities) returns every city.
func SampleCities(cities []location.Location, n int, seed uint64) []location.Location {
	if n <= 0 || n >= len(cities) {
		out := make([]location.Location, len(cities))
		copy(out, cities)
		return out
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	picked := rng.Perm(len(cities))[:n]
	sort.Ints(picked)

	out := make([]location.Location, n)
	for i, idx := range picked {
		out[i] = cities[idx]
	}
	return out
}
