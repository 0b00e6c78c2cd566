package filter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/topology"
)

// ErrInvalidRule is returned for an unusable length rule set.
var ErrInvalidRule = errors.New("invalid length rule")

// DensitySampler estimates the mean population density along an edge.
type DensitySampler interface {
	DensityAlong(a, b location.Location, samples int) float64
}

// LengthRule caps the length of edges crossing areas at least MinDensity dense.
type LengthRule struct {
	MinDensity  float64 `yaml:"min_density" json:"min_density" validate:"gte=0"`
	MaxLengthKm float64 `yaml:"max_length_km" json:"max_length_km" validate:"gt=0"`
}

// DensityResult reports what DensityLength did.
type DensityResult struct {
	Examined int
	Removed  int
}

// DensityLength removes geometric edges longer than the rule selected by the mean
// density along them. The selected rule is the one with the largest MinDensity not
// above the mean; edges sparser than every rule are kept.
func DensityLength(g *topology.Graph, sampler DensitySampler, rules []LengthRule, samples int) (DensityResult, error) {
	if samples < 2 {
		return DensityResult{}, fmt.Errorf("%w: need at least 2 samples per edge, got %d", ErrInvalidRule, samples)
	}
	sorted := make([]LengthRule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDensity < sorted[j].MinDensity })
	for i, r := range sorted {
		if r.MaxLengthKm <= 0 || r.MinDensity < 0 {
			return DensityResult{}, fmt.Errorf("%w: %+v", ErrInvalidRule, r)
		}
		if i > 0 && sorted[i-1].MinDensity == r.MinDensity {
			return DensityResult{}, fmt.Errorf("%w: duplicate min_density %g", ErrInvalidRule, r.MinDensity)
		}
	}

	var res DensityResult
	var doomed []topology.EdgeKey
	for _, e := range g.Edges() {
		if e.Kind == topology.KindGroundTruth {
			continue
		}
		res.Examined++
		mean := sampler.DensityAlong(g.Node(e.U).Location, g.Node(e.V).Location, samples)
		rule, ok := selectRule(sorted, mean)
		if ok && e.WeightKm > rule.MaxLengthKm {
			doomed = append(doomed, e.Key())
		}
	}
	for _, k := range doomed {
		g.RemoveEdge(k.U, k.V)
	}
	res.Removed = len(doomed)
	return res, nil
}

// selectRule picks from rules sorted by MinDensity.
func selectRule(rules []LengthRule, density float64) (LengthRule, bool) {
	i := sort.Search(len(rules), func(i int) bool { return rules[i].MinDensity > density })
	if i == 0 {
		return LengthRule{}, false
	}
	return rules[i-1], true
}
