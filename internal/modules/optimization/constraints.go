package optimization

import (
	"github.com/aristath/frontier/internal/domain"
)

// Bounds is the box-constraint set handed to the solver: one [min, max]
// interval per optimizable asset, index-aligned with Assets. The single
// equality constraint (weights sum to 1) is implied and enforced by the
// solver's penalty term plus post-processing.
type Bounds struct {
	Assets []string
	Min    []float64
	Max    []float64
}

// BuildBounds derives per-asset bounds from the global limits plus any
// per-asset overrides, and validates feasibility before the solver sees
// them. Assets with an override where min == max are pinned.
func BuildBounds(assets []string, globalMin, globalMax float64, overrides []domain.AssetConstraint) (*Bounds, error) {
	if globalMin < 0 || globalMax > 1 || globalMin > globalMax {
		return nil, domain.Errorf(domain.KindInfeasibleConstraints,
			"global bounds [%.4f, %.4f] outside 0 <= min <= max <= 1", globalMin, globalMax)
	}

	overrideByAsset := make(map[string]domain.AssetConstraint, len(overrides))
	for _, c := range overrides {
		overrideByAsset[c.Asset] = c
	}

	b := &Bounds{
		Assets: assets,
		Min:    make([]float64, len(assets)),
		Max:    make([]float64, len(assets)),
	}
	seen := make(map[string]bool, len(assets))
	for i, asset := range assets {
		seen[asset] = true
		lower, upper := globalMin, globalMax
		if c, ok := overrideByAsset[asset]; ok {
			lower, upper = c.Min, c.Max
		}
		if lower < 0 || upper > 1 || lower > upper {
			return nil, &domain.Error{
				Kind:    domain.KindInfeasibleConstraints,
				Message: "asset bounds outside 0 <= min <= max <= 1",
				Asset:   asset,
			}
		}
		b.Min[i] = lower
		b.Max[i] = upper
	}

	for _, c := range overrides {
		if !seen[c.Asset] {
			return nil, &domain.Error{
				Kind:    domain.KindInfeasibleConstraints,
				Message: "constraint names an asset that is not optimizable",
				Asset:   c.Asset,
			}
		}
	}

	minSum, maxSum := 0.0, 0.0
	for i := range b.Min {
		minSum += b.Min[i]
		maxSum += b.Max[i]
	}
	if minSum > 1 {
		return nil, domain.Errorf(domain.KindInfeasibleConstraints,
			"minimum weights sum to %.4f, exceeding 1", minSum)
	}
	if maxSum < 1 {
		return nil, domain.Errorf(domain.KindInfeasibleConstraints,
			"maximum weights sum to %.4f, below 1", maxSum)
	}
	return b, nil
}

// PinnedMass returns the total weight claimed by pinned assets (min == max).
func (b *Bounds) PinnedMass() float64 {
	mass := 0.0
	for i := range b.Min {
		if b.Min[i] == b.Max[i] {
			mass += b.Min[i]
		}
	}
	return mass
}
