// Package domain holds the core allocation types shared across modules.
// It is pure: no infrastructure dependencies.
package domain

import "time"

// WeightTolerance is the floating tolerance applied to the sum-to-one
// invariant on optimized weight vectors.
const WeightTolerance = 1e-6

// AssetConstraint bounds the optimized weight of a single asset.
// min == max pins the asset's weight.
type AssetConstraint struct {
	Asset string  `json:"asset"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Pinned reports whether the constraint fixes the weight to a single value.
func (c AssetConstraint) Pinned() bool {
	return c.Min == c.Max
}

// ShortPosition is a fixed negative allocation. Short positions are never
// part of the optimized vector: they contribute to portfolio returns and
// metrics only, and do not count toward the long-weight sum constraint.
type ShortPosition struct {
	Asset  string  `json:"asset"`
	Weight float64 `json:"weight"` // in [-1, 0]
}

// Window bounds the temporal train/validation split. Start..End (inclusive)
// is the in-sample segment used for optimization; (End..AnalysisEnd] is the
// out-of-sample segment evaluated with the fixed weights. AnalysisEnd nil
// means no out-of-sample evaluation is requested.
type Window struct {
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	AnalysisEnd *time.Time `json:"analysis_end,omitempty"`
}

// Portfolio is the outcome of one optimization request. It is immutable
// once produced; a new request produces a new Portfolio.
type Portfolio struct {
	RunID          string             `json:"run_id"`
	Weights        map[string]float64 `json:"weights"` // optimized long weights, sum == 1
	Shorts         []ShortPosition    `json:"shorts,omitempty"`
	Objective      string             `json:"objective"`
	ObjectiveValue float64            `json:"objective_value"`
	Constraints    []AssetConstraint  `json:"constraints,omitempty"`
}
