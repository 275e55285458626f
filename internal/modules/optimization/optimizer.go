// Package optimization turns a return slice, an objective selector and a
// constraint set into an optimized long-weight vector.
//
// The solver is unconstrained under the hood (gonum/optimize), so the two
// constraint families are folded in the standard way: box bounds by
// projection, the sum-to-one equality by a quadratic penalty. Because
// several objectives are non-convex ratios of regression statistics, each
// solve is multi-start: a fixed set of feasible initial vectors is
// evaluated and the best converged result wins. With identical inputs the
// start-point set is identical (seeded generator), so results are
// deterministic.
package optimization

import (
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/objectives"
	"github.com/aristath/frontier/internal/modules/returns"
)

const (
	// DefaultStartPoints is the number of initial weight vectors tried
	// per solve: equal-weight plus randomized feasible points.
	DefaultStartPoints = 8
	// DefaultMaxIterations bounds each start point's solver iterations,
	// which bounds worst-case latency instead of cancellation.
	DefaultMaxIterations = 1000
	// DefaultSeed feeds the randomized start points. Fixed by default so
	// identical inputs produce bit-identical weights.
	DefaultSeed = 42

	// WeightCutoff is the threshold below which a weight is omitted from
	// the significant-weights summary (0.1%).
	WeightCutoff = 0.001

	// penaltyWeight scales the quadratic penalty on the sum-to-one
	// equality constraint.
	penaltyWeight = 1000.0
	// boundTolerance is how far post-processing renormalization may push
	// a weight past its declared bound before the result is rejected.
	boundTolerance = 1e-6
	// invalidObjective is the minimization value substituted when the
	// objective is undefined or non-finite at the evaluated point.
	invalidObjective = 1e18
)

// Config tunes the multi-start policy.
type Config struct {
	StartPoints   int
	MaxIterations int
	Seed          int64
	Workers       int // start points solved concurrently; <= 1 means sequential
}

// Request is one optimization problem: the in-sample slice plus the
// objective selector and constraint inputs.
type Request struct {
	Matrix      *returns.Matrix
	Objective   objectives.Kind
	GlobalMin   float64
	GlobalMax   float64
	Constraints []domain.AssetConstraint
	Shorts      []domain.ShortPosition
}

// Optimizer runs constrained minimization of the negated objective.
type Optimizer struct {
	cfg Config
	log zerolog.Logger
}

// New creates an optimizer, filling zero config fields with defaults.
func New(cfg Config, log zerolog.Logger) *Optimizer {
	if cfg.StartPoints <= 0 {
		cfg.StartPoints = DefaultStartPoints
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Optimizer{
		cfg: cfg,
		log: log.With().Str("component", "optimizer").Logger(),
	}
}

// candidate is the outcome of one start point.
type candidate struct {
	weights   []float64 // post-processed, sums to exactly 1
	objective float64   // maximization value at weights
	converged bool
	err       error
}

// Optimize solves the constrained problem and returns an immutable
// Portfolio. Short positions are excluded from the optimized vector; they
// are folded into every objective evaluation as fixed contributions.
func (o *Optimizer) Optimize(req Request) (*domain.Portfolio, error) {
	m := req.Matrix
	if m.Len() < 2 {
		return nil, domain.Errorf(domain.KindInsufficientData,
			"in-sample slice has %d trading days, need at least 2", m.Len())
	}

	for _, short := range req.Shorts {
		if !m.HasAsset(short.Asset) {
			return nil, &domain.Error{
				Kind:    domain.KindInvalidWeights,
				Message: "short position names an asset that is not in the return matrix",
				Asset:   short.Asset,
			}
		}
		if short.Weight < -1 || short.Weight > 0 {
			return nil, &domain.Error{
				Kind:    domain.KindInvalidWeights,
				Message: "short weight must lie in [-1, 0]",
				Asset:   short.Asset,
			}
		}
	}

	assets := optimizableAssets(m, req.Shorts)
	if len(assets) < 2 {
		return nil, domain.Errorf(domain.KindInfeasibleConstraints,
			"need at least 2 optimizable assets, got %d", len(assets))
	}

	bounds, err := BuildBounds(assets, req.GlobalMin, req.GlobalMax, req.Constraints)
	if err != nil {
		return nil, err
	}

	eval, err := objectives.Evaluator(req.Objective, m, assets, req.Shorts)
	if err != nil {
		return nil, err
	}

	starts := o.startPoints(bounds)
	results := make([]candidate, len(starts))

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	for i := range starts {
		i := i
		g.Go(func() error {
			results[i] = o.solve(starts[i], bounds, eval)
			return nil
		})
	}
	_ = g.Wait()

	best := -1
	for i, c := range results {
		if c.err != nil {
			o.log.Debug().Err(c.err).Int("start", i).Msg("Start point failed")
		}
		if !c.converged {
			continue
		}
		if best < 0 || c.objective > results[best].objective {
			best = i
		}
	}
	if best < 0 {
		o.log.Warn().
			Str("objective", string(req.Objective)).
			Int("start_points", len(starts)).
			Msg("No start point converged")
		// A converged solve that only failed renormalization is reported
		// as the post-processing failure it is.
		for _, c := range results {
			if domain.KindOf(c.err) == domain.KindPostProcessing {
				return nil, c.err
			}
		}
		return nil, &domain.Error{
			Kind:      domain.KindOptimizationFailed,
			Message:   "no start point converged under the given constraints",
			Objective: string(req.Objective),
		}
	}

	winner := results[best]
	weights := make(map[string]float64, len(assets))
	for i, asset := range assets {
		weights[asset] = winner.weights[i]
	}

	o.log.Info().
		Str("objective", string(req.Objective)).
		Float64("objective_value", winner.objective).
		Int("assets", len(assets)).
		Int("start_points", len(starts)).
		Msg("Optimization converged")

	return &domain.Portfolio{
		RunID:          uuid.NewString(),
		Weights:        weights,
		Shorts:         req.Shorts,
		Objective:      string(req.Objective),
		ObjectiveValue: winner.objective,
		Constraints:    req.Constraints,
	}, nil
}

// solve runs one start point to convergence and post-processes the result.
func (o *Optimizer) solve(start []float64, bounds *Bounds, eval func([]float64) float64) candidate {
	fn := func(x []float64) float64 {
		xp := projectToBounds(x, bounds)
		v := eval(xp)
		var obj float64
		if math.IsNaN(v) || math.IsInf(v, 0) {
			obj = invalidObjective
		} else {
			obj = -v
		}
		sum := floats.Sum(xp)
		return obj + penaltyWeight*(sum-1)*(sum-1)
	}
	// The ratio objectives have no useful closed-form gradient, so BFGS
	// runs on finite differences.
	problem := optimize.Problem{
		Func: fn,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, fn, x, nil)
		},
	}
	settings := &optimize.Settings{MajorIterations: o.cfg.MaxIterations}

	result, err := optimize.Minimize(problem, start, settings, &optimize.BFGS{})
	if err != nil || !accepted(result.Status) {
		result, err = optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
		if err != nil {
			return candidate{err: err}
		}
		if !accepted(result.Status) {
			return candidate{}
		}
	}

	weights, err := postProcess(result.X, bounds)
	if err != nil {
		return candidate{err: err}
	}
	obj := eval(weights)
	if math.IsNaN(obj) || math.IsInf(obj, -1) {
		// Converged onto a point where the objective is undefined.
		return candidate{}
	}
	return candidate{weights: weights, objective: obj, converged: true}
}

// accepted reports whether a solver status counts as numerical convergence.
func accepted(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence, optimize.FunctionThreshold:
		return true
	}
	return false
}

// startPoints builds the documented start-point set: equal-weight first,
// then randomized feasible points from the seeded generator.
func (o *Optimizer) startPoints(bounds *Bounds) [][]float64 {
	n := len(bounds.Assets)
	rng := rand.New(rand.NewSource(o.cfg.Seed))

	starts := make([][]float64, 0, o.cfg.StartPoints)
	equal := make([]float64, n)
	for i := range equal {
		equal[i] = 1.0 / float64(n)
	}
	starts = append(starts, projectToBounds(equal, bounds))

	for len(starts) < o.cfg.StartPoints {
		x := make([]float64, n)
		for i := range x {
			x[i] = bounds.Min[i] + rng.Float64()*(bounds.Max[i]-bounds.Min[i])
		}
		// Pull toward the sum-to-one plane; the solver's penalty term
		// finishes the job.
		if sum := floats.Sum(x); sum > 0 {
			floats.Scale(1/sum, x)
		}
		starts = append(starts, projectToBounds(x, bounds))
	}
	return starts
}

// projectToBounds clamps each coordinate into its [min, max] interval.
func projectToBounds(x []float64, bounds *Bounds) []float64 {
	proj := make([]float64, len(x))
	for i := range x {
		proj[i] = math.Max(bounds.Min[i], math.Min(bounds.Max[i], x[i]))
	}
	return proj
}

// postProcess clips the solver output to its bounds and redistributes the
// remaining mass so the weights sum to exactly 1, absorbing floating-point
// drift. Pinned assets keep their exact pinned weight. Redistribution is
// iterative: free weights are scaled toward the remaining budget, any
// weight that lands on a bound is frozen there, and the rest is rescaled
// until the budget is filled without leaving any bound.
func postProcess(x []float64, bounds *Bounds) ([]float64, error) {
	weights := projectToBounds(x, bounds)

	active := make([]bool, len(weights))
	budget := 1.0
	for i := range weights {
		if bounds.Min[i] == bounds.Max[i] {
			weights[i] = bounds.Min[i]
			budget -= weights[i]
		} else {
			active[i] = true
		}
	}
	if budget < -boundTolerance {
		return nil, domain.Errorf(domain.KindPostProcessing,
			"pinned weights sum to %.6f, leaving no mass for free assets", 1-budget)
	}

	for iter := 0; iter <= len(weights); iter++ {
		sum := 0.0
		n := 0
		for i := range weights {
			if active[i] {
				sum += weights[i]
				n++
			}
		}
		if n == 0 {
			break
		}
		if sum <= 0 {
			// Free weights collapsed to zero: seed them evenly and let
			// the clipping rounds sort out the bounds.
			for i := range weights {
				if active[i] {
					weights[i] = budget / float64(n)
				}
			}
			sum = budget
			if sum <= 0 {
				break
			}
		}
		scale := budget / sum
		clipped := false
		for i := range weights {
			if !active[i] {
				continue
			}
			w := weights[i] * scale
			switch {
			case w < bounds.Min[i]:
				weights[i] = bounds.Min[i]
				active[i] = false
				budget -= weights[i]
				clipped = true
			case w > bounds.Max[i]:
				weights[i] = bounds.Max[i]
				active[i] = false
				budget -= weights[i]
				clipped = true
			default:
				weights[i] = w
			}
		}
		if !clipped {
			return weights, nil
		}
	}

	total := floats.Sum(weights)
	if math.Abs(total-1) > boundTolerance {
		return nil, domain.Errorf(domain.KindPostProcessing,
			"weights fill %.6f of the budget after clipping to bounds", total)
	}
	return weights, nil
}

// optimizableAssets returns the matrix assets that are long-eligible:
// everything except the shorted assets, in deterministic order.
func optimizableAssets(m *returns.Matrix, shorts []domain.ShortPosition) []string {
	shorted := make(map[string]bool, len(shorts))
	for _, s := range shorts {
		shorted[s.Asset] = true
	}
	assets := make([]string, 0, len(m.Assets()))
	for _, asset := range m.Assets() {
		if !shorted[asset] {
			assets = append(assets, asset)
		}
	}
	sort.Strings(assets)
	return assets
}
