// Package objectives maps an objective selector to a scalar function of
// the long-weight vector, evaluated over the in-sample return slice.
//
// The catalog is a closed tagged set, not open-ended dispatch: adding an
// objective means adding a Kind and a case, which keeps selection
// validation and reference-rate requirements in one place.
package objectives

import (
	"fmt"
	"math"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/metrics"
	"github.com/aristath/frontier/internal/modules/returns"
	"github.com/aristath/frontier/pkg/formulas"
)

// Kind selects one of the seven optimization objectives. All objectives
// are expressed as maximization targets; the optimizer negates them.
type Kind string

const (
	// Sharpe maximizes the annualized Sharpe ratio.
	Sharpe Kind = "sharpe"
	// Sortino maximizes the annualized Sortino ratio.
	Sortino Kind = "sortino"
	// MinVolatility minimizes annualized volatility.
	MinVolatility Kind = "min_volatility"
	// Slope maximizes the regression slope of cumulative wealth.
	Slope Kind = "slope"
	// TrendQuality maximizes slope / ((1 - R2) * annualized volatility):
	// steep, linear, low-volatility growth.
	TrendQuality Kind = "trend_quality"
	// Smoothness minimizes (volatility * (1 - R2)) / R2 of the excess
	// series. Requires a reference rate.
	Smoothness Kind = "smoothness"
	// ExcessTrendQuality is TrendQuality computed on the excess
	// (portfolio minus reference) series. Requires a reference rate.
	ExcessTrendQuality Kind = "excess_trend_quality"
)

// invalid marks an objective value that is undefined at the evaluated
// point (degenerate regression). The optimizer treats it as arbitrarily
// bad rather than aborting the solve.
var invalid = math.Inf(-1)

// sortinoCap bounds the Sortino objective when a slice has no negative
// return: the ratio is +Inf there, which the solver cannot compare.
const sortinoCap = 1e12

// Definition describes one selectable objective for catalog listings.
type Definition struct {
	Kind              Kind   `json:"kind"`
	Description       string `json:"description"`
	RequiresReference bool   `json:"requires_reference"`
}

// Catalog lists the seven objectives in their canonical order.
func Catalog() []Definition {
	return []Definition{
		{Sharpe, "Maximize annualized Sharpe ratio", false},
		{Sortino, "Maximize annualized Sortino ratio", false},
		{MinVolatility, "Minimize annualized volatility", false},
		{Slope, "Maximize regression slope of cumulative wealth", false},
		{TrendQuality, "Maximize slope / ((1-R2) * volatility)", false},
		{Smoothness, "Minimize (volatility * (1-R2)) / R2 of the excess series", true},
		{ExcessTrendQuality, "Maximize slope / ((1-R2) * volatility) of the excess series", true},
	}
}

// Parse validates an objective selector string.
func Parse(s string) (Kind, error) {
	for _, def := range Catalog() {
		if string(def.Kind) == s {
			return def.Kind, nil
		}
	}
	return "", &domain.Error{
		Kind:      domain.KindUnknownObjective,
		Message:   fmt.Sprintf("unknown objective %q", s),
		Objective: s,
	}
}

// RequiresReference reports whether the objective needs a reference-rate
// series in the return matrix.
func RequiresReference(kind Kind) bool {
	for _, def := range Catalog() {
		if def.Kind == kind {
			return def.RequiresReference
		}
	}
	return false
}

// Evaluator builds the maximization objective for a kind over the given
// in-sample slice. The returned function takes a candidate long-weight
// vector index-aligned with assets; short positions are fixed and folded
// into every evaluation. Fails with MissingReferenceRate when the kind
// needs a reference rate the matrix does not carry.
func Evaluator(kind Kind, m *returns.Matrix, assets []string, shorts []domain.ShortPosition) (func(weights []float64) float64, error) {
	if _, err := Parse(string(kind)); err != nil {
		return nil, err
	}
	if RequiresReference(kind) && !m.HasReference() {
		return nil, &domain.Error{
			Kind:      domain.KindMissingReferenceRate,
			Message:   "objective needs a reference-rate series",
			Objective: string(kind),
		}
	}

	eval := func(weights []float64) float64 {
		portfolio := metrics.Series(m, assets, weights, shorts)
		excess := metrics.ExcessSeries(m, portfolio)
		base := portfolio
		if excess != nil {
			base = excess
		}

		switch kind {
		case Sharpe:
			return metrics.Sharpe(portfolio, base)

		case Sortino:
			v := metrics.Sortino(portfolio, base)
			if math.IsInf(v, 1) {
				return sortinoCap
			}
			return v

		case MinVolatility:
			return -formulas.AnnualizedVolatility(portfolio)

		case Slope:
			return formulas.LinearTrend(formulas.CumulativeWealth(portfolio)).Slope

		case TrendQuality:
			return trendQuality(portfolio)

		case Smoothness:
			fit := formulas.LinearTrend(formulas.CumulativeWealth(excess))
			if fit.RSquared == 0 {
				return invalid
			}
			vol := formulas.AnnualizedVolatility(excess)
			return -(vol * (1 - fit.RSquared)) / fit.RSquared

		case ExcessTrendQuality:
			return trendQuality(excess)
		}
		return invalid
	}
	return eval, nil
}

// trendQuality is slope / ((1 - R2) * annualized volatility) of a return
// series. Undefined when R2 == 1 exactly or the series has no volatility.
func trendQuality(series []float64) float64 {
	fit := formulas.LinearTrend(formulas.CumulativeWealth(series))
	vol := formulas.AnnualizedVolatility(series)
	denom := (1 - fit.RSquared) * vol
	if denom == 0 {
		return invalid
	}
	return fit.Slope / denom
}
