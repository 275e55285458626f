// Package metrics computes risk and return statistics for a fixed weight
// vector over a return slice. Everything here is pure and stateless: the
// optimizer and the window manager call into it, the results flow out to
// the API layer unchanged.
//
// All cumulative figures follow the base-0 methodology: each evaluated
// window restarts compounding at 1.0 on its first date, so monthly and
// annual aggregates compose exactly to the period total.
package metrics

import (
	"math"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/returns"
	"github.com/aristath/frontier/pkg/formulas"
)

// Parametric VaR z-scores (one-sided 95% / 99%).
const (
	zScore95 = 1.65
	zScore99 = 2.33
)

// Series computes the daily portfolio return series for index-aligned long
// weights plus fixed short positions. No validation: this is the hot path
// the objective catalog evaluates thousands of times per solve. Callers
// guarantee that assets exist in the matrix.
func Series(m *returns.Matrix, assets []string, weights []float64, shorts []domain.ShortPosition) []float64 {
	n := m.Len()
	out := make([]float64, n)
	for i, asset := range assets {
		w := weights[i]
		if w == 0 {
			continue
		}
		col := m.Column(asset)
		for t := 0; t < n; t++ {
			out[t] += w * col[t]
		}
	}
	for _, short := range shorts {
		col := m.Column(short.Asset)
		for t := 0; t < n; t++ {
			out[t] += short.Weight * col[t]
		}
	}
	return out
}

// ExcessSeries subtracts the reference-rate series from the portfolio
// return series. Returns nil when the matrix has no reference rate.
func ExcessSeries(m *returns.Matrix, portfolio []float64) []float64 {
	ref := m.Reference()
	if ref == nil {
		return nil
	}
	excess := make([]float64, len(portfolio))
	for t := range portfolio {
		excess[t] = portfolio[t] - ref[t]
	}
	return excess
}

// PortfolioReturns validates the inputs and computes the daily portfolio
// return series for a weight map and short set.
func PortfolioReturns(m *returns.Matrix, weights map[string]float64, shorts []domain.ShortPosition) ([]float64, error) {
	if m.Len() < 2 {
		return nil, domain.Errorf(domain.KindInsufficientData,
			"return slice has %d trading days, need at least 2", m.Len())
	}
	sum := 0.0
	for asset, w := range weights {
		if !m.HasAsset(asset) {
			return nil, &domain.Error{
				Kind:    domain.KindInvalidWeights,
				Message: "weighted asset not present in return matrix",
				Asset:   asset,
			}
		}
		sum += w
	}
	if math.Abs(sum-1) > domain.WeightTolerance {
		return nil, domain.Errorf(domain.KindInvalidWeights,
			"long weights sum to %.8f, expected 1", sum)
	}
	for _, short := range shorts {
		if !m.HasAsset(short.Asset) {
			return nil, &domain.Error{
				Kind:    domain.KindInvalidWeights,
				Message: "short asset not present in return matrix",
				Asset:   short.Asset,
			}
		}
	}

	assets := make([]string, 0, len(weights))
	vec := make([]float64, 0, len(weights))
	for _, asset := range m.Assets() {
		if w, ok := weights[asset]; ok {
			assets = append(assets, asset)
			vec = append(vec, w)
		}
	}
	return Series(m, assets, vec, shorts), nil
}

// Sharpe is the annualized ratio of mean excess return to full-sample
// volatility. A zero-volatility series yields 0, not a division blowup.
func Sharpe(portfolio, excess []float64) float64 {
	sd := formulas.StdDev(portfolio)
	if sd == 0 {
		return 0
	}
	return formulas.Mean(excess) / sd * math.Sqrt(formulas.TradingDaysPerYear)
}

// Sortino is the annualized ratio of mean excess return to downside
// deviation. A slice with no negative return reports +Inf.
func Sortino(portfolio, excess []float64) float64 {
	dd := formulas.DownsideDeviation(portfolio)
	if dd == 0 {
		return math.Inf(1)
	}
	return formulas.Mean(excess) / dd * math.Sqrt(formulas.TradingDaysPerYear)
}

// Evaluate computes the full metrics bundle for a fixed weight vector on a
// return slice. The weight vector must already satisfy the sum-to-one
// invariant; the slice must span at least two trading days.
func Evaluate(m *returns.Matrix, weights map[string]float64, shorts []domain.ShortPosition) (*Result, error) {
	portfolio, err := PortfolioReturns(m, weights, shorts)
	if err != nil {
		return nil, err
	}

	excess := ExcessSeries(m, portfolio)
	sharpeBase := portfolio
	if excess != nil {
		sharpeBase = excess
	}

	wealth := formulas.CumulativeWealth(portfolio)
	fit := formulas.LinearTrend(wealth)
	downside := formulas.DownsideDeviation(portfolio)

	mean := formulas.Mean(portfolio)
	sd := formulas.StdDev(portfolio)
	sqrtYear := math.Sqrt(formulas.TradingDaysPerYear)

	monthly, annual := Aggregate(m.Dates(), portfolio)

	return &Result{
		TotalReturn:          Float(wealth[len(wealth)-1] - 1),
		AnnualizedReturn:     Float(formulas.AnnualizedReturn(portfolio)),
		AnnualizedVolatility: Float(formulas.AnnualizedVolatility(portfolio)),
		Sharpe:               Float(Sharpe(portfolio, sharpeBase)),
		Sortino:              Float(Sortino(portfolio, sharpeBase)),
		DownsideDeviation:    Float(downside),
		DownsideDeviationAnn: Float(downside * sqrtYear),
		VaR95:                Float(formulas.Quantile(portfolio, 0.05)),
		VaR99:                Float(formulas.Quantile(portfolio, 0.01)),
		ParametricVaR95:      Float(mean - zScore95*sd),
		ParametricVaR99:      Float(mean - zScore99*sd),
		ParametricVaR95Ann:   Float(mean*formulas.TradingDaysPerYear - zScore95*sd*sqrtYear),
		ParametricVaR99Ann:   Float(mean*formulas.TradingDaysPerYear - zScore99*sd*sqrtYear),
		Slope:                Float(fit.Slope),
		RSquared:             Float(fit.RSquared),
		MaxDrawdown:          Float(formulas.MaxDrawdown(wealth)),
		Returns:              portfolio,
		Wealth:               wealth,
		Excess:               excess,
		Monthly:              monthly,
		Annual:               annual,
	}, nil
}
