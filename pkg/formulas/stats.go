// Package formulas provides the statistical primitives used by the
// metrics engine and the objective catalog.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization base for daily return series.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the population standard deviation of a slice.
// Population (not sample) keeps window metrics consistent with the base-0
// methodology: every window is treated as the full distribution, not a
// sample of a larger one.
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return math.Sqrt(stat.PopVariance(data, nil))
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: Std Dev of Daily Returns x sqrt(252 trading days)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// DownsideDeviation calculates the population standard deviation of the
// negative returns only. Returns 0 when the slice has no negative return;
// callers treat that case as "no downside observed".
func DownsideDeviation(dailyReturns []float64) float64 {
	var negatives []float64
	for _, r := range dailyReturns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) == 0 {
		return 0
	}
	return StdDev(negatives)
}

// CumulativeWealth builds the running product of (1 + r) over the slice,
// starting at 1. Output has the same length as the input.
func CumulativeWealth(dailyReturns []float64) []float64 {
	wealth := make([]float64, len(dailyReturns))
	acc := 1.0
	for i, r := range dailyReturns {
		acc *= 1 + r
		wealth[i] = acc
	}
	return wealth
}

// AnnualizedReturn calculates the compound annual growth rate from daily
// returns: ((1+r1)*...*(1+rN))^(252/N) - 1.
func AnnualizedReturn(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	cumulative := 1.0
	for _, r := range dailyReturns {
		cumulative *= 1 + r
	}
	years := float64(len(dailyReturns)) / TradingDaysPerYear
	return math.Pow(cumulative, 1.0/years) - 1
}

// Quantile returns the p-quantile of the data using linear interpolation
// between order statistics. The input is not modified.
func Quantile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// MaxDrawdown returns the largest peak-to-trough decline of a wealth
// series, as a positive fraction of the peak.
func MaxDrawdown(wealth []float64) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, w := range wealth {
		if w > peak {
			peak = w
		}
		if peak > 0 {
			dd := (peak - w) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
