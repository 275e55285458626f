package formulas

import "gonum.org/v1/gonum/stat"

// TrendFit is an ordinary least-squares fit of a series against its
// 0..n-1 index: the slope of the regression line and the coefficient of
// determination (fraction of variance explained by the linear trend).
type TrendFit struct {
	Slope    float64
	RSquared float64
}

// LinearTrend regresses ys against a 0..n-1 time index. At least two
// points are required; shorter inputs yield a zero fit.
func LinearTrend(ys []float64) TrendFit {
	if len(ys) < 2 {
		return TrendFit{}
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)
	return TrendFit{Slope: beta, RSquared: r2}
}
