package metrics

import (
	"math"
	"strconv"
	"time"
)

// Float is a float64 that serializes non-finite values as JSON null.
// Some statistics are legitimately unbounded (Sortino on a slice with no
// losing day is +Inf) and encoding/json refuses to encode those.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// Result is one metrics bundle: the statistics and series computed for a
// fixed weight vector on a single return slice.
type Result struct {
	TotalReturn          Float `json:"total_return"`
	AnnualizedReturn     Float `json:"annualized_return"`
	AnnualizedVolatility Float `json:"annualized_volatility"`
	Sharpe               Float `json:"sharpe"`
	Sortino              Float `json:"sortino"` // +Inf when the slice has no negative return
	DownsideDeviation    Float `json:"downside_deviation"`
	DownsideDeviationAnn Float `json:"downside_deviation_annualized"`
	VaR95                Float `json:"var_95"` // 5th percentile of daily returns
	VaR99                Float `json:"var_99"`
	ParametricVaR95      Float `json:"parametric_var_95_daily"`
	ParametricVaR99      Float `json:"parametric_var_99_daily"`
	ParametricVaR95Ann   Float `json:"parametric_var_95_annual"`
	ParametricVaR99Ann   Float `json:"parametric_var_99_annual"`
	Slope                Float `json:"slope"`
	RSquared             Float `json:"r_squared"`
	MaxDrawdown          Float `json:"max_drawdown"`

	Returns []float64 `json:"returns"`          // daily portfolio return series
	Wealth  []float64 `json:"wealth"`           // cumulative wealth, base 1.0
	Excess  []float64 `json:"excess,omitempty"` // portfolio minus reference, nil without a reference rate

	Monthly []MonthlyReturn `json:"monthly"`
	Annual  []AnnualReturn  `json:"annual"`
}

// MonthlyReturn is the base-0 compounded return of one calendar month.
type MonthlyReturn struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Return float64    `json:"return"`
}

// AnnualReturn is the compound of a year's monthly returns. It is built
// from the monthly compounds, not recomputed from full-period wealth, so
// the two aggregations always agree exactly.
type AnnualReturn struct {
	Year   int     `json:"year"`
	Return float64 `json:"return"`
}

// Aggregate groups a daily return series by calendar month, compounding
// within each group from a fresh base, then compounds each year's months
// into the annual figure. Input slices are date-aligned.
func Aggregate(dates []time.Time, dailyReturns []float64) ([]MonthlyReturn, []AnnualReturn) {
	var monthly []MonthlyReturn
	for i := 0; i < len(dailyReturns); {
		year, month, _ := dates[i].Date()
		compound := 1.0
		for i < len(dailyReturns) {
			y, m, _ := dates[i].Date()
			if y != year || m != month {
				break
			}
			compound *= 1 + dailyReturns[i]
			i++
		}
		monthly = append(monthly, MonthlyReturn{Year: year, Month: month, Return: compound - 1})
	}

	var annual []AnnualReturn
	for i := 0; i < len(monthly); {
		year := monthly[i].Year
		compound := 1.0
		for i < len(monthly) && monthly[i].Year == year {
			compound *= 1 + monthly[i].Return
			i++
		}
		annual = append(annual, AnnualReturn{Year: year, Return: compound - 1})
	}
	return monthly, annual
}
