package objectives

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/returns"
	"github.com/aristath/frontier/pkg/formulas"
)

func testMatrix(t *testing.T, reference bool) *returns.Matrix {
	t.Helper()
	n := 30
	dates := make([]time.Time, n)
	aaa := make([]float64, n)
	bbb := make([]float64, n)
	var ref []float64
	if reference {
		ref = make([]float64, n)
	}
	d := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		dates[i] = d
		d = d.AddDate(0, 0, 1)
		aaa[i] = 0.002 + 0.01*math.Sin(float64(i))
		bbb[i] = 0.001 - 0.009*math.Sin(float64(i))
		if reference {
			ref[i] = 0.0002
		}
	}
	m, err := returns.New(dates, map[string][]float64{"AAA": aaa, "BBB": bbb}, ref)
	require.NoError(t, err)
	return m
}

func TestCatalog_Complete(t *testing.T) {
	defs := Catalog()

	require.Len(t, defs, 7)

	byKind := make(map[Kind]Definition, len(defs))
	for _, def := range defs {
		byKind[def.Kind] = def
	}
	assert.False(t, byKind[Sharpe].RequiresReference)
	assert.False(t, byKind[TrendQuality].RequiresReference)
	assert.True(t, byKind[Smoothness].RequiresReference)
	assert.True(t, byKind[ExcessTrendQuality].RequiresReference)
}

func TestParse(t *testing.T) {
	kind, err := Parse("min_volatility")
	require.NoError(t, err)
	assert.Equal(t, MinVolatility, kind)

	_, err = Parse("maximize_profit")
	require.Error(t, err)
	assert.Equal(t, domain.KindUnknownObjective, domain.KindOf(err))
}

func TestEvaluator_MissingReference(t *testing.T) {
	m := testMatrix(t, false)

	for _, kind := range []Kind{Smoothness, ExcessTrendQuality} {
		_, err := Evaluator(kind, m, m.Assets(), nil)
		assert.Equal(t, domain.KindMissingReferenceRate, domain.KindOf(err), string(kind))
	}

	// The same objectives work once a reference series is present
	m = testMatrix(t, true)
	for _, kind := range []Kind{Smoothness, ExcessTrendQuality} {
		_, err := Evaluator(kind, m, m.Assets(), nil)
		assert.NoError(t, err, string(kind))
	}
}

func TestEvaluator_MinVolatility(t *testing.T) {
	m := testMatrix(t, false)
	eval, err := Evaluator(MinVolatility, m, m.Assets(), nil)
	require.NoError(t, err)

	// The objective is the negated volatility, so less volatile is larger
	concentrated := eval([]float64{1.0, 0.0})
	diversified := eval([]float64{0.5, 0.5})
	assert.Greater(t, diversified, concentrated)
}

func TestEvaluator_SharpeMatchesFormula(t *testing.T) {
	m := testMatrix(t, false)
	eval, err := Evaluator(Sharpe, m, m.Assets(), nil)
	require.NoError(t, err)

	weights := []float64{0.5, 0.5}
	series := make([]float64, m.Len())
	for i := range series {
		series[i] = 0.5*m.Column("AAA")[i] + 0.5*m.Column("BBB")[i]
	}
	expected := formulas.Mean(series) / formulas.StdDev(series) * math.Sqrt(formulas.TradingDaysPerYear)
	assert.InDelta(t, expected, eval(weights), 1e-9)
}

func TestEvaluator_SortinoCapped(t *testing.T) {
	// All-positive returns have no downside; the objective is the finite
	// cap instead of +Inf so the solver can compare candidates.
	dates := make([]time.Time, 10)
	aaa := make([]float64, 10)
	bbb := make([]float64, 10)
	d := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = d
		d = d.AddDate(0, 0, 1)
		aaa[i] = 0.001
		bbb[i] = 0.002
	}
	m, err := returns.New(dates, map[string][]float64{"AAA": aaa, "BBB": bbb}, nil)
	require.NoError(t, err)

	eval, err := Evaluator(Sortino, m, m.Assets(), nil)
	require.NoError(t, err)

	v := eval([]float64{0.5, 0.5})
	assert.False(t, math.IsInf(v, 0))
	assert.Equal(t, float64(sortinoCap), v)
}

func TestEvaluator_TrendQualityPrefersSmoothGrowth(t *testing.T) {
	n := 40
	dates := make([]time.Time, n)
	steady := make([]float64, n)
	choppy := make([]float64, n)
	d := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		dates[i] = d
		d = d.AddDate(0, 0, 1)
		steady[i] = 0.002 + 0.0001*math.Sin(float64(i))
		choppy[i] = 0.002 + 0.02*math.Sin(float64(i)*2.7)
	}
	m, err := returns.New(dates, map[string][]float64{"CHOP": choppy, "STDY": steady}, nil)
	require.NoError(t, err)

	eval, err := Evaluator(TrendQuality, m, m.Assets(), nil)
	require.NoError(t, err)

	// Assets sort as [CHOP, STDY]
	assert.Greater(t, eval([]float64{0.0, 1.0}), eval([]float64{1.0, 0.0}))
}

func TestEvaluator_ShortsContribute(t *testing.T) {
	m := testMatrix(t, false)
	shorts := []domain.ShortPosition{{Asset: "BBB", Weight: -0.5}}

	plain, err := Evaluator(Slope, m, []string{"AAA"}, nil)
	require.NoError(t, err)
	withShort, err := Evaluator(Slope, m, []string{"AAA"}, shorts)
	require.NoError(t, err)

	assert.NotEqual(t, plain([]float64{1.0}), withShort([]float64{1.0}))
}
