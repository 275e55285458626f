package returns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testDates(n int) []time.Time {
	dates := make([]time.Time, n)
	d := day("2024-01-02")
	for i := range dates {
		dates[i] = d
		d = d.AddDate(0, 0, 1)
	}
	return dates
}

func TestNew_Valid(t *testing.T) {
	dates := testDates(3)
	m, err := New(dates, map[string][]float64{
		"BBB": {0.01, 0.02, 0.03},
		"AAA": {0.00, -0.01, 0.01},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	// Asset order is deterministic regardless of map iteration order
	assert.Equal(t, []string{"AAA", "BBB"}, m.Assets())
	assert.Equal(t, dates[0], m.FirstDate())
	assert.Equal(t, dates[2], m.LastDate())
	assert.True(t, m.HasAsset("AAA"))
	assert.False(t, m.HasAsset("CCC"))
	assert.False(t, m.HasReference())
}

func TestNew_RequiresTwoAssets(t *testing.T) {
	_, err := New(testDates(2), map[string][]float64{
		"AAA": {0.01, 0.02},
	}, nil)

	assert.Error(t, err)
}

func TestNew_RejectsUnsortedDates(t *testing.T) {
	dates := testDates(3)
	dates[1], dates[2] = dates[2], dates[1]

	_, err := New(dates, map[string][]float64{
		"AAA": {0.01, 0.02, 0.03},
		"BBB": {0.01, 0.02, 0.03},
	}, nil)

	assert.Error(t, err)
}

func TestNew_RejectsDuplicateDates(t *testing.T) {
	dates := testDates(3)
	dates[2] = dates[1]

	_, err := New(dates, map[string][]float64{
		"AAA": {0.01, 0.02, 0.03},
		"BBB": {0.01, 0.02, 0.03},
	}, nil)

	assert.Error(t, err)
}

func TestNew_RejectsLengthMismatch(t *testing.T) {
	_, err := New(testDates(3), map[string][]float64{
		"AAA": {0.01, 0.02, 0.03},
		"BBB": {0.01, 0.02},
	}, nil)

	assert.Error(t, err)
}

func TestNew_RejectsReferenceLengthMismatch(t *testing.T) {
	_, err := New(testDates(3), map[string][]float64{
		"AAA": {0.01, 0.02, 0.03},
		"BBB": {0.01, 0.02, 0.03},
	}, []float64{0.001})

	assert.Error(t, err)
}

func TestSlice_SharesData(t *testing.T) {
	m, err := New(testDates(5), map[string][]float64{
		"AAA": {0.01, 0.02, 0.03, 0.04, 0.05},
		"BBB": {0.05, 0.04, 0.03, 0.02, 0.01},
	}, []float64{0.001, 0.001, 0.001, 0.001, 0.001})
	require.NoError(t, err)

	view := m.Slice(1, 4)

	assert.Equal(t, 3, view.Len())
	assert.Equal(t, []float64{0.02, 0.03, 0.04}, view.Column("AAA"))
	assert.Equal(t, m.Dates()[1], view.FirstDate())
	assert.True(t, view.HasReference())
	assert.Len(t, view.Reference(), 3)
}

func TestIndexLookups(t *testing.T) {
	m, err := New([]time.Time{
		day("2024-01-02"), day("2024-01-03"), day("2024-01-08"),
	}, map[string][]float64{
		"AAA": {0.01, 0.02, 0.03},
		"BBB": {0.01, 0.02, 0.03},
	}, nil)
	require.NoError(t, err)

	// Exact hits
	assert.Equal(t, 1, m.IndexAtOrAfter(day("2024-01-03")))
	assert.Equal(t, 1, m.IndexAtOrBefore(day("2024-01-03")))

	// Weekend date snaps in opposite directions
	assert.Equal(t, 2, m.IndexAtOrAfter(day("2024-01-05")))
	assert.Equal(t, 1, m.IndexAtOrBefore(day("2024-01-05")))

	// Out of range
	assert.Equal(t, 3, m.IndexAtOrAfter(day("2024-02-01")))
	assert.Equal(t, -1, m.IndexAtOrBefore(day("2023-12-01")))
}
