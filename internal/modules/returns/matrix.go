// Package returns holds the validated, date-aligned return matrix that
// every other module consumes. A Matrix is produced once per data load and
// is read-only afterwards; windowing hands out views, never copies.
package returns

import (
	"fmt"
	"sort"
	"time"
)

// Matrix is an ordered sequence of trading dates crossed with one daily
// return series per asset (decimal returns, not percentages). It may carry
// a reference-rate series of the same length, used by benchmark-relative
// objectives. Invariant: every column has a value for every date.
type Matrix struct {
	dates     []time.Time
	assets    []string
	columns   map[string][]float64
	reference []float64 // nil when no reference rate was supplied
}

// New validates and builds a Matrix. Dates must be ascending and unique,
// every column must match the date count, and at least two tradable assets
// are required. The reference series may be nil.
func New(dates []time.Time, columns map[string][]float64, reference []float64) (*Matrix, error) {
	if len(columns) < 2 {
		return nil, fmt.Errorf("return matrix needs at least 2 assets, got %d", len(columns))
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("return matrix has no dates")
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("dates must be ascending and unique: %s followed by %s",
				dates[i-1].Format("2006-01-02"), dates[i].Format("2006-01-02"))
		}
	}
	assets := make([]string, 0, len(columns))
	for asset, series := range columns {
		if len(series) != len(dates) {
			return nil, fmt.Errorf("asset %s has %d returns for %d dates", asset, len(series), len(dates))
		}
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	if reference != nil && len(reference) != len(dates) {
		return nil, fmt.Errorf("reference rate has %d values for %d dates", len(reference), len(dates))
	}
	return &Matrix{dates: dates, assets: assets, columns: columns, reference: reference}, nil
}

// Len returns the number of trading dates.
func (m *Matrix) Len() int {
	return len(m.dates)
}

// Assets returns the asset identifiers in deterministic (sorted) order.
func (m *Matrix) Assets() []string {
	return m.assets
}

// Dates returns the trading dates in ascending order.
func (m *Matrix) Dates() []time.Time {
	return m.dates
}

// FirstDate returns the earliest trading date in the matrix.
func (m *Matrix) FirstDate() time.Time {
	return m.dates[0]
}

// LastDate returns the latest trading date in the matrix.
func (m *Matrix) LastDate() time.Time {
	return m.dates[len(m.dates)-1]
}

// Column returns the return series for one asset, or nil if the asset is
// not in the matrix. The slice is shared, not copied.
func (m *Matrix) Column(asset string) []float64 {
	return m.columns[asset]
}

// HasAsset reports whether the matrix carries a column for the asset.
func (m *Matrix) HasAsset(asset string) bool {
	_, ok := m.columns[asset]
	return ok
}

// HasReference reports whether a reference-rate series was supplied.
func (m *Matrix) HasReference() bool {
	return m.reference != nil
}

// Reference returns the reference-rate series, or nil when absent.
func (m *Matrix) Reference() []float64 {
	return m.reference
}

// Slice returns a view over rows [i, j) sharing the underlying storage.
func (m *Matrix) Slice(i, j int) *Matrix {
	columns := make(map[string][]float64, len(m.columns))
	for asset, series := range m.columns {
		columns[asset] = series[i:j]
	}
	var reference []float64
	if m.reference != nil {
		reference = m.reference[i:j]
	}
	return &Matrix{
		dates:     m.dates[i:j],
		assets:    m.assets,
		columns:   columns,
		reference: reference,
	}
}

// IndexAtOrAfter returns the index of the first date >= t.
func (m *Matrix) IndexAtOrAfter(t time.Time) int {
	return sort.Search(len(m.dates), func(i int) bool {
		return !m.dates[i].Before(t)
	})
}

// IndexAtOrBefore returns the index of the last date <= t, or -1 when
// every date is after t.
func (m *Matrix) IndexAtOrBefore(t time.Time) int {
	return m.IndexAtOrAfter(t.Add(time.Nanosecond)) - 1
}
