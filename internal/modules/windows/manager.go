// Package windows partitions a return history into in-sample and
// out-of-sample segments and coordinates re-evaluation: the optimizer runs
// once on the in-sample slice, then the metrics engine evaluates the fixed
// weight vector on the in-sample, out-of-sample and full slices.
package windows

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/metrics"
	"github.com/aristath/frontier/internal/modules/objectives"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/aristath/frontier/internal/modules/returns"
)

// Request is one end-to-end optimization request: matrix, objective and
// constraints, plus an optional window. A nil window means the whole
// matrix is in-sample and no out-of-sample evaluation happens.
type Request struct {
	Matrix      *returns.Matrix
	Objective   string
	GlobalMin   float64
	GlobalMax   float64
	Constraints []domain.AssetConstraint
	Shorts      []domain.ShortPosition
	Window      *domain.Window
}

// Outcome bundles the Portfolio with the metric bundles for each slice.
// OutOfSample and Full are nil when no analysis window was requested.
type Outcome struct {
	Portfolio   *domain.Portfolio `json:"portfolio"`
	InSample    *metrics.Result   `json:"in_sample"`
	OutOfSample *metrics.Result   `json:"out_of_sample,omitempty"`
	Full        *metrics.Result   `json:"full,omitempty"`
}

// Manager slices the matrix per the window dates and drives the optimizer
// and metrics engine over the resulting segments.
type Manager struct {
	optimizer *optimization.Optimizer
	log       zerolog.Logger
}

// NewManager creates a window manager.
func NewManager(optimizer *optimization.Optimizer, log zerolog.Logger) *Manager {
	return &Manager{
		optimizer: optimizer,
		log:       log.With().Str("component", "windows").Logger(),
	}
}

// Run executes one optimization request. The optimizer only ever sees the
// in-sample slice; the out-of-sample and full slices are evaluated with
// the weight vector already fixed.
func (mgr *Manager) Run(req Request) (*Outcome, error) {
	objective, err := objectives.Parse(req.Objective)
	if err != nil {
		return nil, err
	}

	m := req.Matrix
	inStart, inEnd, analysisEnd, err := resolve(m, req.Window)
	if err != nil {
		return nil, err
	}

	inSample := m.Slice(inStart, inEnd+1)
	portfolio, err := mgr.optimizer.Optimize(optimization.Request{
		Matrix:      inSample,
		Objective:   objective,
		GlobalMin:   req.GlobalMin,
		GlobalMax:   req.GlobalMax,
		Constraints: req.Constraints,
		Shorts:      req.Shorts,
	})
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Portfolio: portfolio}
	outcome.InSample, err = metrics.Evaluate(inSample, portfolio.Weights, portfolio.Shorts)
	if err != nil {
		return nil, err
	}

	// No analysis segment requested: in-sample results only.
	if analysisEnd <= inEnd {
		mgr.log.Debug().Msg("No out-of-sample window, skipping validation slices")
		return outcome, nil
	}

	outOfSample := m.Slice(inEnd+1, analysisEnd+1)
	outcome.OutOfSample, err = metrics.Evaluate(outOfSample, portfolio.Weights, portfolio.Shorts)
	if err != nil {
		return nil, err
	}

	full := m.Slice(inStart, analysisEnd+1)
	outcome.Full, err = metrics.Evaluate(full, portfolio.Weights, portfolio.Shorts)
	if err != nil {
		return nil, err
	}

	mgr.log.Info().
		Int("in_sample_days", inSample.Len()).
		Int("out_of_sample_days", outOfSample.Len()).
		Msg("Window evaluation complete")
	return outcome, nil
}

// resolve maps window dates to row indices. In-sample is
// [start, end] inclusive; the analysis segment ends at analysisEnd
// (== end when absent, which disables the validation slices). Boundary
// dates inside the matrix range snap to trading days; dates outside the
// range fail with WindowOutOfRange.
func resolve(m *returns.Matrix, w *domain.Window) (inStart, inEnd, analysisEnd int, err error) {
	if w == nil {
		return 0, m.Len() - 1, m.Len() - 1, nil
	}

	if err := checkInRange(m, "start", w.Start); err != nil {
		return 0, 0, 0, err
	}
	if err := checkInRange(m, "end", w.End); err != nil {
		return 0, 0, 0, err
	}
	inStart = m.IndexAtOrAfter(w.Start)
	inEnd = m.IndexAtOrBefore(w.End)
	if inEnd < inStart {
		return 0, 0, 0, domain.Errorf(domain.KindWindowOutOfRange,
			"window start %s is after window end %s",
			w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	}

	analysisEnd = inEnd
	if w.AnalysisEnd != nil {
		if err := checkInRange(m, "analysis end", *w.AnalysisEnd); err != nil {
			return 0, 0, 0, err
		}
		if end := m.IndexAtOrBefore(*w.AnalysisEnd); end > inEnd {
			analysisEnd = end
		}
	}
	return inStart, inEnd, analysisEnd, nil
}

func checkInRange(m *returns.Matrix, name string, t time.Time) error {
	if t.Before(m.FirstDate()) || t.After(m.LastDate()) {
		return domain.Errorf(domain.KindWindowOutOfRange,
			"window %s %s falls outside available dates %s..%s",
			name, t.Format("2006-01-02"),
			m.FirstDate().Format("2006-01-02"), m.LastDate().Format("2006-01-02"))
	}
	return nil
}
