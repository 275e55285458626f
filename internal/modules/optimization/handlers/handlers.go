// Package handlers provides HTTP handlers for portfolio optimization requests.
package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/objectives"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/aristath/frontier/internal/modules/returns"
	"github.com/aristath/frontier/internal/modules/windows"
)

const dateLayout = "2006-01-02"

// Handler handles optimization HTTP requests
type Handler struct {
	manager *windows.Manager
	log     zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(manager *windows.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		log:     log.With().Str("handler", "optimization").Logger(),
	}
}

// optimizeRequest is the wire shape of POST /api/optimize.
type optimizeRequest struct {
	Dates       []string                 `json:"dates"`
	Returns     map[string][]float64     `json:"returns"`
	Reference   []float64                `json:"reference,omitempty"`
	Objective   string                   `json:"objective"`
	GlobalMin   float64                  `json:"global_min"`
	GlobalMax   *float64                 `json:"global_max,omitempty"` // omitted means 1.0
	Constraints []domain.AssetConstraint `json:"constraints,omitempty"`
	Shorts      []domain.ShortPosition   `json:"shorts,omitempty"`
	Window      *windowRequest           `json:"window,omitempty"`
}

type windowRequest struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	AnalysisEnd string `json:"analysis_end,omitempty"`
}

// optimizeResponse adds the significant-weights summary to the raw outcome.
type optimizeResponse struct {
	*windows.Outcome
	SignificantWeights []weightEntry `json:"significant_weights"`
}

// weightEntry is one row of the significant-weights summary, ordered by
// descending weight.
type weightEntry struct {
	Asset  string  `json:"asset"`
	Weight float64 `json:"weight"`
}

// HandleOptimize handles POST /api/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "failed to decode request body")
		return
	}

	dates := make([]time.Time, len(req.Dates))
	for i, s := range req.Dates {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid date "+s)
			return
		}
		dates[i] = t
	}

	matrix, err := returns.New(dates, req.Returns, req.Reference)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	window, err := parseWindow(req.Window)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	globalMax := 1.0
	if req.GlobalMax != nil {
		globalMax = *req.GlobalMax
	}

	outcome, err := h.manager.Run(windows.Request{
		Matrix:      matrix,
		Objective:   req.Objective,
		GlobalMin:   req.GlobalMin,
		GlobalMax:   globalMax,
		Constraints: req.Constraints,
		Shorts:      req.Shorts,
		Window:      window,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("objective", req.Objective).Msg("Optimization request failed")
		h.writeDomainError(w, err)
		return
	}

	significant := make([]weightEntry, 0, len(outcome.Portfolio.Weights))
	for asset, weight := range outcome.Portfolio.Weights {
		if weight >= optimization.WeightCutoff {
			significant = append(significant, weightEntry{Asset: asset, Weight: weight})
		}
	}
	sort.Slice(significant, func(i, j int) bool {
		if significant[i].Weight != significant[j].Weight {
			return significant[i].Weight > significant[j].Weight
		}
		return significant[i].Asset < significant[j].Asset
	})

	h.log.Info().
		Str("run_id", outcome.Portfolio.RunID).
		Str("objective", req.Objective).
		Int("significant_weights", len(significant)).
		Msg("Optimization request complete")

	h.writeJSON(w, http.StatusOK, optimizeResponse{
		Outcome:            outcome,
		SignificantWeights: significant,
	})
}

// HandleListObjectives handles GET /api/objectives
func (h *Handler) HandleListObjectives(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"objectives": objectives.Catalog(),
	})
}

func parseWindow(req *windowRequest) (*domain.Window, error) {
	if req == nil {
		return nil, nil
	}
	start, err := time.Parse(dateLayout, req.Start)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(dateLayout, req.End)
	if err != nil {
		return nil, err
	}
	w := &domain.Window{Start: start, End: end}
	if req.AnalysisEnd != "" {
		analysisEnd, err := time.Parse(dateLayout, req.AnalysisEnd)
		if err != nil {
			return nil, err
		}
		w.AnalysisEnd = &analysisEnd
	}
	return w, nil
}

// writeDomainError maps the failure taxonomy onto HTTP statuses: bad inputs
// are 400, solves that legitimately failed to converge are 422.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := http.StatusBadRequest
	switch kind {
	case domain.KindOptimizationFailed, domain.KindPostProcessing:
		status = http.StatusUnprocessableEntity
	case "":
		status = http.StatusInternalServerError
		kind = "internal"
	}
	h.writeError(w, status, string(kind), err.Error())
}

func (h *Handler) writeError(w http.ResponseWriter, status int, kind, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"kind":    kind,
			"message": message,
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
