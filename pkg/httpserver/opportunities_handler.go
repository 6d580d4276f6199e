package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/internal/store"
	"github.com/arbitragex/arbfeed/internal/view"
	"github.com/arbitragex/arbfeed/pkg/types"
)

// OpportunitiesHandler serves the filtered, sorted opportunity view.
type OpportunitiesHandler struct {
	store    *store.Store
	status   FeedStatus
	defaults view.Selection
	logger   *zap.Logger
}

// NewOpportunitiesHandler creates a new opportunities handler.
func NewOpportunitiesHandler(st *store.Store, status FeedStatus, defaults view.Selection, logger *zap.Logger) *OpportunitiesHandler {
	return &OpportunitiesHandler{
		store:    st,
		status:   status,
		defaults: defaults,
		logger:   logger,
	}
}

// OpportunitiesResponse is the HTTP response for the opportunity view.
type OpportunitiesResponse struct {
	Connected     bool                `json:"connected"`
	Live          int                 `json:"live"`
	Displayed     int                 `json:"displayed"`
	Opportunities []types.Opportunity `json:"opportunities"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleOpportunities handles GET /api/opportunities requests. The
// filter selection comes from query parameters: comma-separated sets
// (sports, providers, markets, selections) and numeric range bounds
// (min_arb, max_arb, min_odds, max_odds). Omitted parameters fall back
// to the configured defaults.
func (h *OpportunitiesHandler) HandleOpportunities(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	snapshot := h.store.Snapshot()
	filtered := view.Apply(snapshot, sel)

	// Fill in the exchange deep link for records the feed did not
	// provide one for; the dashboard opens it on click.
	for i := range filtered {
		if filtered[i].BetfairURL == "" {
			filtered[i].BetfairURL = filtered[i].ExchangeURL()
		}
	}

	resp := OpportunitiesResponse{
		Connected:     h.status != nil && h.status.Connected(),
		Live:          len(snapshot),
		Displayed:     len(filtered),
		Opportunities: filtered,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err = json.NewEncoder(w).Encode(resp)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// parseSelection builds the filter selection from query parameters on
// top of the configured defaults.
func (h *OpportunitiesHandler) parseSelection(r *http.Request) (view.Selection, error) {
	sel := h.defaults
	q := r.URL.Query()

	if v, ok := q["sports"]; ok {
		sel.Sports = splitSet(v[0])
	}
	if v, ok := q["providers"]; ok {
		sel.Providers = splitSet(v[0])
	}
	if v, ok := q["markets"]; ok {
		sel.Markets = splitSet(v[0])
	}
	if v, ok := q["selections"]; ok {
		sel.Selections = splitSet(v[0])
	}

	var err error
	if sel.ArbMin, err = parseBound(q.Get("min_arb"), sel.ArbMin); err != nil {
		return sel, err
	}
	if sel.ArbMax, err = parseBound(q.Get("max_arb"), sel.ArbMax); err != nil {
		return sel, err
	}
	if sel.OddsMin, err = parseBound(q.Get("min_odds"), sel.OddsMin); err != nil {
		return sel, err
	}
	if sel.OddsMax, err = parseBound(q.Get("max_odds"), sel.OddsMax); err != nil {
		return sel, err
	}

	return sel, nil
}

// splitSet parses a comma-separated set parameter. An explicitly empty
// parameter clears the group, which means "no constraint".
func splitSet(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

func parseBound(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &boundError{raw: raw}
	}
	return v, nil
}

type boundError struct {
	raw string
}

func (e *boundError) Error() string {
	return "invalid numeric bound: " + e.raw
}

// writeError writes a JSON error response.
func (h *OpportunitiesHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(ErrorResponse{Error: message})
	if err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
