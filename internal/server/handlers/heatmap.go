// internal/server/handlers/heatmap.go

package handlers

import (
	"encoding/json"
	"net/http"

	"infowatch/internal/domain/heatmap"
	"infowatch/internal/engine"
)

// HeatmapHandler handles heatmap view requests
type HeatmapHandler struct {
	engine *engine.Engine
}

// NewHeatmapHandler creates a new heatmap handler
func NewHeatmapHandler(eng *engine.Engine) *HeatmapHandler {
	return &HeatmapHandler{
		engine: eng,
	}
}

// viewForRequest computes a request-scoped view honoring the optional
// category query parameter. API reads never mutate the engine's own
// filter selection.
func (h *HeatmapHandler) viewForRequest(r *http.Request) heatmap.View {
	category := r.URL.Query().Get("category")
	if category == "" || category == string(heatmap.CategoryAll) {
		return h.engine.ViewFor()
	}
	return h.engine.ViewFor(heatmap.Category(category))
}

// GetHeatmap returns the combined snapshot view: hotspots, regions,
// narratives, alerts, and the aggregate counters.
func (h *HeatmapHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.viewForRequest(r))
}

// GetRegions returns the region summary cards
func (h *HeatmapHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	view := h.engine.ViewFor()
	respondWithJSON(w, http.StatusOK, view.Regions)
}

// GetCategories returns per-category aggregate totals
func (h *HeatmapHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	view := h.engine.ViewFor()
	respondWithJSON(w, http.StatusOK, view.Categories)
}

// GetArcs returns narrative spread arcs for narratives present in at
// least two cities. An empty list is a normal result.
func (h *HeatmapHandler) GetArcs(w http.ResponseWriter, r *http.Request) {
	view := h.viewForRequest(r)
	if view.Arcs == nil {
		view.Arcs = []heatmap.NarrativeArc{}
	}
	respondWithJSON(w, http.StatusOK, view.Arcs)
}

// Simulate runs a spread projection for one hotspot. Simulation is
// advisory: the response is always 200 with a usable result, substituting
// the fixed fallback projection on backend failure.
func (h *HeatmapHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req heatmap.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid simulation request", err)
		return
	}

	result := h.engine.Simulate(r.Context(), req)
	respondWithJSON(w, http.StatusOK, result)
}
