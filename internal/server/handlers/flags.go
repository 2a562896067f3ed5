// internal/server/handlers/flags.go

package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"infowatch/internal/domain/heatmap"
	"infowatch/internal/engine"
)

// FlagStore persists user-submitted flags. It is optional; a nil store
// keeps flags in memory only.
type FlagStore interface {
	SaveFlag(ctx context.Context, flag heatmap.Flag, event heatmap.Hotspot) (string, error)
}

// FlagHandler accepts suspected-AI-content flags from the browser
// extension and turns them into live heatmap hotspots.
type FlagHandler struct {
	engine *engine.Engine
	store  FlagStore
}

// NewFlagHandler creates a new flag handler
func NewFlagHandler(eng *engine.Engine, store FlagStore) *FlagHandler {
	return &FlagHandler{
		engine: eng,
		store:  store,
	}
}

// flagResponse is the payload returned after a flag is accepted
type flagResponse struct {
	OK    bool            `json:"ok"`
	ID    string          `json:"id,omitempty"`
	Event heatmap.Hotspot `json:"event"`
}

// SubmitFlag validates a flag, persists it when a store is configured,
// and injects it into canonical state as a count-1 hotspot.
func (h *FlagHandler) SubmitFlag(w http.ResponseWriter, r *http.Request) {
	var flag heatmap.Flag
	if err := json.NewDecoder(r.Body).Decode(&flag); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid flag payload", err)
		return
	}

	if len(flag.SourceURL) < 5 {
		respondWithError(w, http.StatusBadRequest, "Missing source URL", nil)
		return
	}
	if flag.Platform == "" {
		flag.Platform = "web"
	}
	if flag.Category == "" {
		flag.Category = "Deepfake"
	}
	if flag.Reason == "" {
		flag.Reason = "user_suspected_ai_video"
	}
	if flag.Location != nil {
		if flag.Location.Lat < -90 || flag.Location.Lat > 90 ||
			flag.Location.Lng < -180 || flag.Location.Lng > 180 {
			respondWithError(w, http.StatusBadRequest, "Invalid flag location", nil)
			return
		}
	}

	event := flagToHotspot(flag)

	var id string
	if h.store != nil {
		saved, err := h.store.SaveFlag(r.Context(), flag, event)
		if err != nil {
			// Persistence is best-effort; the flag still reaches the map
			log.Printf("Failed to persist heatmap flag: %v", err)
		} else {
			id = saved
		}
	}

	h.engine.AddFlagEvent(event)

	respondWithJSON(w, http.StatusCreated, flagResponse{
		OK:    true,
		ID:    id,
		Event: event,
	})
}

// flagToHotspot converts a validated flag into a count-1 hotspot
func flagToHotspot(flag heatmap.Flag) heatmap.Hotspot {
	label := prettyPlatformLabel(flag.Platform)

	var cx, cy float64
	if flag.Location != nil {
		cx, cy = heatmap.LatLngToPercent(flag.Location.Lat, flag.Location.Lng)
	} else {
		cx, cy = 50.0, 50.0
		label += " (unknown location)"
	}

	h := heatmap.Hotspot{
		CX:       &cx,
		CY:       &cy,
		Label:    label,
		Count:    1,
		Severity: severityFromConfidence(flag.Confidence),
		Category: flag.Category,
	}
	if flag.Location != nil {
		lat, lng := flag.Location.Lat, flag.Location.Lng
		h.Lat, h.Lng = &lat, &lng
	}
	return h
}

// severityFromConfidence buckets a 0-100 reporter confidence
func severityFromConfidence(confidence *int) heatmap.Severity {
	if confidence == nil {
		return heatmap.SeverityMedium
	}
	switch {
	case *confidence >= 80:
		return heatmap.SeverityHigh
	case *confidence >= 50:
		return heatmap.SeverityMedium
	default:
		return heatmap.SeverityLow
	}
}

// prettyPlatformLabel maps raw platform identifiers to display names
func prettyPlatformLabel(platform string) string {
	name := strings.ToLower(strings.TrimSpace(platform))
	if name == "" {
		name = "web"
	}
	switch name {
	case "x", "x.com", "twitter", "twitter.com":
		return "X / Twitter"
	case "youtube", "youtube.com":
		return "YouTube"
	case "instagram", "instagram.com":
		return "Instagram"
	case "tiktok", "tiktok.com":
		return "TikTok"
	case "telegram", "telegram.org":
		return "Telegram"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
