// internal/service/alerting/deriver.go

package alerting

import (
	"fmt"
	"regexp"
	"sort"

	"infowatch/internal/domain/heatmap"
)

// DefaultLimit is the number of alerts surfaced when no limit is given
const DefaultLimit = 6

// actionPrefix matches the leading "WORD: " verb prefix on next-action
// strings, e.g. "DEPLOY: " or "ESCALATE: ".
var actionPrefix = regexp.MustCompile(`^[A-Z]+:\s+`)

// Derive selects and ranks the hotspots that should surface as active
// alerts. A hotspot qualifies when it shows coordinated activity, a spike
// anomaly, or a CRITICAL risk level. Results are ordered worst first
// (ascending reality score); unscored hotspots sort after all scored ones
// in their original order. At most limit alerts are returned.
func Derive(hotspots []heatmap.Hotspot, limit int) []heatmap.Alert {
	if limit <= 0 {
		limit = DefaultLimit
	}

	selected := make([]heatmap.Hotspot, 0, len(hotspots))
	for _, h := range hotspots {
		if h.IsCoordinated || h.IsSpikeAnomaly || h.RiskLevel == heatmap.RiskCritical {
			selected = append(selected, h)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i].RealityScore, selected[j].RealityScore
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})

	if len(selected) > limit {
		selected = selected[:limit]
	}

	alerts := make([]heatmap.Alert, 0, len(selected))
	for _, h := range selected {
		alerts = append(alerts, toAlert(h))
	}
	return alerts
}

func toAlert(h heatmap.Hotspot) heatmap.Alert {
	alertType := heatmap.AlertSpike
	if h.IsCoordinated {
		alertType = heatmap.AlertCoordinated
	}

	msg := ""
	if h.NextAction != "" {
		msg = actionPrefix.ReplaceAllString(h.NextAction, "")
	} else if alertType == heatmap.AlertCoordinated {
		msg = fmt.Sprintf("Coordinated activity — %s", h.Category)
	} else {
		msg = fmt.Sprintf("Spike anomaly — %s", h.Category)
	}

	risk := h.RiskLevel
	if risk == "" && (h.IsCoordinated || h.IsSpikeAnomaly) {
		risk = heatmap.RiskHigh
	}

	return heatmap.Alert{
		Type:      alertType,
		City:      h.Label,
		Msg:       msg,
		RiskLevel: risk,
	}
}
