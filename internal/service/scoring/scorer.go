// internal/service/scoring/scorer.go

package scoring

import (
	"fmt"
	"math"

	"infowatch/internal/domain/heatmap"
)

// Penalty weights for the reality stability formula. The formula starts at
// 100 and subtracts a penalty per destabilising signal; the result is
// clamped to [0, 100] and rounded.
const (
	severityPenaltyHigh   = 22.0
	severityPenaltyMedium = 10.0
	severityPenaltyLow    = 3.0

	maxCountPenalty = 20.0  // penalty cap, reached at count >= 2500
	countScale      = 125.0 // count / countScale before capping
	confidenceScale = 18.0  // confidence (0-1) contributes up to 18 pts
	viralityScale   = 8.0   // each unit above 1.0 baseline

	coordinatedPenalty = 9.0
	spikePenalty       = 7.0
)

// Defaults applied when a raw signal field is absent while computing the
// reality score. Display-count math uses neutral defaults of 1 instead.
const (
	defaultConfidence = 0.5
	defaultVirality   = 1.0
)

func severityPenalty(s heatmap.Severity) float64 {
	switch s {
	case heatmap.SeverityHigh:
		return severityPenaltyHigh
	case heatmap.SeverityMedium:
		return severityPenaltyMedium
	default:
		return severityPenaltyLow
	}
}

func trendPenalty(t heatmap.TrendDirection) float64 {
	switch t {
	case heatmap.TrendUp:
		return 5
	case heatmap.TrendDown:
		return -3
	default:
		return 0
	}
}

// ComputeRealityScore derives the 0-100 reality stability score for a
// hotspot from its raw signals. Lower means a more destabilised
// information environment.
func ComputeRealityScore(h heatmap.Hotspot) float64 {
	confidence := defaultConfidence
	if h.ConfidenceScore != nil {
		confidence = *h.ConfidenceScore
	}
	virality := defaultVirality
	if h.ViralityScore != nil {
		virality = *h.ViralityScore
	}

	score := 100.0
	score -= severityPenalty(h.Severity)
	score -= math.Min(float64(h.Count)/countScale, maxCountPenalty)
	score -= confidence * confidenceScale
	score -= math.Max(0, (virality-1.0)*viralityScale)
	if h.IsCoordinated {
		score -= coordinatedPenalty
	}
	if h.IsSpikeAnomaly {
		score -= spikePenalty
	}
	score -= trendPenalty(h.Trend)

	return math.Max(0, math.Min(100, math.Round(score)))
}

// RiskLevelFor maps a reality score to its categorical risk bucket
func RiskLevelFor(score float64) heatmap.RiskLevel {
	switch {
	case score >= 80:
		return heatmap.RiskLow
	case score >= 60:
		return heatmap.RiskMedium
	case score >= 40:
		return heatmap.RiskHigh
	default:
		return heatmap.RiskCritical
	}
}

// ViralityIndex normalises a raw virality multiplier to a 0-10 display
// index, mapping [0.5, 3.5] linearly and clamping outside that range.
func ViralityIndex(raw float64) float64 {
	return math.Min(10, math.Max(0, ((raw-0.5)/3.0)*10.0))
}

// NextAction returns the recommended intervention for a hotspot at the
// given risk level.
func NextAction(h heatmap.Hotspot, risk heatmap.RiskLevel) string {
	switch risk {
	case heatmap.RiskCritical:
		if h.IsCoordinated {
			return "DEPLOY: Counter-narrative — coordinated inauthentic behaviour confirmed"
		}
		if h.IsSpikeAnomaly {
			return "ESCALATE: Rapid-response team — anomalous spike exceeds 3σ threshold"
		}
		return "ESCALATE: Immediate editorial review + platform notification required"
	case heatmap.RiskHigh:
		if h.IsSpikeAnomaly {
			return "INVESTIGATE: Spike anomaly — alert regional fact-check partners"
		}
		if h.IsCoordinated {
			return "FLAG: Coordination signals — route to Trust & Safety team"
		}
		sector := string(h.Category)
		if sector == "" {
			sector = "sector"
		}
		return fmt.Sprintf("ALERT: Notify %s rapid-response partners within 1 hour", sector)
	case heatmap.RiskMedium:
		return "MONITOR: Flag for editorial review within 4 hours"
	default:
		return "LOG: Continue passive monitoring — no immediate action required"
	}
}

// Enrich returns a copy of the hotspot with its derived fields populated.
// A reality score already present on the input is authoritative; otherwise
// one is computed from raw signals when a severity is set. Hotspots with
// neither keep all derived fields empty. Enrich is pure and total.
func Enrich(h heatmap.Hotspot) heatmap.Hotspot {
	out := h

	if out.RealityScore == nil && out.Severity != "" {
		score := ComputeRealityScore(h)
		out.RealityScore = &score
	}
	if out.RealityScore == nil {
		return out
	}

	if out.RiskLevel == "" {
		out.RiskLevel = RiskLevelFor(*out.RealityScore)
	}
	if out.NextAction == "" {
		out.NextAction = NextAction(h, out.RiskLevel)
	}
	return out
}

// EnrichRegion scores a region through the same formula using a synthetic
// hotspot built from the region's aggregate inputs. Regions are scored
// independently of their member hotspots.
func EnrichRegion(r heatmap.Region) heatmap.Region {
	out := r
	if out.RealityScore != nil {
		if out.RiskLevel == "" {
			out.RiskLevel = RiskLevelFor(*out.RealityScore)
		}
		return out
	}

	confidence := 0.6
	virality := 1.0 + math.Max(0, float64(r.Delta)/100.0)
	trend := heatmap.TrendSame
	if r.Delta > 5 {
		trend = heatmap.TrendUp
	} else if r.Delta < -5 {
		trend = heatmap.TrendDown
	}

	synthetic := heatmap.Hotspot{
		Label:           r.Name,
		Count:           r.Events,
		Severity:        r.Severity,
		Category:        heatmap.CategoryGeneral,
		ConfidenceScore: &confidence,
		ViralityScore:   &virality,
		IsSpikeAnomaly:  r.Delta > 25,
		Trend:           trend,
	}

	score := ComputeRealityScore(synthetic)
	risk := RiskLevelFor(score)

	out.RealityScore = &score
	out.RiskLevel = risk
	out.NextAction = NextAction(synthetic, risk)
	return out
}

// DisplayCount computes the view-dependent marker count for a hotspot.
// Volume mode shows the raw windowed count; risk mode weights it by
// confidence and virality (both defaulting to a neutral 1 when absent).
func DisplayCount(h heatmap.Hotspot, mode heatmap.VizMode, window heatmap.TimeRange) int {
	base := h.Count
	if v, ok := h.TimeData[window]; ok {
		base = v
	}
	if mode != heatmap.VizRisk {
		return base
	}

	confidence := 1.0
	if h.ConfidenceScore != nil {
		confidence = *h.ConfidenceScore
	}
	virality := 1.0
	if h.ViralityScore != nil {
		virality = *h.ViralityScore
	}
	return int(math.Round(float64(base) * confidence * virality))
}

// StabilityIndex is the event-weighted average of region reality scores,
// shown in the summary widget. It is nil when no region carries a score.
func StabilityIndex(regions []heatmap.Region) *float64 {
	var weighted, weight float64
	scored := 0
	for _, r := range regions {
		if r.RealityScore == nil {
			continue
		}
		scored++
		w := float64(r.Events)
		weighted += *r.RealityScore * w
		weight += w
	}
	if scored == 0 {
		return nil
	}
	if weight == 0 {
		// All scored regions report zero events; fall back to a plain mean
		sum := 0.0
		for _, r := range regions {
			if r.RealityScore != nil {
				sum += *r.RealityScore
			}
		}
		mean := sum / float64(scored)
		return &mean
	}
	idx := weighted / weight
	return &idx
}
