// internal/service/stream/seed.go

package stream

import (
	"infowatch/internal/domain/heatmap"
)

// SeedSnapshot returns the built-in baseline dataset used as the initial
// canonical state. It keeps the engine presenting a coherent view before
// the first snapshot fetch succeeds, including with zero connectivity.
func SeedSnapshot() *heatmap.Snapshot {
	events := []heatmap.Hotspot{
		seedHotspot(22, 38, "New York", 312, heatmap.SeverityHigh, heatmap.CategoryHealth, 0.87, 1.4, heatmap.TrendUp, true, false),
		seedHotspot(16, 43, "Los Angeles", 198, heatmap.SeverityMedium, heatmap.CategoryPolitics, 0.74, 1.1, heatmap.TrendUp, false, false),
		seedHotspot(47, 32, "London", 245, heatmap.SeverityHigh, heatmap.CategoryHealth, 0.91, 1.6, heatmap.TrendUp, true, true),
		seedHotspot(49, 30, "Berlin", 134, heatmap.SeverityMedium, heatmap.CategoryClimate, 0.68, 0.9, heatmap.TrendSame, false, false),
		seedHotspot(53, 33, "Moscow", 389, heatmap.SeverityHigh, heatmap.CategoryPolitics, 0.94, 2.1, heatmap.TrendUp, true, true),
		seedHotspot(72, 38, "Beijing", 521, heatmap.SeverityHigh, heatmap.CategoryScience, 0.82, 1.8, heatmap.TrendUp, true, false),
		seedHotspot(76, 44, "Tokyo", 287, heatmap.SeverityMedium, heatmap.CategoryFinance, 0.71, 1.3, heatmap.TrendSame, false, false),
		seedHotspot(70, 50, "Delhi", 403, heatmap.SeverityHigh, heatmap.CategoryHealth, 0.85, 1.7, heatmap.TrendUp, false, true),
		seedHotspot(28, 60, "Sao Paulo", 176, heatmap.SeverityMedium, heatmap.CategoryPolitics, 0.69, 1.0, heatmap.TrendSame, false, false),
		seedHotspot(50, 55, "Cairo", 218, heatmap.SeverityMedium, heatmap.CategoryConflict, 0.76, 1.2, heatmap.TrendUp, false, false),
		seedHotspot(54, 62, "Nairobi", 92, heatmap.SeverityLow, heatmap.CategoryHealth, 0.62, 0.8, heatmap.TrendDown, false, false),
		seedHotspot(55, 43, "Tehran", 267, heatmap.SeverityHigh, heatmap.CategoryConflict, 0.89, 1.7, heatmap.TrendUp, true, false),
		seedHotspot(79, 67, "Jakarta", 145, heatmap.SeverityMedium, heatmap.CategoryHealth, 0.69, 1.1, heatmap.TrendSame, false, false),
	}

	regions := []heatmap.Region{
		{Name: "North America", Events: 847, Delta: 12, Severity: heatmap.SeverityHigh},
		{Name: "Europe", Events: 623, Delta: 5, Severity: heatmap.SeverityMedium},
		{Name: "Asia Pacific", Events: 1204, Delta: 31, Severity: heatmap.SeverityHigh},
		{Name: "South America", Events: 391, Delta: -4, Severity: heatmap.SeverityMedium},
		{Name: "Africa", Events: 278, Delta: 8, Severity: heatmap.SeverityLow},
		{Name: "Middle East", Events: 512, Delta: 19, Severity: heatmap.SeverityHigh},
	}

	narratives := []heatmap.Narrative{
		{Rank: 1, Title: "Vaccine microchip conspiracy resurfaces ahead of flu season", Category: heatmap.CategoryHealth, Volume: 14200, Trend: heatmap.TrendUp},
		{Rank: 2, Title: "AI-generated election footage spreads across social platforms", Category: heatmap.CategoryPolitics, Volume: 11800, Trend: heatmap.TrendUp},
		{Rank: 3, Title: "Manipulated climate data graph shared by influencers", Category: heatmap.CategoryClimate, Volume: 9400, Trend: heatmap.TrendUp},
		{Rank: 4, Title: "False banking collapse rumour triggers regional bank run", Category: heatmap.CategoryFinance, Volume: 7600, Trend: heatmap.TrendDown},
		{Rank: 5, Title: "Doctored satellite images misidentify conflict zone locations", Category: heatmap.CategoryConflict, Volume: 6300, Trend: heatmap.TrendUp},
		{Rank: 6, Title: "Miracle cure claims spread via encrypted messaging apps", Category: heatmap.CategoryHealth, Volume: 5100, Trend: heatmap.TrendSame},
	}

	total := 0
	for _, r := range regions {
		total += r.Events
	}

	return &heatmap.Snapshot{
		Events:      events,
		Regions:     regions,
		Narratives:  narratives,
		TotalEvents: total,
	}
}

func seedHotspot(
	cx, cy float64,
	label string,
	count int,
	severity heatmap.Severity,
	category heatmap.Category,
	confidence, virality float64,
	trend heatmap.TrendDirection,
	coordinated, spike bool,
) heatmap.Hotspot {
	return heatmap.Hotspot{
		CX:              &cx,
		CY:              &cy,
		Label:           label,
		Count:           count,
		Severity:        severity,
		Category:        category,
		ConfidenceScore: &confidence,
		ViralityScore:   &virality,
		Trend:           trend,
		IsCoordinated:   coordinated,
		IsSpikeAnomaly:  spike,
	}
}
