// internal/engine/view.go

package engine

import (
	"sort"

	"infowatch/internal/domain/heatmap"
	"infowatch/internal/service/alerting"
	"infowatch/internal/service/filtering"
	"infowatch/internal/service/scoring"
)

// maxArcs bounds the arc list returned with a view
const maxArcs = 40

// buildViewLocked derives a complete view from canonical state with the
// given selection. Callers hold at least the read lock. Recomputation is
// full, not incremental; dataset sizes are tens of hotspots.
func (e *Engine) buildViewLocked(sel *filtering.Selection) heatmap.View {
	enriched := make([]heatmap.Hotspot, 0, len(e.state.Hotspots))
	for _, h := range e.state.Hotspots {
		scored := scoring.Enrich(h)
		scored.DisplayCount = scoring.DisplayCount(scored, e.vizMode, e.timeRange)
		enriched = append(enriched, scored)
	}

	regions := make([]heatmap.Region, 0, len(e.state.Regions))
	for _, r := range e.state.Regions {
		regions = append(regions, scoring.EnrichRegion(r))
	}

	filtered := filtering.Apply(enriched, e.state.Narratives, sel)

	return heatmap.View{
		Hotspots:       filtered.Hotspots,
		Regions:        regions,
		Narratives:     filtered.Narratives,
		Alerts:         alerting.Derive(filtered.Hotspots, e.alertLimit),
		TotalEvents:    e.state.TotalEvents,
		StabilityIndex: scoring.StabilityIndex(regions),
		Categories:     buildCategoryBreakdown(enriched),
		Arcs:           buildArcs(filtered.Hotspots),
		LiveFeed:       e.liveFeed,
	}
}

// buildCategoryBreakdown aggregates the full hotspot set per category.
// The breakdown intentionally ignores the active filter so the category
// pills always show live totals.
func buildCategoryBreakdown(hotspots []heatmap.Hotspot) []heatmap.CategoryBreakdown {
	type bucket struct {
		total  int
		cities map[string]struct{}
		topSev heatmap.Severity
	}

	buckets := make(map[heatmap.Category]*bucket)
	order := make([]heatmap.Category, 0)
	for _, h := range hotspots {
		b, ok := buckets[h.Category]
		if !ok {
			b = &bucket{cities: make(map[string]struct{}), topSev: heatmap.SeverityLow}
			buckets[h.Category] = b
			order = append(order, h.Category)
		}
		b.total += h.Count
		b.cities[h.Label] = struct{}{}
		if severityRank(h.Severity) > severityRank(b.topSev) {
			b.topSev = h.Severity
		}
	}

	out := make([]heatmap.CategoryBreakdown, 0, len(order))
	for _, c := range order {
		b := buckets[c]
		out = append(out, heatmap.CategoryBreakdown{
			Category:    c,
			TotalEvents: b.total,
			CityCount:   len(b.cities),
			TopSeverity: b.topSev,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalEvents > out[j].TotalEvents
	})
	return out
}

func severityRank(s heatmap.Severity) int {
	switch s {
	case heatmap.SeverityHigh:
		return 2
	case heatmap.SeverityMedium:
		return 1
	default:
		return 0
	}
}

// buildArcs finds narratives present in at least two distinct cities and
// returns arc data for each, strongest first.
func buildArcs(hotspots []heatmap.Hotspot) []heatmap.NarrativeArc {
	type arcAgg struct {
		category  heatmap.Category
		strength  int
		locations map[string]heatmap.ArcLocation
	}

	aggs := make(map[string]*arcAgg)
	order := make([]string, 0)
	for _, h := range hotspots {
		lat, lng, ok := h.Coordinates()
		if !ok {
			continue
		}
		for _, id := range h.NarrativeIDs {
			a, found := aggs[id]
			if !found {
				a = &arcAgg{category: h.Category, locations: make(map[string]heatmap.ArcLocation)}
				aggs[id] = a
				order = append(order, id)
			}
			a.strength += h.Count
			a.locations[h.Label] = heatmap.ArcLocation{Lat: lat, Lng: lng, City: h.Label}
		}
	}

	arcs := make([]heatmap.NarrativeArc, 0, len(order))
	for _, id := range order {
		a := aggs[id]
		if len(a.locations) < 2 {
			continue
		}
		locations := make([]heatmap.ArcLocation, 0, len(a.locations))
		for _, loc := range a.locations {
			locations = append(locations, loc)
		}
		sort.Slice(locations, func(i, j int) bool {
			return locations[i].City < locations[j].City
		})
		arcs = append(arcs, heatmap.NarrativeArc{
			NarrativeID: id,
			Category:    a.category,
			Strength:    a.strength,
			Locations:   locations,
		})
	}

	sort.SliceStable(arcs, func(i, j int) bool {
		return arcs[i].Strength > arcs[j].Strength
	})
	if len(arcs) > maxArcs {
		arcs = arcs[:maxArcs]
	}
	return arcs
}
