// internal/engine/engine_test.go

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infowatch/internal/domain/heatmap"
	"infowatch/internal/service/simulation"
	"infowatch/internal/service/stream"
)

func fp(v float64) *float64 { return &v }

func seededEngine() *Engine {
	return New(Config{}, nil, nil, stream.SeedSnapshot())
}

func TestNewSeedsInitialView(t *testing.T) {
	eng := seededEngine()
	view := eng.View()

	assert.Len(t, view.Hotspots, 13)
	assert.Len(t, view.Regions, 6)
	assert.Len(t, view.Narratives, 6)
	assert.Equal(t, 3855, view.TotalEvents)
	assert.NotEmpty(t, view.Alerts)
	assert.LessOrEqual(t, len(view.Alerts), 6)
	require.NotNil(t, view.StabilityIndex)
	assert.NotEmpty(t, view.Categories)

	// Every hotspot comes back scored
	for _, h := range view.Hotspots {
		require.NotNil(t, h.RealityScore, "hotspot %s", h.Label)
		assert.NotEmpty(t, h.RiskLevel)
		assert.NotEmpty(t, h.NextAction)
		assert.NotZero(t, h.DisplayCount)
	}
	for _, r := range view.Regions {
		require.NotNil(t, r.RealityScore, "region %s", r.Name)
		assert.NotEmpty(t, r.RiskLevel)
	}
}

func TestNewWithoutInitialSnapshot(t *testing.T) {
	eng := New(Config{}, nil, nil, nil)
	view := eng.View()

	assert.Empty(t, view.Hotspots)
	assert.Zero(t, view.TotalEvents)
	assert.Nil(t, view.StabilityIndex)
}

func TestApplySnapshotReplacesState(t *testing.T) {
	eng := seededEngine()

	eng.ApplySnapshot(&heatmap.Snapshot{
		Events:      []heatmap.Hotspot{{Label: "Oslo", Count: 40, Severity: heatmap.SeverityLow, Category: heatmap.CategoryClimate}},
		Regions:     []heatmap.Region{{Name: "Europe", Events: 40, Delta: 1, Severity: heatmap.SeverityLow}},
		Narratives:  []heatmap.Narrative{{Rank: 1, Title: "single claim", Category: heatmap.CategoryClimate}},
		TotalEvents: 40,
	})

	view := eng.View()
	require.Len(t, view.Hotspots, 1)
	assert.Equal(t, "Oslo", view.Hotspots[0].Label)

	// The counter resyncs even when the authoritative value is lower
	assert.Equal(t, 40, view.TotalEvents)
	assert.Equal(t, 40, eng.TotalEvents())
}

func TestApplyStreamEvent(t *testing.T) {
	eng := seededEngine()
	before := eng.TotalEvents()

	delta := 5
	eng.ApplyStreamEvent(heatmap.StreamEvent{
		Type:    "event",
		Message: "Spike alert · Health · Delhi",
		Delta:   &delta,
	})

	view := eng.View()
	assert.Equal(t, before+5, view.TotalEvents)
	require.NotNil(t, view.LiveFeed)
	assert.Equal(t, "Spike alert · Health · Delhi", view.LiveFeed.Message)

	// A frame without a message keeps the previous live feed entry
	zero := 0
	eng.ApplyStreamEvent(heatmap.StreamEvent{Delta: &zero})
	view = eng.View()
	assert.Equal(t, before+5, view.TotalEvents)
	require.NotNil(t, view.LiveFeed)
	assert.Equal(t, "Spike alert · Health · Delhi", view.LiveFeed.Message)
}

func TestAddFlagEvent(t *testing.T) {
	eng := seededEngine()
	before := eng.TotalEvents()

	cx, cy := 50.0, 50.0
	eng.AddFlagEvent(heatmap.Hotspot{
		CX: &cx, CY: &cy,
		Label:    "X/Twitter",
		Count:    1,
		Severity: heatmap.SeverityMedium,
		Category: "Deepfake",
	})

	view := eng.View()
	require.Len(t, view.Hotspots, 14)
	assert.Equal(t, "X/Twitter", view.Hotspots[0].Label)
	assert.Equal(t, before+1, view.TotalEvents)
}

func TestAddFlagEventCapsHotspots(t *testing.T) {
	eng := New(Config{MaxHotspots: 3}, nil, nil, stream.SeedSnapshot())

	eng.AddFlagEvent(heatmap.Hotspot{Label: "Flagged", Count: 1, Severity: heatmap.SeverityLow})

	view := eng.ViewFor()
	require.Len(t, view.Hotspots, 3)
	assert.Equal(t, "Flagged", view.Hotspots[0].Label)
}

func TestToggleCategory(t *testing.T) {
	eng := seededEngine()

	eng.ToggleCategory(heatmap.CategoryHealth)
	view := eng.View()

	for _, h := range view.Hotspots {
		assert.Equal(t, heatmap.CategoryHealth, h.Category)
	}
	for i, n := range view.Narratives {
		assert.Equal(t, heatmap.CategoryHealth, n.Category)
		assert.Equal(t, i+1, n.Rank)
	}

	// Regions and the category breakdown ignore the filter
	assert.Len(t, view.Regions, 6)
	assert.Greater(t, len(view.Categories), 1)

	// The All sentinel clears the selection
	eng.ToggleCategory(heatmap.CategoryAll)
	assert.Len(t, eng.View().Hotspots, 13)
}

func TestAlertsDeriveFromFilteredHotspots(t *testing.T) {
	eng := seededEngine()

	eng.ToggleCategory(heatmap.CategoryFinance)
	view := eng.View()

	// The Finance seed hotspot is neither coordinated, spiking, nor
	// critical, so no alert survives the filter
	assert.Empty(t, view.Alerts)
}

func TestViewForLeavesEngineStateUntouched(t *testing.T) {
	eng := seededEngine()

	scoped := eng.ViewFor(heatmap.CategoryPolitics)
	for _, h := range scoped.Hotspots {
		assert.Equal(t, heatmap.CategoryPolitics, h.Category)
	}

	assert.Len(t, eng.View().Hotspots, 13)
}

func TestSetVizMode(t *testing.T) {
	eng := seededEngine()

	volumeView := eng.View()
	eng.SetVizMode(heatmap.VizRisk)
	riskView := eng.View()

	// New York: round(312 * 0.87 * 1.4) = 380
	assert.Equal(t, 312, volumeView.Hotspots[0].DisplayCount)
	assert.Equal(t, 380, riskView.Hotspots[0].DisplayCount)
}

func TestSubscribeLifecycle(t *testing.T) {
	eng := seededEngine()

	id, ch := eng.Subscribe()

	// The current view arrives immediately
	select {
	case view := <-ch:
		assert.Equal(t, 3855, view.TotalEvents)
	default:
		t.Fatal("expected an immediate view on subscribe")
	}

	eng.ToggleCategory(heatmap.CategoryHealth)
	select {
	case view := <-ch:
		assert.NotEmpty(t, view.Hotspots)
		for _, h := range view.Hotspots {
			assert.Equal(t, heatmap.CategoryHealth, h.Category)
		}
	default:
		t.Fatal("expected a view after a filter change")
	}

	eng.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
}

func TestStopClosesSubscribers(t *testing.T) {
	eng := seededEngine()

	_, ch := eng.Subscribe()
	eng.Stop()

	<-ch // drain the immediate view
	_, open := <-ch
	assert.False(t, open)

	// Subscribing after Stop yields a closed channel
	_, late := eng.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestSimulateWithoutClient(t *testing.T) {
	eng := seededEngine()

	result := eng.Simulate(context.Background(), heatmap.SimulationRequest{HotspotLabel: "London"})
	assert.Equal(t, simulation.FallbackResult(), result)
}

func TestViewArcs(t *testing.T) {
	lat1, lng1 := 40.7, -74.0
	lat2, lng2 := 51.5, -0.1
	lat3, lng3 := 35.7, 139.7

	eng := New(Config{}, nil, nil, &heatmap.Snapshot{
		Events: []heatmap.Hotspot{
			{Label: "New York", Lat: &lat1, Lng: &lng1, Count: 300, Severity: heatmap.SeverityHigh, Category: heatmap.CategoryHealth, NarrativeIDs: []string{"n1"}},
			{Label: "London", Lat: &lat2, Lng: &lng2, Count: 200, Severity: heatmap.SeverityHigh, Category: heatmap.CategoryHealth, NarrativeIDs: []string{"n1", "n2"}},
			{Label: "Tokyo", Lat: &lat3, Lng: &lng3, Count: 100, Severity: heatmap.SeverityMedium, Category: heatmap.CategoryScience, NarrativeIDs: []string{"n2"}},
		},
		Regions:     []heatmap.Region{},
		Narratives:  []heatmap.Narrative{},
		TotalEvents: 600,
	})

	view := eng.View()
	require.Len(t, view.Arcs, 2)

	// Strongest first: n1 spans New York + London (500) over n2 (300)
	assert.Equal(t, "n1", view.Arcs[0].NarrativeID)
	assert.Equal(t, 500, view.Arcs[0].Strength)
	require.Len(t, view.Arcs[0].Locations, 2)
	assert.Equal(t, "London", view.Arcs[0].Locations[0].City)
	assert.Equal(t, "New York", view.Arcs[0].Locations[1].City)

	assert.Equal(t, "n2", view.Arcs[1].NarrativeID)
	assert.Equal(t, 300, view.Arcs[1].Strength)
}

func TestViewCategoryBreakdown(t *testing.T) {
	eng := New(Config{}, nil, nil, &heatmap.Snapshot{
		Events: []heatmap.Hotspot{
			{Label: "New York", Count: 300, Severity: heatmap.SeverityHigh, Category: heatmap.CategoryHealth},
			{Label: "London", Count: 200, Severity: heatmap.SeverityLow, Category: heatmap.CategoryHealth},
			{Label: "Tokyo", Count: 100, Severity: heatmap.SeverityMedium, Category: heatmap.CategoryScience},
		},
		Regions:     []heatmap.Region{},
		Narratives:  []heatmap.Narrative{},
		TotalEvents: 600,
	})

	view := eng.View()
	require.Len(t, view.Categories, 2)

	health := view.Categories[0]
	assert.Equal(t, heatmap.CategoryHealth, health.Category)
	assert.Equal(t, 500, health.TotalEvents)
	assert.Equal(t, 2, health.CityCount)
	assert.Equal(t, heatmap.SeverityHigh, health.TopSeverity)

	science := view.Categories[1]
	assert.Equal(t, heatmap.CategoryScience, science.Category)
	assert.Equal(t, heatmap.SeverityMedium, science.TopSeverity)
}

func TestProvidedScoresSurviveView(t *testing.T) {
	eng := New(Config{}, nil, nil, &heatmap.Snapshot{
		Events: []heatmap.Hotspot{{
			Label:        "London",
			Count:        245,
			Severity:     heatmap.SeverityHigh,
			Category:     heatmap.CategoryHealth,
			RealityScore: fp(35),
			NextAction:   "NOTIFY: issue NHS rebuttal",
		}},
		Regions:     []heatmap.Region{},
		Narratives:  []heatmap.Narrative{},
		TotalEvents: 245,
	})

	view := eng.View()
	require.Len(t, view.Hotspots, 1)
	assert.Equal(t, 35.0, *view.Hotspots[0].RealityScore)
	assert.Equal(t, heatmap.RiskCritical, view.Hotspots[0].RiskLevel)
	assert.Equal(t, "NOTIFY: issue NHS rebuttal", view.Hotspots[0].NextAction)

	// CRITICAL risk qualifies the hotspot as an alert with the verb
	// prefix stripped from its action
	require.Len(t, view.Alerts, 1)
	assert.Equal(t, "issue NHS rebuttal", view.Alerts[0].Msg)
	assert.Equal(t, "London", view.Alerts[0].City)
}
