// internal/service/stream/fallback_test.go

package stream

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infowatch/internal/domain/heatmap"
)

func TestFeedGeneratorRotation(t *testing.T) {
	g := NewFeedGenerator()

	seen := make([]heatmap.StreamEvent, 0, len(feedTemplates))
	for i := 0; i < len(feedTemplates); i++ {
		seen = append(seen, g.Next())
	}

	for i, ev := range seen {
		tpl := feedTemplates[i]
		assert.Equal(t, "event", ev.Type)
		assert.Equal(t, tpl.city, ev.City)
		assert.Equal(t, tpl.category, ev.Category)
		assert.Equal(t, tpl.severity, ev.Severity)
		assert.Equal(t, fmt.Sprintf("%s · %s · %s", tpl.verb, tpl.category, tpl.city), ev.Message)
		require.NotNil(t, ev.Delta)
		assert.GreaterOrEqual(t, *ev.Delta, 0)
		assert.Less(t, *ev.Delta, maxFallbackDelta)
	}

	// The rotation wraps back to the first template
	assert.Equal(t, feedTemplates[0].city, g.Next().City)
}

func TestSeedSnapshot(t *testing.T) {
	snap := SeedSnapshot()
	require.NotNil(t, snap)

	assert.Len(t, snap.Events, 13)
	assert.Len(t, snap.Regions, 6)
	assert.Len(t, snap.Narratives, 6)

	// Total is the sum of region event counters
	assert.Equal(t, 3855, snap.TotalEvents)

	for _, h := range snap.Events {
		require.NotNil(t, h.CX, "hotspot %s", h.Label)
		require.NotNil(t, h.CY, "hotspot %s", h.Label)
		assert.NotEmpty(t, h.Severity)
		assert.NotEmpty(t, h.Category)
		assert.NotNil(t, h.ConfidenceScore)
		assert.NotNil(t, h.ViralityScore)
	}

	for i, n := range snap.Narratives {
		assert.Equal(t, i+1, n.Rank)
	}

	// Each call returns a fresh copy
	snap.Regions[0].Events = 0
	assert.Equal(t, 847, SeedSnapshot().Regions[0].Events)
}
