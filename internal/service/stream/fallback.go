// internal/service/stream/fallback.go

package stream

import (
	"fmt"
	"math/rand"
	"time"

	"infowatch/internal/domain/heatmap"
)

// feedTemplate is one entry in the synthetic feed rotation
type feedTemplate struct {
	city     string
	category heatmap.Category
	severity heatmap.Severity
	verb     string
}

// The fixed rotation used in fallback mode. Entries cycle in order so the
// feed stays varied without any upstream connection.
var feedTemplates = []feedTemplate{
	{"Jakarta", heatmap.CategoryHealth, heatmap.SeverityMedium, "New event detected"},
	{"Washington DC", heatmap.CategoryPolitics, heatmap.SeverityHigh, "Spike alert"},
	{"London", heatmap.CategoryFinance, heatmap.SeverityHigh, "Cluster identified"},
	{"Berlin", heatmap.CategoryClimate, heatmap.SeverityMedium, "Narrative variant"},
	{"New York", heatmap.CategoryHealth, heatmap.SeverityHigh, "Agent verdict: FALSE"},
	{"Tokyo", heatmap.CategoryScience, heatmap.SeverityMedium, "Trending narrative"},
	{"Moscow", heatmap.CategoryPolitics, heatmap.SeverityHigh, "Coordinated activity"},
	{"Delhi", heatmap.CategoryHealth, heatmap.SeverityHigh, "Spike anomaly detected"},
	{"Beijing", heatmap.CategoryScience, heatmap.SeverityHigh, "State-linked network"},
	{"Tehran", heatmap.CategoryConflict, heatmap.SeverityHigh, "Narrative flagged"},
}

// maxFallbackDelta bounds the synthetic delta: values are drawn uniformly
// from [0, maxFallbackDelta).
const maxFallbackDelta = 8

// FeedGenerator fabricates live-feed frames when no upstream stream
// connection could be established.
type FeedGenerator struct {
	idx int
	rng *rand.Rand
}

// NewFeedGenerator creates a generator starting at the top of the rotation
func NewFeedGenerator() *FeedGenerator {
	return &FeedGenerator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next synthetic stream event in the rotation
func (g *FeedGenerator) Next() heatmap.StreamEvent {
	tpl := feedTemplates[g.idx%len(feedTemplates)]
	g.idx++

	delta := g.rng.Intn(maxFallbackDelta)
	return heatmap.StreamEvent{
		Type:      "event",
		Message:   fmt.Sprintf("%s · %s · %s", tpl.verb, tpl.category, tpl.city),
		Delta:     &delta,
		City:      tpl.city,
		Category:  tpl.category,
		Severity:  tpl.severity,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
