// internal/engine/engine.go

package engine

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"infowatch/internal/domain/heatmap"
	"infowatch/internal/service/filtering"
	"infowatch/internal/service/simulation"
)

// NATS subjects for external consumers of derived views
const (
	AlertsSubject = "heatmap.alerts"
	FeedSubject   = "heatmap.feed"
)

// Simulator runs a spread projection. Failures resolve into a fallback
// result, never an error.
type Simulator interface {
	Simulate(ctx context.Context, req heatmap.SimulationRequest) heatmap.SimulationResult
}

// Config contains configuration for the engine
type Config struct {
	AlertLimit  int
	VizMode     heatmap.VizMode
	TimeRange   heatmap.TimeRange
	MaxHotspots int
}

// Engine owns the canonical heatmap state and exposes subscriptions for
// derived views. All mutation funnels through it; other components receive
// read-only copies and return new derived values. Scoring, filtering, and
// alert derivation re-run to completion on every state or filter change.
type Engine struct {
	mu         sync.RWMutex
	state      heatmap.State
	liveFeed   *heatmap.StreamEvent
	selection  *filtering.Selection
	vizMode    heatmap.VizMode
	timeRange  heatmap.TimeRange
	alertLimit int
	maxSpots   int
	lastView   heatmap.View
	subs       map[string]chan heatmap.View
	closed     bool

	simulator Simulator
	eventBus  *nats.Conn
}

// New creates an engine. The initial snapshot seeds canonical state so a
// coherent view exists before any fetch completes; it may be nil. The
// NATS connection is optional and may be nil.
func New(config Config, simulator Simulator, eventBus *nats.Conn, initial *heatmap.Snapshot) *Engine {
	if config.AlertLimit == 0 {
		config.AlertLimit = 6
	}
	if config.VizMode == "" {
		config.VizMode = heatmap.VizVolume
	}
	if config.TimeRange == "" {
		config.TimeRange = heatmap.Range24h
	}
	if config.MaxHotspots == 0 {
		config.MaxHotspots = 400
	}

	e := &Engine{
		selection:  filtering.NewSelection(),
		vizMode:    config.VizMode,
		timeRange:  config.TimeRange,
		alertLimit: config.AlertLimit,
		maxSpots:   config.MaxHotspots,
		subs:       make(map[string]chan heatmap.View),
		simulator:  simulator,
		eventBus:   eventBus,
	}

	if initial != nil {
		e.state = snapshotToState(initial)
	}
	e.lastView = e.buildViewLocked(e.selection)
	return e
}

// ApplySnapshot replaces canonical state wholesale. The total event
// counter resyncs to the snapshot's reported value, which may be lower
// than the in-memory value.
func (e *Engine) ApplySnapshot(snap *heatmap.Snapshot) {
	if snap == nil {
		return
	}
	e.mu.Lock()
	e.state = snapshotToState(snap)
	e.recomputeLocked()
	e.mu.Unlock()

	e.publishAlerts()
}

// ApplyStreamEvent applies one live frame. A message updates the live
// feed; a delta adds to the aggregate event counter. Stream events never
// mutate individual hotspots.
func (e *Engine) ApplyStreamEvent(ev heatmap.StreamEvent) {
	e.mu.Lock()
	if ev.Message != "" {
		feed := ev
		e.liveFeed = &feed
	}
	if ev.Delta != nil && *ev.Delta > 0 {
		e.state.TotalEvents += *ev.Delta
	}
	e.recomputeLocked()
	e.mu.Unlock()

	e.publish(FeedSubject, ev)
}

// AddFlagEvent injects a user-flagged hotspot at the head of canonical
// state, capped at the configured maximum.
func (e *Engine) AddFlagEvent(h heatmap.Hotspot) {
	e.mu.Lock()
	spots := make([]heatmap.Hotspot, 0, len(e.state.Hotspots)+1)
	spots = append(spots, h)
	spots = append(spots, e.state.Hotspots...)
	if len(spots) > e.maxSpots {
		spots = spots[:e.maxSpots]
	}
	e.state.Hotspots = spots
	e.state.TotalEvents += h.Count
	e.recomputeLocked()
	e.mu.Unlock()

	e.publishAlerts()
}

// ToggleCategory flips one category in the filter selection. The "All"
// sentinel clears the selection.
func (e *Engine) ToggleCategory(c heatmap.Category) {
	e.mu.Lock()
	e.selection.Toggle(c)
	e.recomputeLocked()
	e.mu.Unlock()
}

// SetVizMode switches display-count computation between volume and risk
func (e *Engine) SetVizMode(mode heatmap.VizMode) {
	e.mu.Lock()
	e.vizMode = mode
	e.recomputeLocked()
	e.mu.Unlock()
}

// SetTimeRange switches the lookback window used for display counts
func (e *Engine) SetTimeRange(window heatmap.TimeRange) {
	e.mu.Lock()
	e.timeRange = window
	e.recomputeLocked()
	e.mu.Unlock()
}

// View returns the current derived view
func (e *Engine) View() heatmap.View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastView
}

// ViewFor computes a one-off view with an explicit category selection,
// leaving the engine's own filter state untouched. Used by request-scoped
// API reads.
func (e *Engine) ViewFor(cats ...heatmap.Category) heatmap.View {
	sel := filtering.NewSelectionOf(cats...)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buildViewLocked(sel)
}

// TotalEvents returns the aggregate event counter
func (e *Engine) TotalEvents() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.TotalEvents
}

// Simulate delegates to the simulation client. It never fails; with no
// client configured the fixed fallback projection is returned.
func (e *Engine) Simulate(ctx context.Context, req heatmap.SimulationRequest) heatmap.SimulationResult {
	if e.simulator == nil {
		return simulation.FallbackResult()
	}
	return e.simulator.Simulate(ctx, req)
}

// Subscribe registers a derived-view subscription. The current view is
// delivered immediately; subsequent views follow every state or filter
// change. Slow subscribers are skipped, never blocked on.
func (e *Engine) Subscribe() (string, <-chan heatmap.View) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan heatmap.View, 8)
	if e.closed {
		close(ch)
		return id, ch
	}

	e.subs[id] = ch
	ch <- e.lastView
	return id, ch
}

// Unsubscribe removes a subscription and closes its channel
func (e *Engine) Unsubscribe(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch, ok := e.subs[id]; ok {
		delete(e.subs, id)
		close(ch)
	}
}

// Stop closes all subscriptions. The engine itself owns no timers; the
// reconciler's lifecycle is managed by its caller.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}

// recomputeLocked rebuilds the derived view and broadcasts it.
// Callers hold the write lock.
func (e *Engine) recomputeLocked() {
	e.lastView = e.buildViewLocked(e.selection)
	for _, ch := range e.subs {
		select {
		case ch <- e.lastView:
		default:
		}
	}
}

// publishAlerts pushes the current alert set to the event bus
func (e *Engine) publishAlerts() {
	e.mu.RLock()
	alerts := e.lastView.Alerts
	e.mu.RUnlock()
	e.publish(AlertsSubject, alerts)
}

// publish serializes a payload to the event bus, silently skipping when
// no bus is configured.
func (e *Engine) publish(subject string, payload interface{}) {
	if e.eventBus == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s payload: %v", subject, err)
		return
	}
	if err := e.eventBus.Publish(subject, data); err != nil {
		log.Printf("Failed to publish to %s: %v", subject, err)
	}
}

func snapshotToState(snap *heatmap.Snapshot) heatmap.State {
	return heatmap.State{
		Hotspots:    append([]heatmap.Hotspot(nil), snap.Events...),
		Regions:     append([]heatmap.Region(nil), snap.Regions...),
		Narratives:  append([]heatmap.Narrative(nil), snap.Narratives...),
		TotalEvents: snap.TotalEvents,
	}
}
