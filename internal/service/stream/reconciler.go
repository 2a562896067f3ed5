// internal/service/stream/reconciler.go

package stream

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"infowatch/internal/domain/heatmap"
)

// SnapshotFetcher fetches a full authoritative snapshot from upstream
type SnapshotFetcher interface {
	Fetch(ctx context.Context, category string, hours int) (*heatmap.Snapshot, error)
}

// LiveStream is a push-based channel of incremental stream events.
// Connect is attempted exactly once; a failure switches the reconciler
// into fallback mode for its whole lifetime.
type LiveStream interface {
	Connect(ctx context.Context) (<-chan heatmap.StreamEvent, error)
	Close() error
}

// Archiver persists applied snapshots. It is optional; a nil archiver
// leaves the engine fully in-memory.
type Archiver interface {
	ArchiveSnapshot(ctx context.Context, snap *heatmap.Snapshot) error
}

// Sink receives reconciled updates. The engine implements this.
type Sink interface {
	ApplySnapshot(snap *heatmap.Snapshot)
	ApplyStreamEvent(ev heatmap.StreamEvent)
}

// ReconcilerConfig contains configuration for the stream reconciler
type ReconcilerConfig struct {
	SnapshotInterval time.Duration
	FallbackInterval time.Duration
	Window           heatmap.TimeRange
	Category         string
}

// Reconciler merges the periodic snapshot with the live event stream into
// one canonical state, fabricating a synthetic feed when no live
// connection exists. Snapshot replacement always wins over deltas applied
// before it; no causal reordering is attempted.
type Reconciler struct {
	fetcher  SnapshotFetcher
	stream   LiveStream
	archiver Archiver
	sink     Sink
	config   ReconcilerConfig
	feed     *FeedGenerator

	fallback atomic.Bool
	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewReconciler creates a new stream reconciler
func NewReconciler(
	fetcher SnapshotFetcher,
	liveStream LiveStream,
	archiver Archiver,
	sink Sink,
	config ReconcilerConfig,
) *Reconciler {
	if config.SnapshotInterval == 0 {
		config.SnapshotInterval = 30 * time.Second
	}
	if config.FallbackInterval == 0 {
		config.FallbackInterval = 3 * time.Second
	}
	if config.Window == "" {
		config.Window = heatmap.Range24h
	}

	return &Reconciler{
		fetcher:  fetcher,
		stream:   liveStream,
		archiver: archiver,
		sink:     sink,
		config:   config,
		feed:     NewFeedGenerator(),
	}
}

// Start begins the reconciliation loop
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return fmt.Errorf("reconciler already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(runCtx)
	}()

	return nil
}

// Stop cancels the timers and closes the live subscription as a unit,
// waiting for the loop to exit or the context to expire.
func (r *Reconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FallbackActive reports whether the synthetic feed generator is driving
// the live feed.
func (r *Reconciler) FallbackActive() bool {
	return r.fallback.Load()
}

func (r *Reconciler) run(ctx context.Context) {
	snapshotTicker := time.NewTicker(r.config.SnapshotInterval)
	defer snapshotTicker.Stop()

	// Immediate first fetch so the first view does not wait a full period
	r.fetchSnapshot(ctx)

	var liveCh <-chan heatmap.StreamEvent
	var fallbackTicker *time.Ticker
	var fallbackCh <-chan time.Time

	enterFallback := func() {
		fallbackTicker = time.NewTicker(r.config.FallbackInterval)
		fallbackCh = fallbackTicker.C
		r.fallback.Store(true)
	}
	defer func() {
		if fallbackTicker != nil {
			fallbackTicker.Stop()
		}
	}()

	// One connection attempt; failure switches to the synthetic feed
	ch, err := r.stream.Connect(ctx)
	if err != nil {
		log.Printf("Live stream unavailable, entering fallback mode: %v", err)
		enterFallback()
	} else {
		liveCh = ch
		defer r.stream.Close()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-snapshotTicker.C:
			r.fetchSnapshot(ctx)

		case ev, ok := <-liveCh:
			if !ok {
				log.Printf("Live stream closed, entering fallback mode")
				liveCh = nil
				enterFallback()
				continue
			}
			r.sink.ApplyStreamEvent(ev)

		case <-fallbackCh:
			r.sink.ApplyStreamEvent(r.feed.Next())
		}
	}
}

// fetchSnapshot fetches and applies one snapshot. Any failure, including
// a malformed payload, retains the previous canonical state unchanged.
func (r *Reconciler) fetchSnapshot(ctx context.Context) {
	snap, err := r.fetcher.Fetch(ctx, r.config.Category, r.config.Window.Hours())
	if err != nil {
		log.Printf("Snapshot fetch failed, retaining previous state: %v", err)
		return
	}
	if snap == nil || snap.Events == nil || snap.Regions == nil || snap.Narratives == nil {
		log.Printf("Snapshot payload malformed, retaining previous state")
		return
	}

	r.sink.ApplySnapshot(snap)

	if r.archiver != nil {
		if err := r.archiver.ArchiveSnapshot(ctx, snap); err != nil {
			log.Printf("Snapshot archive failed: %v", err)
		}
	}
}
