// internal/adapter/storage/heatmap_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"infowatch/internal/domain/heatmap"
)

// HeatmapStore persists snapshot archives and user-submitted flags.
// The engine runs fully in memory; the store is an audit trail and the
// source for later re-aggregation.
type HeatmapStore struct {
	db *pgxpool.Pool
}

// NewHeatmapStore creates a new heatmap store
func NewHeatmapStore(db *pgxpool.Pool) *HeatmapStore {
	return &HeatmapStore{db: db}
}

// Migrate creates the backing tables when they do not exist yet
func (s *HeatmapStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS heatmap_events (
			id           UUID PRIMARY KEY,
			label        TEXT NOT NULL,
			lat          DOUBLE PRECISION,
			lng          DOUBLE PRECISION,
			count        INTEGER NOT NULL,
			category     TEXT NOT NULL,
			severity     TEXT NOT NULL,
			raw          JSONB NOT NULL,
			fetched_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_heatmap_events_fetched_at
			ON heatmap_events (fetched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_heatmap_events_category
			ON heatmap_events (category)`,
		`CREATE TABLE IF NOT EXISTS heatmap_flags (
			id          UUID PRIMARY KEY,
			source_url  TEXT NOT NULL,
			platform    TEXT NOT NULL,
			category    TEXT NOT NULL,
			reason      TEXT NOT NULL,
			confidence  INTEGER,
			lat         DOUBLE PRECISION,
			lng         DOUBLE PRECISION,
			event       JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("error running migration: %w", err)
		}
	}
	return nil
}

// ArchiveSnapshot stores every hotspot of an applied snapshot
func (s *HeatmapStore) ArchiveSnapshot(ctx context.Context, snap *heatmap.Snapshot) error {
	query := `
		INSERT INTO heatmap_events (
			id, label, lat, lng, count, category, severity, raw, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	fetchedAt := time.Now().UTC()
	for _, h := range snap.Events {
		raw, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("error marshaling hotspot %q: %w", h.Label, err)
		}

		var lat, lng *float64
		if la, ln, ok := h.Coordinates(); ok {
			lat, lng = &la, &ln
		}

		_, err = s.db.Exec(
			ctx,
			query,
			uuid.New().String(),
			h.Label,
			lat,
			lng,
			h.Count,
			string(h.Category),
			string(h.Severity),
			raw,
			fetchedAt,
		)
		if err != nil {
			return fmt.Errorf("error archiving hotspot %q: %w", h.Label, err)
		}
	}

	return nil
}

// SaveFlag persists a user-submitted flag together with the hotspot it
// became, returning the flag's assigned ID.
func (s *HeatmapStore) SaveFlag(ctx context.Context, flag heatmap.Flag, event heatmap.Hotspot) (string, error) {
	query := `
		INSERT INTO heatmap_flags (
			id, source_url, platform, category, reason, confidence,
			lat, lng, event, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("error marshaling flag event: %w", err)
	}

	var lat, lng *float64
	if flag.Location != nil {
		lat, lng = &flag.Location.Lat, &flag.Location.Lng
	}

	id := uuid.New().String()
	_, err = s.db.Exec(
		ctx,
		query,
		id,
		flag.SourceURL,
		flag.Platform,
		string(flag.Category),
		flag.Reason,
		flag.Confidence,
		lat,
		lng,
		eventJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("error saving flag: %w", err)
	}

	return id, nil
}

// FlagCount returns the number of flags persisted since the cutoff
func (s *HeatmapStore) FlagCount(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM heatmap_flags WHERE created_at >= $1`,
		since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting flags: %w", err)
	}
	return count, nil
}
