// internal/adapter/upstream/snapshot.go

package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"infowatch/internal/domain/heatmap"
)

// SnapshotClientConfig contains configuration for the snapshot client
type SnapshotClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SnapshotClient fetches full heatmap snapshots over HTTP
type SnapshotClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSnapshotClient creates a new snapshot client
func NewSnapshotClient(config SnapshotClientConfig) *SnapshotClient {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	return &SnapshotClient{
		baseURL:    config.BaseURL,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Fetch retrieves one authoritative snapshot, optionally restricted to a
// category and lookback window.
func (c *SnapshotClient) Fetch(ctx context.Context, category string, hours int) (*heatmap.Snapshot, error) {
	endpoint := c.baseURL + "/heatmap"

	params := url.Values{}
	if category != "" && category != string(heatmap.CategoryAll) {
		params.Set("category", category)
	}
	if hours > 0 {
		params.Set("hours", strconv.Itoa(hours))
	}
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building snapshot request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot endpoint returned status %d", resp.StatusCode)
	}

	var snap heatmap.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("error decoding snapshot payload: %w", err)
	}

	return &snap, nil
}
