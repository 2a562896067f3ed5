// internal/domain/heatmap/model.go

package heatmap

// Category classifies a misinformation narrative or hotspot
type Category string

// Known categories
const (
	CategoryHealth   Category = "Health"
	CategoryPolitics Category = "Politics"
	CategoryFinance  Category = "Finance"
	CategoryScience  Category = "Science"
	CategoryConflict Category = "Conflict"
	CategoryClimate  Category = "Climate"
	CategoryGeneral  Category = "General"

	// CategoryAll is the filter sentinel that clears any category selection
	CategoryAll Category = "All"
)

// Severity is the coarse, author-set severity of a hotspot
type Severity string

// Severity values
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskLevel is the categorical bucket derived from the reality score
type RiskLevel string

// Risk levels, worst first
const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// TrendDirection describes short-term movement of a signal
type TrendDirection string

// Trend directions
const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendSame TrendDirection = "same"
)

// VizMode selects how display counts are computed
type VizMode string

// Visualization modes
const (
	VizVolume VizMode = "volume"
	VizRisk   VizMode = "risk"
)

// TimeRange is a lookback window key for time-bucketed counts
type TimeRange string

// Supported time ranges
const (
	Range1h  TimeRange = "1h"
	Range24h TimeRange = "24h"
	Range7d  TimeRange = "7d"
)

// Hours returns the lookback window in hours for upstream queries
func (t TimeRange) Hours() int {
	switch t {
	case Range1h:
		return 1
	case Range7d:
		return 168
	default:
		return 24
	}
}

// PlatformShare is one platform's share of a hotspot's volume.
// Percentages need not sum to 100.
type PlatformShare struct {
	Name string  `json:"name"`
	Pct  float64 `json:"pct"`
}

// Hotspot is a geotagged cluster of misinformation activity.
//
// Raw fields arrive from the snapshot API; the derived block is written
// only by the scoring service and is never set by callers.
type Hotspot struct {
	Label string `json:"label"`

	// Geographic coordinates, preferred when present
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`

	// Legacy equirectangular map percentages (0-100), kept for
	// backward compatibility with older snapshot payloads
	CX *float64 `json:"cx,omitempty"`
	CY *float64 `json:"cy,omitempty"`

	Count    int      `json:"count"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`

	ConfidenceScore *float64          `json:"confidence_score,omitempty"`
	ViralityScore   *float64          `json:"virality_score,omitempty"`
	Trend           TrendDirection    `json:"trend,omitempty"`
	Platforms       []PlatformShare   `json:"platforms,omitempty"`
	TopClaims       []string          `json:"topClaims,omitempty"`
	TimeData        map[TimeRange]int `json:"timeData,omitempty"`
	IsCoordinated   bool              `json:"is_coordinated"`
	IsSpikeAnomaly  bool              `json:"is_spike_anomaly"`
	NarrativeIDs    []string          `json:"narrative_ids,omitempty"`

	// Derived fields, written by the scoring service
	RealityScore *float64  `json:"reality_score,omitempty"`
	RiskLevel    RiskLevel `json:"risk_level,omitempty"`
	NextAction   string    `json:"next_action,omitempty"`
	DisplayCount int       `json:"displayCount"`
}

// Region is an aggregate of hotspots for a macro-area. Its derived scores
// are computed from region-level inputs, not rolled up from member hotspots.
type Region struct {
	Name     string   `json:"name"`
	Events   int      `json:"events"`
	Delta    int      `json:"delta"`
	Severity Severity `json:"severity"`

	RealityScore *float64  `json:"reality_score,omitempty"`
	RiskLevel    RiskLevel `json:"risk_level,omitempty"`
	NextAction   string    `json:"next_action,omitempty"`
}

// Narrative is a ranked trending claim
type Narrative struct {
	Rank     int            `json:"rank"`
	Title    string         `json:"title"`
	Category Category       `json:"category"`
	Volume   int            `json:"volume"`
	Trend    TrendDirection `json:"trend"`
}

// AlertType distinguishes why a hotspot was surfaced as an alert
type AlertType string

// Alert types
const (
	AlertCoordinated AlertType = "coordinated"
	AlertSpike       AlertType = "spike"
)

// Alert is a derived view of a hotspot that warrants attention.
// Alerts are never persisted.
type Alert struct {
	Type      AlertType `json:"type"`
	City      string    `json:"city"`
	Msg       string    `json:"msg"`
	RiskLevel RiskLevel `json:"riskLevel"`
}

// Snapshot is a full authoritative replacement of canonical state,
// as returned by GET /heatmap.
type Snapshot struct {
	Events      []Hotspot   `json:"events"`
	Regions     []Region    `json:"regions"`
	Narratives  []Narrative `json:"narratives"`
	TotalEvents int         `json:"total_events"`
}

// State is the engine's canonical state
type State struct {
	Hotspots    []Hotspot
	Regions     []Region
	Narratives  []Narrative
	TotalEvents int
}

// StreamEvent is a single frame pushed over the live channel
type StreamEvent struct {
	Type      string   `json:"type,omitempty"`
	Message   string   `json:"message,omitempty"`
	Delta     *int     `json:"delta,omitempty"`
	City      string   `json:"city,omitempty"`
	Category  Category `json:"category,omitempty"`
	Severity  Severity `json:"severity,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// SimulationRequest asks for a spread projection for one hotspot
type SimulationRequest struct {
	HotspotLabel     string   `json:"hotspot_label"`
	Category         Category `json:"category"`
	TimeHorizonHours int      `json:"time_horizon_hours"`
}

// SpreadCity is one projected spread target
type SpreadCity struct {
	City           string `json:"city"`
	ProjectedCount int    `json:"projectedCount"`
}

// SimulationResult is the normalized outcome of a spread simulation
type SimulationResult struct {
	Confidence      float64      `json:"confidence"`
	Model           string       `json:"model"`
	ProjectedSpread []SpreadCity `json:"projected_spread"`
}

// CategoryBreakdown aggregates canonical hotspots per category
type CategoryBreakdown struct {
	Category    Category `json:"category"`
	TotalEvents int      `json:"total_events"`
	CityCount   int      `json:"city_count"`
	TopSeverity Severity `json:"top_severity"`
}

// ArcLocation is a single city within a narrative arc
type ArcLocation struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	City string  `json:"city"`
}

// NarrativeArc is a narrative that has spread to at least two cities
type NarrativeArc struct {
	NarrativeID string        `json:"narrative_id"`
	Category    Category      `json:"category"`
	Strength    int           `json:"strength"`
	Locations   []ArcLocation `json:"locations"`
}

// GeoPoint is a validated lat/lng pair from user-reported flags
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Flag is a user-submitted report of suspected synthetic or misleading
// content, forwarded by the browser extension.
type Flag struct {
	SourceURL  string    `json:"source_url"`
	Platform   string    `json:"platform"`
	Category   Category  `json:"category"`
	Reason     string    `json:"reason"`
	Confidence *int      `json:"confidence,omitempty"`
	Location   *GeoPoint `json:"location,omitempty"`
}

// View is a fully derived, read-only projection of canonical state.
// Every canonical-state or filter-state change produces a new View.
type View struct {
	Hotspots       []Hotspot           `json:"events"`
	Regions        []Region            `json:"regions"`
	Narratives     []Narrative         `json:"narratives"`
	Alerts         []Alert             `json:"alerts"`
	TotalEvents    int                 `json:"total_events"`
	StabilityIndex *float64            `json:"stability_index,omitempty"`
	Categories     []CategoryBreakdown `json:"categories,omitempty"`
	Arcs           []NarrativeArc      `json:"arcs,omitempty"`
	LiveFeed       *StreamEvent        `json:"live_feed,omitempty"`
}
