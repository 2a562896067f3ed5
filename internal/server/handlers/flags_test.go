// internal/server/handlers/flags_test.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infowatch/internal/domain/heatmap"
)

type fakeFlagStore struct {
	saved []heatmap.Flag
	err   error
}

func (s *fakeFlagStore) SaveFlag(ctx context.Context, flag heatmap.Flag, event heatmap.Hotspot) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, flag)
	return "flag-123", nil
}

func submitFlag(t *testing.T, handler *FlagHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/heatmap/flags", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SubmitFlag(rec, req)
	return rec
}

func TestSubmitFlag(t *testing.T) {
	eng := testEngine()
	store := &fakeFlagStore{}
	handler := NewFlagHandler(eng, store)
	before := eng.TotalEvents()

	rec := submitFlag(t, handler, `{
		"source_url": "https://example.com/video/123",
		"platform": "tiktok",
		"confidence": 85,
		"location": {"lat": 51.5, "lng": -0.1}
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		OK    bool            `json:"ok"`
		ID    string          `json:"id"`
		Event heatmap.Hotspot `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "flag-123", resp.ID)
	assert.Equal(t, "TikTok", resp.Event.Label)
	assert.Equal(t, 1, resp.Event.Count)
	assert.Equal(t, heatmap.SeverityHigh, resp.Event.Severity)
	assert.Equal(t, heatmap.Category("Deepfake"), resp.Event.Category)
	require.NotNil(t, resp.Event.Lat)
	assert.Equal(t, 51.5, *resp.Event.Lat)

	// The flag reached both the store and the live map
	require.Len(t, store.saved, 1)
	assert.Equal(t, "https://example.com/video/123", store.saved[0].SourceURL)
	assert.Equal(t, before+1, eng.TotalEvents())
	assert.Equal(t, "TikTok", eng.View().Hotspots[0].Label)
}

func TestSubmitFlagDefaults(t *testing.T) {
	store := &fakeFlagStore{}
	handler := NewFlagHandler(testEngine(), store)

	rec := submitFlag(t, handler, `{"source_url": "https://example.com/x"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "web", store.saved[0].Platform)
	assert.Equal(t, heatmap.Category("Deepfake"), store.saved[0].Category)
	assert.Equal(t, "user_suspected_ai_video", store.saved[0].Reason)

	var resp struct {
		Event heatmap.Hotspot `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// No location: centered with an explicit marker and a medium default
	assert.Equal(t, "Web (unknown location)", resp.Event.Label)
	assert.Equal(t, heatmap.SeverityMedium, resp.Event.Severity)
	require.NotNil(t, resp.Event.CX)
	assert.Equal(t, 50.0, *resp.Event.CX)
}

func TestSubmitFlagValidation(t *testing.T) {
	handler := NewFlagHandler(testEngine(), nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{not json`},
		{"missing source url", `{"platform": "web"}`},
		{"short source url", `{"source_url": "x"}`},
		{"latitude out of range", `{"source_url": "https://example.com/x", "location": {"lat": 91, "lng": 0}}`},
		{"longitude out of range", `{"source_url": "https://example.com/x", "location": {"lat": 0, "lng": -181}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := submitFlag(t, handler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitFlagStoreFailureIsBestEffort(t *testing.T) {
	eng := testEngine()
	handler := NewFlagHandler(eng, &fakeFlagStore{err: errors.New("connection refused")})
	before := eng.TotalEvents()

	rec := submitFlag(t, handler, `{"source_url": "https://example.com/x"}`)

	// Persistence failure never blocks the flag from reaching the map
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, before+1, eng.TotalEvents())

	var resp struct {
		OK bool   `json:"ok"`
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Empty(t, resp.ID)
}

func TestSubmitFlagWithoutStore(t *testing.T) {
	handler := NewFlagHandler(testEngine(), nil)

	rec := submitFlag(t, handler, `{"source_url": "https://example.com/x"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPrettyPlatformLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"twitter", "X / Twitter"},
		{"x", "X / Twitter"},
		{"youtube", "YouTube"},
		{"tiktok", "TikTok"},
		{"instagram", "Instagram"},
		{"telegram", "Telegram"},
		{"", "Web"},
		{"mastodon", "Mastodon"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, prettyPlatformLabel(tt.in), "platform %q", tt.in)
	}
}
