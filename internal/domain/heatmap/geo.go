// internal/domain/heatmap/geo.go

package heatmap

// PercentToLatLng converts legacy equirectangular map percentages (0-100)
// to geographic coordinates.
func PercentToLatLng(cx, cy float64) (lat, lng float64) {
	lat = 90.0 - (cy/100.0)*180.0
	lng = (cx/100.0)*360.0 - 180.0
	return lat, lng
}

// LatLngToPercent converts geographic coordinates to equirectangular map
// percentages, clamped to [0, 100].
func LatLngToPercent(lat, lng float64) (cx, cy float64) {
	cx = (lng + 180.0) / 360.0 * 100.0
	cy = (90.0 - lat) / 180.0 * 100.0
	return clampPct(cx), clampPct(cy)
}

// Coordinates returns the hotspot's geographic position, deriving it from
// legacy map percentages when explicit lat/lng are absent. The second
// return value is false when the hotspot carries no position at all.
func (h Hotspot) Coordinates() (lat, lng float64, ok bool) {
	if h.Lat != nil && h.Lng != nil {
		return *h.Lat, *h.Lng, true
	}
	if h.CX != nil && h.CY != nil {
		lat, lng = PercentToLatLng(*h.CX, *h.CY)
		return lat, lng, true
	}
	return 0, 0, false
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
