// internal/service/filtering/filter.go

package filtering

import (
	"infowatch/internal/domain/heatmap"
)

// Selection is a category multi-select. An empty selection means
// "no filter": every item passes. Selecting every category individually
// behaves identically but the two states are not distinguished to callers.
type Selection struct {
	categories map[heatmap.Category]struct{}
}

// NewSelection returns an empty selection
func NewSelection() *Selection {
	return &Selection{categories: make(map[heatmap.Category]struct{})}
}

// NewSelectionOf builds a selection containing the given categories
func NewSelectionOf(cats ...heatmap.Category) *Selection {
	s := NewSelection()
	for _, c := range cats {
		s.categories[c] = struct{}{}
	}
	return s
}

// Toggle adds a category to the selection, or removes it when already
// present. Toggling the "All" sentinel clears the selection entirely,
// regardless of its current contents.
func (s *Selection) Toggle(c heatmap.Category) {
	if c == heatmap.CategoryAll {
		s.categories = make(map[heatmap.Category]struct{})
		return
	}
	if _, ok := s.categories[c]; ok {
		delete(s.categories, c)
		return
	}
	s.categories[c] = struct{}{}
}

// IsEmpty reports whether no categories are selected
func (s *Selection) IsEmpty() bool {
	return len(s.categories) == 0
}

// Has reports whether the category is selected
func (s *Selection) Has(c heatmap.Category) bool {
	_, ok := s.categories[c]
	return ok
}

// passes implements the filter predicate: empty selection passes all
func (s *Selection) passes(c heatmap.Category) bool {
	if s == nil || s.IsEmpty() {
		return true
	}
	return s.Has(c)
}

// Result holds the category-filtered slices of canonical state.
// Regions are never filtered by category.
type Result struct {
	Hotspots   []heatmap.Hotspot
	Narratives []heatmap.Narrative
}

// Apply filters hotspots and narrative rankings by the selection. The
// inputs are never mutated; filtered narratives are re-ranked 1..n in
// their original feed order when a filter is active.
func Apply(hotspots []heatmap.Hotspot, narratives []heatmap.Narrative, sel *Selection) Result {
	if sel == nil || sel.IsEmpty() {
		return Result{
			Hotspots:   append([]heatmap.Hotspot(nil), hotspots...),
			Narratives: append([]heatmap.Narrative(nil), narratives...),
		}
	}

	out := Result{
		Hotspots:   make([]heatmap.Hotspot, 0, len(hotspots)),
		Narratives: make([]heatmap.Narrative, 0, len(narratives)),
	}
	for _, h := range hotspots {
		if sel.passes(h.Category) {
			out.Hotspots = append(out.Hotspots, h)
		}
	}
	for _, n := range narratives {
		if sel.passes(n.Category) {
			n.Rank = len(out.Narratives) + 1
			out.Narratives = append(out.Narratives, n)
		}
	}
	return out
}
