package viewmodel

import "slices"

// PageItem is one element of the page-number control: either a page
// button or an ellipsis standing for a run of omitted pages.
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// PageItems returns the page-number control for the given window. The first
// and last pages are always shown, as is every page within one of current.
// Each gap between two shown pages becomes a single ellipsis.
func PageItems(current, total int) []PageItem {
	if total < 1 {
		return nil
	}
	current = min(max(current, 1), total)

	shown := []int{1, total}
	for p := current - 1; p <= current+1; p++ {
		if p >= 1 && p <= total {
			shown = append(shown, p)
		}
	}
	slices.Sort(shown)
	shown = slices.Compact(shown)

	items := make([]PageItem, 0, len(shown)*2)
	for i, p := range shown {
		if i > 0 && shown[i-1] != p-1 {
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Page: p, Current: p == current})
	}
	return items
}
