package streamsel

import "strings"

// FilterChip is one of the selectable filter buttons above the stream
// list.
type FilterChip string

const (
	ChipAll         FilterChip = "All tables"
	ChipCDC         FilterChip = "CDC"
	ChipFullRefresh FilterChip = "Full refresh"
	ChipSelected    FilterChip = "Selected"
	ChipNotSelected FilterChip = "Not selected"
)

// Chips is the display order of the filter buttons.
var Chips = []FilterChip{ChipAll, ChipCDC, ChipFullRefresh, ChipSelected, ChipNotSelected}

// Filter is a derived view over the catalog: search text plus filter
// chips. Applying a filter never mutates the selection.
type Filter struct {
	Search string
	Chips  []FilterChip
}

func (f *Filter) has(chip FilterChip) bool {
	for _, c := range f.Chips {
		if c == chip {
			return true
		}
	}
	return false
}

// Apply returns the streams visible under the filter.
func (f *Filter) Apply(c *Catalog) []StreamData {
	visible := make([]StreamData, 0, len(c.Streams))
	for _, sd := range c.Streams {
		visible = append(visible, sd)
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		filtered := visible[:0]
		for _, sd := range visible {
			if strings.Contains(strings.ToLower(sd.Stream.Name), needle) {
				filtered = append(filtered, sd)
			}
		}
		visible = filtered
	}

	if len(f.Chips) == 0 || f.has(ChipAll) {
		return visible
	}

	matchesSelection := func(sd StreamData) bool {
		selected := c.IsSelected(sd.Stream.Namespace, sd.Stream.Name)
		wantSelected := f.has(ChipSelected)
		wantNotSelected := f.has(ChipNotSelected)
		switch {
		case wantSelected && wantNotSelected:
			return true
		case wantSelected:
			return selected
		case wantNotSelected:
			return !selected
		default:
			return true
		}
	}

	syncModeFilterActive := f.has(ChipCDC) || f.has(ChipFullRefresh)

	filtered := visible[:0]
	for _, sd := range visible {
		if !syncModeFilterActive {
			if matchesSelection(sd) {
				filtered = append(filtered, sd)
			}
			continue
		}
		isCDC := f.has(ChipCDC) && sd.SyncMode == SyncModeCDC
		isFullRefresh := f.has(ChipFullRefresh) && sd.SyncMode == SyncModeFullRefresh
		if (isCDC || isFullRefresh) && matchesSelection(sd) {
			filtered = append(filtered, sd)
		}
	}
	return filtered
}
