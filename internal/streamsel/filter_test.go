package streamsel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterCatalog() *Catalog {
	c := NewCatalog([]StreamData{
		{Stream: Stream{Name: "orders", Namespace: "public"}, SyncMode: SyncModeCDC},
		{Stream: Stream{Name: "order_items", Namespace: "public"}, SyncMode: SyncModeCDC},
		{Stream: Stream{Name: "inventory", Namespace: "warehouse"}, SyncMode: SyncModeFullRefresh},
	})
	c.Select("public", "orders")
	return c
}

func names(streams []StreamData) []string {
	var out []string
	for _, sd := range streams {
		out = append(out, sd.Stream.Name)
	}
	return out
}

func TestFilterEmptyShowsAll(t *testing.T) {
	f := Filter{}
	assert.Len(t, f.Apply(filterCatalog()), 3)
}

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	f := Filter{Search: "ORDER"}
	assert.Equal(t, []string{"orders", "order_items"}, names(f.Apply(filterCatalog())))
}

func TestFilterAllChipShortCircuits(t *testing.T) {
	f := Filter{Chips: []FilterChip{ChipAll, ChipCDC}}
	assert.Len(t, f.Apply(filterCatalog()), 3)
}

func TestFilterSyncModeChips(t *testing.T) {
	f := Filter{Chips: []FilterChip{ChipCDC}}
	assert.Equal(t, []string{"orders", "order_items"}, names(f.Apply(filterCatalog())))

	f = Filter{Chips: []FilterChip{ChipFullRefresh}}
	assert.Equal(t, []string{"inventory"}, names(f.Apply(filterCatalog())))
}

func TestFilterSelectionChips(t *testing.T) {
	f := Filter{Chips: []FilterChip{ChipSelected}}
	assert.Equal(t, []string{"orders"}, names(f.Apply(filterCatalog())))

	f = Filter{Chips: []FilterChip{ChipNotSelected}}
	assert.Equal(t, []string{"order_items", "inventory"}, names(f.Apply(filterCatalog())))

	// Both selection chips cancel out.
	f = Filter{Chips: []FilterChip{ChipSelected, ChipNotSelected}}
	assert.Len(t, f.Apply(filterCatalog()), 3)
}

func TestFilterCombinesSyncModeAndSelection(t *testing.T) {
	f := Filter{Chips: []FilterChip{ChipCDC, ChipNotSelected}}
	assert.Equal(t, []string{"order_items"}, names(f.Apply(filterCatalog())))
}

func TestFilterNeverMutatesSelection(t *testing.T) {
	c := filterCatalog()
	f := Filter{Search: "inventory", Chips: []FilterChip{ChipNotSelected}}
	_ = f.Apply(c)

	assert.True(t, c.IsSelected("public", "orders"))
	assert.Len(t, c.Streams, 3)
}
