// Package streamsel tracks which discovered source streams are part of a
// job and how each one replicates. Selection state is the wire shape the
// backend expects in streams_config; checkbox state at the namespace and
// global level is always recomputed from the selection, never cached.
package streamsel

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// SyncMode is the per-stream replication strategy.
type SyncMode string

const (
	SyncModeFullRefresh SyncMode = "full_refresh"
	SyncModeCDC         SyncMode = "cdc"
)

// Stream is one discoverable table or collection within a source.
type Stream struct {
	Name               string                 `json:"name"`
	Namespace          string                 `json:"namespace"`
	TypeSchema         map[string]interface{} `json:"type_schema,omitempty"`
	SupportedSyncModes []string               `json:"supported_sync_modes,omitempty"`
}

// StreamData pairs a stream with its replication settings.
type StreamData struct {
	Stream   Stream   `json:"stream"`
	SyncMode SyncMode `json:"sync_mode"`
}

// SelectedStream is the selection entry stored per namespace.
type SelectedStream struct {
	StreamName     string `json:"stream_name"`
	PartitionRegex string `json:"partition_regex"`
	Normalization  bool   `json:"normalization"`
}

// Catalog is the streams document exchanged with the backend: the full
// discovered stream list plus the per-namespace selection.
type Catalog struct {
	SelectedStreams map[string][]SelectedStream `json:"selected_streams"`
	Streams         []StreamData                `json:"streams"`
}

// NewCatalog builds an empty selection over the given streams.
func NewCatalog(streams []StreamData) *Catalog {
	return &Catalog{
		SelectedStreams: make(map[string][]SelectedStream),
		Streams:         streams,
	}
}

// Namespaces returns the sorted list of namespaces present in the stream
// list.
func (c *Catalog) Namespaces() []string {
	seen := make(map[string]bool)
	var namespaces []string
	for _, sd := range c.Streams {
		if !seen[sd.Stream.Namespace] {
			seen[sd.Stream.Namespace] = true
			namespaces = append(namespaces, sd.Stream.Namespace)
		}
	}
	sort.Strings(namespaces)
	return namespaces
}

// Grouped returns the streams of each namespace, preserving discovery
// order within a namespace.
func (c *Catalog) Grouped() map[string][]StreamData {
	grouped := make(map[string][]StreamData)
	for _, sd := range c.Streams {
		grouped[sd.Stream.Namespace] = append(grouped[sd.Stream.Namespace], sd)
	}
	return grouped
}

// IsSelected reports whether the named stream is selected in its
// namespace.
func (c *Catalog) IsSelected(namespace, name string) bool {
	return lo.SomeBy(c.SelectedStreams[namespace], func(s SelectedStream) bool {
		return s.StreamName == name
	})
}

// Select adds a stream to the selection with default metadata. Selecting
// an already-selected stream is a no-op.
func (c *Catalog) Select(namespace, name string) {
	if c.IsSelected(namespace, name) {
		return
	}
	c.SelectedStreams[namespace] = append(c.SelectedStreams[namespace], SelectedStream{
		StreamName:     name,
		PartitionRegex: "",
		Normalization:  false,
	})
}

// Deselect removes a stream from the selection. Deselecting a stream that
// is not selected is a no-op.
func (c *Catalog) Deselect(namespace, name string) {
	c.SelectedStreams[namespace] = lo.Filter(c.SelectedStreams[namespace],
		func(s SelectedStream, _ int) bool {
			return s.StreamName != name
		})
}

// SetNamespace forces every stream in the namespace to the given checked
// state. The namespace entry is rewritten wholesale: unchecking empties
// it, checking repopulates it with fresh default metadata. Per-stream
// partition regex and normalization customizations do not survive the
// rewrite.
func (c *Catalog) SetNamespace(namespace string, checked bool) {
	if !checked {
		c.SelectedStreams[namespace] = []SelectedStream{}
		return
	}
	var entries []SelectedStream
	for _, sd := range c.Streams {
		if sd.Stream.Namespace != namespace {
			continue
		}
		entries = append(entries, SelectedStream{
			StreamName:     sd.Stream.Name,
			PartitionRegex: "",
			Normalization:  false,
		})
	}
	c.SelectedStreams[namespace] = entries
}

// SetAll cascades the namespace rewrite to every namespace.
func (c *Catalog) SetAll(checked bool) {
	for _, namespace := range c.Namespaces() {
		c.SetNamespace(namespace, checked)
	}
}

// CheckState is a tri-state checkbox value.
type CheckState struct {
	Checked bool
	Partial bool
}

// NamespaceState recomputes the namespace checkbox: checked iff every
// stream in the namespace is selected, partial when some but not all are.
func (c *Catalog) NamespaceState(namespace string) CheckState {
	streams := lo.Filter(c.Streams, func(sd StreamData, _ int) bool {
		return sd.Stream.Namespace == namespace
	})
	if len(streams) == 0 {
		return CheckState{}
	}
	selected := lo.CountBy(streams, func(sd StreamData) bool {
		return c.IsSelected(namespace, sd.Stream.Name)
	})
	return CheckState{
		Checked: selected == len(streams),
		Partial: selected > 0 && selected < len(streams),
	}
}

// GlobalState recomputes the global checkbox: checked iff every namespace
// is checked.
func (c *Catalog) GlobalState() CheckState {
	namespaces := c.Namespaces()
	if len(namespaces) == 0 {
		return CheckState{}
	}
	checked := 0
	partial := false
	for _, namespace := range namespaces {
		state := c.NamespaceState(namespace)
		if state.Checked {
			checked++
		}
		if state.Partial || state.Checked {
			partial = true
		}
	}
	return CheckState{
		Checked: checked == len(namespaces),
		Partial: partial && checked != len(namespaces),
	}
}

// SetSyncMode changes the replication strategy of one stream. Selection
// state is untouched.
func (c *Catalog) SetSyncMode(namespace, name string, mode SyncMode) {
	for i := range c.Streams {
		if c.Streams[i].Stream.Namespace == namespace && c.Streams[i].Stream.Name == name {
			c.Streams[i].SyncMode = mode
			return
		}
	}
}

// SetPartitionRegex updates the partition regex of a selected stream.
func (c *Catalog) SetPartitionRegex(namespace, name, regex string) {
	entries := c.SelectedStreams[namespace]
	for i := range entries {
		if entries[i].StreamName == name {
			entries[i].PartitionRegex = regex
			return
		}
	}
}

// SetNormalization updates the normalization flag of a selected stream.
func (c *Catalog) SetNormalization(namespace, name string, normalization bool) {
	entries := c.SelectedStreams[namespace]
	for i := range entries {
		if entries[i].StreamName == name {
			entries[i].Normalization = normalization
			return
		}
	}
}

// Encode renders the catalog as the JSON string stored in a job's
// streams_config.
func (c *Catalog) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode streams config: %v", err)
	}
	return string(data), nil
}

// ParseCatalog decodes a streams_config document.
func ParseCatalog(raw string) (*Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal([]byte(raw), &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse streams config: %v", err)
	}
	if catalog.SelectedStreams == nil {
		catalog.SelectedStreams = make(map[string][]SelectedStream)
	}
	return &catalog, nil
}

// SelectedCount returns the total number of selected streams.
func (c *Catalog) SelectedCount() int {
	total := 0
	for _, entries := range c.SelectedStreams {
		total += len(entries)
	}
	return total
}
