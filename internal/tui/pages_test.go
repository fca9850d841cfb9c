package tui

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/drafts"
	"github.com/driftstream/driftstream-cli/internal/mock"
	"github.com/driftstream/driftstream-cli/internal/store"
	"github.com/driftstream/driftstream-cli/internal/streamsel"
)

func TestStreamCount(t *testing.T) {
	tests := []struct {
		streamsConfig string
		want          int
	}{
		{"", 0},
		{"not json", 0},
		{`{"selected_streams": {"public": [{"stream_name": "a"}, {"stream_name": "b"}]}}`, 2},
	}
	for _, tt := range tests {
		if got := streamCount(tt.streamsConfig); got != tt.want {
			t.Errorf("streamCount(%q) = %d, want %d", tt.streamsConfig, got, tt.want)
		}
	}
}

func TestCheckboxMark(t *testing.T) {
	if got := checkboxMark(streamsel.CheckState{Checked: true}); got != "[x]" {
		t.Errorf("checked mark = %q", got)
	}
	if got := checkboxMark(streamsel.CheckState{Partial: true}); got != "[~]" {
		t.Errorf("partial mark = %q", got)
	}
	if got := checkboxMark(streamsel.CheckState{}); got != "[ ]" {
		t.Errorf("empty mark = %q", got)
	}
}

func TestJobsPageEmptyView(t *testing.T) {
	p := newJobsPage(DefaultStyles())
	if !strings.Contains(p.View(), "No jobs found") {
		t.Errorf("empty jobs page should show a hint:\n%s", p.View())
	}
}

func TestJobsPageRows(t *testing.T) {
	p := newJobsPage(DefaultStyles())
	p.setJobs([]api.Job{{
		ID:       1,
		Name:     "Nightly sync",
		Activate: true,
		Source:   api.JobEndpoint{Name: "pg", Type: "postgres"},
		Destination: api.JobEndpoint{
			Name: "lake", Type: "s3",
		},
		Frequency: "1-days",
	}})

	view := p.View()
	if !strings.Contains(view, "Nightly sync") || !strings.Contains(view, "pg (postgres)") {
		t.Errorf("jobs table missing row data:\n%s", view)
	}
}

func newTestWizardPage(t *testing.T) *wizardPage {
	t.Helper()
	mock.Latency = 0
	state := store.New(mock.NewServices())
	draftStore := drafts.NewStore(filepath.Join(t.TempDir(), "saved_jobs.json"))
	return newWizardPage(state, draftStore, DefaultStyles(), 100, 30)
}

func TestWizardRowsGroupByNamespace(t *testing.T) {
	p := newTestWizardPage(t)
	p.catalog = mock.SampleCatalog()
	p.rebuildRows()

	var headers, streams int
	for _, r := range p.rows {
		if r.stream == "" {
			headers++
		} else {
			streams++
		}
	}
	if headers != 2 {
		t.Errorf("expected 2 namespace headers, got %d", headers)
	}
	if streams != len(p.catalog.Streams) {
		t.Errorf("expected %d stream rows, got %d", len(p.catalog.Streams), streams)
	}
}

func TestWizardRowsSearchFilter(t *testing.T) {
	p := newTestWizardPage(t)
	p.catalog = mock.SampleCatalog()
	p.search.SetValue("ord")
	p.rebuildRows()

	for _, r := range p.rows {
		if r.stream != "" && !strings.Contains(r.stream, "ord") {
			t.Errorf("unexpected stream %q in filtered rows", r.stream)
		}
	}
	if len(p.rows) == 0 {
		t.Fatalf("search should still match the orders stream")
	}
}

func TestWizardRowsChipFilter(t *testing.T) {
	p := newTestWizardPage(t)
	p.catalog = mock.SampleCatalog()

	for i, chip := range streamsel.Chips {
		if chip == streamsel.ChipFullRefresh {
			p.chip = i
		}
	}
	p.rebuildRows()

	for _, r := range p.rows {
		if r.stream != "" && r.syncMode != streamsel.SyncModeFullRefresh {
			t.Errorf("stream %q has sync mode %q, want full refresh only", r.stream, r.syncMode)
		}
	}
}
