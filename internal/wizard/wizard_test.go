package wizard

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/drafts"
	"github.com/driftstream/driftstream-cli/internal/mock"
	"github.com/driftstream/driftstream-cli/internal/streamsel"
)

func TestMain(m *testing.M) {
	mock.Latency = 0
	goleak.VerifyTestMain(m)
}

func newTestWizard() (*Wizard, *api.Services) {
	services := mock.NewServices()
	return New(services), services
}

func TestHappyPathCreatesDeactivatedJob(t *testing.T) {
	ctx := context.Background()
	w, services := newTestWizard()

	sources, err := services.Sources.List(ctx)
	require.NoError(t, err)
	require.NoError(t, w.UseExistingSource(&sources[0]))
	assert.Equal(t, StepDestination, w.Step())

	destinations, err := services.Destinations.List(ctx)
	require.NoError(t, err)
	require.NoError(t, w.UseExistingDestination(&destinations[0]))
	assert.Equal(t, StepSchema, w.Step())

	catalog, err := w.DiscoverStreams(ctx)
	require.NoError(t, err)
	catalog.Select("public", "orders")
	require.NoError(t, w.ConfirmSchema())
	assert.Equal(t, StepConfig, w.Step())

	w.SetJobName("Orders to Lake")
	require.NoError(t, w.SetFrequency(6, "hours"))

	job, err := w.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepDone, w.Step())
	assert.Equal(t, "Orders to Lake", job.Name)
	assert.Equal(t, "6-hours", job.Frequency)
	assert.False(t, job.Activate, "new jobs must start paused")
	assert.Contains(t, job.StreamsConfig, "orders")
}

func TestFailedSourceTestKeepsStep(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWizard()

	err := w.TestAndAdvanceSource(ctx, api.EntityBase{
		Name: "Bad", Type: "postgres", Version: "latest",
		Config: `{"host":"unreachable.example.com"}`,
	})
	require.Error(t, err)
	assert.Equal(t, StepSource, w.Step(), "failed test must not advance")
	assert.False(t, w.Source().Tested)
}

func TestPassingSourceTestAdvancesImmediately(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWizard()

	err := w.TestAndAdvanceSource(ctx, api.EntityBase{
		Name: "Good", Type: "postgres", Version: "latest",
		Config: `{"host":"db.example.com"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, StepDestination, w.Step())
	assert.True(t, w.Source().Tested)
}

func TestConfirmSchemaAllowsEmptySelection(t *testing.T) {
	ctx := context.Background()
	w, services := newTestWizard()

	sources, _ := services.Sources.List(ctx)
	require.NoError(t, w.UseExistingSource(&sources[0]))
	destinations, _ := services.Destinations.List(ctx)
	require.NoError(t, w.UseExistingDestination(&destinations[0]))

	// Discovery must have run, but nothing has to be selected.
	err := w.ConfirmSchema()
	require.Error(t, err)
	assert.Equal(t, StepSchema, w.Step())

	_, err = w.DiscoverStreams(ctx)
	require.NoError(t, err)
	require.NoError(t, w.ConfirmSchema())
	assert.Equal(t, StepConfig, w.Step())

	w.SetJobName("Empty selection")
	job, err := w.Create(ctx)
	require.NoError(t, err)
	catalog, err := streamsel.ParseCatalog(job.StreamsConfig)
	require.NoError(t, err)
	assert.Zero(t, catalog.SelectedCount())
}

func TestCatalogDiscardedOnSourceChange(t *testing.T) {
	ctx := context.Background()
	w, services := newTestWizard()

	sources, err := services.Sources.List(ctx)
	require.NoError(t, err)
	destinations, err := services.Destinations.List(ctx)
	require.NoError(t, err)

	require.NoError(t, w.UseExistingSource(&sources[0]))
	require.NoError(t, w.UseExistingDestination(&destinations[0]))
	catalog, err := w.DiscoverStreams(ctx)
	require.NoError(t, err)
	catalog.Select("public", "orders")

	// Re-entering with the same source keeps the selection.
	w.Back()
	w.Back()
	require.NoError(t, w.UseExistingSource(&sources[0]))
	require.NoError(t, w.UseExistingDestination(&destinations[0]))
	same, err := w.DiscoverStreams(ctx)
	require.NoError(t, err)
	assert.True(t, same.IsSelected("public", "orders"))

	// A different source gets a fresh catalog.
	w.Back()
	w.Back()
	require.NoError(t, w.UseExistingSource(&sources[1]))
	require.NoError(t, w.UseExistingDestination(&destinations[0]))
	fresh, err := w.DiscoverStreams(ctx)
	require.NoError(t, err)
	assert.Zero(t, fresh.SelectedCount())
	assert.False(t, fresh.IsSelected("public", "orders"))
}

func TestTestAndAdvanceRequiresName(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWizard()

	err := w.TestAndAdvanceSource(ctx, api.EntityBase{
		Type: "postgres", Version: "latest", Config: `{"host":"db.example.com"}`,
	})
	require.Error(t, err)
	assert.Equal(t, StepSource, w.Step())

	require.NoError(t, w.TestAndAdvanceSource(ctx, api.EntityBase{
		Name: "Named", Type: "postgres", Version: "latest", Config: `{"host":"db.example.com"}`,
	}))

	err = w.TestAndAdvanceDestination(ctx, api.EntityBase{
		Type: "s3", Version: "latest", Config: "{}",
	})
	require.Error(t, err)
	assert.Equal(t, StepDestination, w.Step())
}

func TestStepGateRejectsOutOfOrderCalls(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWizard()

	assert.Error(t, w.ConfirmSchema())
	_, err := w.DiscoverStreams(ctx)
	assert.Error(t, err)
	_, err = w.Create(ctx)
	assert.Error(t, err)
}

func TestBackStopsAtSourceStep(t *testing.T) {
	w, _ := newTestWizard()

	assert.True(t, w.AtStart())
	w.Back()
	assert.Equal(t, StepSource, w.Step())
}

func TestCreateRequiresJobName(t *testing.T) {
	ctx := context.Background()
	w, services := newTestWizard()

	sources, _ := services.Sources.List(ctx)
	require.NoError(t, w.UseExistingSource(&sources[0]))
	destinations, _ := services.Destinations.List(ctx)
	require.NoError(t, w.UseExistingDestination(&destinations[0]))
	catalog, err := w.DiscoverStreams(ctx)
	require.NoError(t, err)
	catalog.SetAll(true)
	require.NoError(t, w.ConfirmSchema())

	_, err = w.Create(ctx)
	require.Error(t, err)
	assert.Equal(t, StepConfig, w.Step())
}

func TestFrequency(t *testing.T) {
	w, _ := newTestWizard()

	assert.Equal(t, "1-days", w.Frequency())
	require.NoError(t, w.SetFrequency(30, "minutes"))
	assert.Equal(t, "30-minutes", w.Frequency())

	assert.Error(t, w.SetFrequency(0, "hours"))
	assert.Error(t, w.SetFrequency(1, "fortnights"))
}

func TestParseFrequency(t *testing.T) {
	value, unit, err := ParseFrequency("6-hours")
	require.NoError(t, err)
	assert.Equal(t, 6, value)
	assert.Equal(t, "hours", unit)

	for _, bad := range []string{"", "hours", "0-hours", "-5-days", "6-lightyears"} {
		_, _, err := ParseFrequency(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestEditSeedsFromJobAndUpdates(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()

	jobs, err := services.Jobs.List(ctx)
	require.NoError(t, err)
	job := jobs[0]

	w := Edit(services, &job)
	assert.True(t, w.Editing())
	assert.Equal(t, StepSchema, w.Step())
	assert.Equal(t, job.Name, w.JobName())
	assert.Equal(t, job.Frequency, w.Frequency())
	require.NotNil(t, w.Catalog())
	assert.Greater(t, w.Catalog().SelectedCount(), 0)

	// Back still reaches the connector steps with tested endpoints.
	w.Back()
	assert.Equal(t, StepDestination, w.Step())
	assert.True(t, w.Destination().Tested)
	destinations, err := services.Destinations.List(ctx)
	require.NoError(t, err)
	require.NoError(t, w.UseExistingDestination(&destinations[0]))

	w.Catalog().SetAll(true)
	require.NoError(t, w.ConfirmSchema())
	w.SetJobName("Renamed Sync")

	updated, err := w.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, updated.ID, "editing must update in place")
	assert.Equal(t, "Renamed Sync", updated.Name)
	assert.Equal(t, job.Activate, updated.Activate, "editing keeps the schedule state")

	all, err := services.Jobs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(jobs), "no new job may be created by an edit")
}

func TestSaveAndResumeDraft(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()
	store := drafts.NewStore(filepath.Join(t.TempDir(), "saved_jobs.json"))

	w := New(services)
	sources, _ := services.Sources.List(ctx)
	require.NoError(t, w.UseExistingSource(&sources[0]))
	destinations, _ := services.Destinations.List(ctx)
	require.NoError(t, w.UseExistingDestination(&destinations[0]))
	catalog, err := w.DiscoverStreams(ctx)
	require.NoError(t, err)
	catalog.Select("public", "orders")
	w.SetJobName("Half done")

	draft, err := w.SaveDraft(store)
	require.NoError(t, err)
	require.NotEmpty(t, draft.ID)

	resumed := Resume(services, draft)
	assert.Equal(t, StepConfig, resumed.Step())
	assert.Equal(t, "Half done", resumed.JobName())
	assert.True(t, resumed.Catalog().IsSelected("public", "orders"))

	job, err := resumed.Create(ctx)
	require.NoError(t, err)
	assert.False(t, job.Activate)

	// Creating the job cleans up its draft.
	require.NoError(t, resumed.DeleteDraft(store))
	all, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSaveDraftReassignsSameID(t *testing.T) {
	ctx := context.Background()
	services := mock.NewServices()
	store := drafts.NewStore(filepath.Join(t.TempDir(), "saved_jobs.json"))

	w := New(services)
	sources, _ := services.Sources.List(ctx)
	require.NoError(t, w.UseExistingSource(&sources[0]))

	first, err := w.SaveDraft(store)
	require.NoError(t, err)
	second, err := w.SaveDraft(store)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	all, err := store.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
