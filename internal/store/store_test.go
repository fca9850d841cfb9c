package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/mock"
)

func TestMain(m *testing.M) {
	mock.Latency = 0
	goleak.VerifyTestMain(m)
}

func TestFetchPopulatesCaches(t *testing.T) {
	ctx := context.Background()
	s := New(mock.NewServices())

	assert.Empty(t, s.Sources())

	sources, err := s.FetchSources(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sources)
	assert.Equal(t, len(sources), len(s.Sources()))

	_, err = s.FetchDestinations(ctx)
	require.NoError(t, err)
	_, err = s.FetchJobs(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Destinations())
	assert.NotEmpty(t, s.Jobs())
	assert.False(t, s.Loading())
}

func TestAddSourceCachesOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := New(mock.NewServices())
	_, err := s.FetchSources(ctx)
	require.NoError(t, err)
	before := len(s.Sources())

	created, err := s.AddSource(ctx, api.EntityBase{
		Name: "New PG", Type: "postgres", Version: "latest", Config: "{}",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Len(t, s.Sources(), before+1)
}

func TestUpdateSourceReplacesCacheEntry(t *testing.T) {
	ctx := context.Background()
	s := New(mock.NewServices())
	sources, err := s.FetchSources(ctx)
	require.NoError(t, err)

	updated, err := s.UpdateSource(ctx, sources[0].ID, api.EntityBase{
		Name: "Renamed", Type: sources[0].Type, Version: sources[0].Version, Config: sources[0].Config,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	found := false
	for _, source := range s.Sources() {
		if source.ID == sources[0].ID {
			found = true
			assert.Equal(t, "Renamed", source.Name)
		}
	}
	assert.True(t, found)
}

func TestDeleteFailureLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	s := New(mock.NewServices())
	_, err := s.FetchSources(ctx)
	require.NoError(t, err)
	before := len(s.Sources())

	err = s.DeleteSource(ctx, 99999)
	require.Error(t, err)
	assert.Len(t, s.Sources(), before, "failed delete must not change the cache")
}

func TestDeleteSourceRemovesFromCache(t *testing.T) {
	ctx := context.Background()
	s := New(mock.NewServices())
	sources, err := s.FetchSources(ctx)
	require.NoError(t, err)

	require.NoError(t, s.DeleteSource(ctx, sources[0].ID))
	for _, source := range s.Sources() {
		assert.NotEqual(t, sources[0].ID, source.ID)
	}
}

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(mock.NewServices())
	_, err := s.FetchJobs(ctx)
	require.NoError(t, err)
	before := len(s.Jobs())

	created, err := s.AddJob(ctx, api.JobBase{
		Name:      "Cache test",
		Frequency: "1-days",
	})
	require.NoError(t, err)
	assert.Len(t, s.Jobs(), before+1)

	require.NoError(t, s.ActivateJob(ctx, created.ID, true))
	for _, job := range s.Jobs() {
		if job.ID == created.ID {
			assert.True(t, job.Activate)
		}
	}

	require.NoError(t, s.DeleteJob(ctx, created.ID))
	assert.Len(t, s.Jobs(), before)
}

func TestFetchSnapshotSurvivesMutations(t *testing.T) {
	ctx := context.Background()
	s := New(mock.NewServices())
	sources, err := s.FetchSources(ctx)
	require.NoError(t, err)
	first := sources[0]

	_, err = s.UpdateSource(ctx, first.ID, api.EntityBase{
		Name: "Renamed", Type: first.Type, Version: first.Version, Config: first.Config,
	})
	require.NoError(t, err)
	require.NoError(t, s.DeleteSource(ctx, first.ID))

	// The slice returned by the fetch is untouched by cache mutations.
	assert.Equal(t, first.ID, sources[0].ID)
	assert.Equal(t, first.Name, sources[0].Name)
}

func TestSnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New(mock.NewServices())
	_, err := s.FetchSources(ctx)
	require.NoError(t, err)

	snapshot := s.Sources()
	snapshot[0].Name = "mutated"

	assert.NotEqual(t, "mutated", s.Sources()[0].Name)
}
