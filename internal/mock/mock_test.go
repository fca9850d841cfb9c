package mock

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/schemaform"
)

func TestMain(m *testing.M) {
	Latency = 0
	os.Exit(m.Run())
}

// End-to-end over the mock backend: fill the postgres form from the spec,
// test the connection, create the source.
func TestCreatePostgresSourceFlow(t *testing.T) {
	ctx := context.Background()
	services := NewServices()

	raw, err := services.Sources.Spec(ctx, "postgres", "latest")
	require.NoError(t, err)

	schema := schemaform.Parse(raw, nil)
	require.False(t, schema.Malformed)

	data := schema.ApplyDefaults(schemaform.FormData{})
	data = schema.Apply(data, "host", "postgres.internal")
	data = schema.Apply(data, "database", "orders")
	data = schema.Apply(data, "username", "replicator")
	data = schema.Apply(data, "password", "s3cret")

	require.Empty(t, schema.Validate(data).Flat())

	config, err := json.Marshal(data)
	require.NoError(t, err)

	result, err := services.Sources.TestConnection(ctx, api.TestRequest{
		Type: "postgres", Version: "latest", Config: string(config),
	})
	require.NoError(t, err)
	assert.Equal(t, api.TestSucceeded, result.Status)
	assert.True(t, result.Succeeded())

	created, err := services.Sources.Create(ctx, api.EntityBase{
		Name: "Orders DB", Type: "Postgres", Version: "latest", Config: string(config),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "postgres", created.Type, "connector type is lowercased")

	sources, err := services.Sources.List(ctx)
	require.NoError(t, err)
	found := false
	for _, source := range sources {
		if source.ID == created.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestConnectionTestFailureIsAResultNotAnError(t *testing.T) {
	ctx := context.Background()
	services := NewServices()

	result, err := services.Sources.TestConnection(ctx, api.TestRequest{
		Type: "postgres", Config: `{"host":"unreachable.example.com"}`,
	})
	require.NoError(t, err, "a failed test is a result, not a transport error")
	assert.False(t, result.Succeeded())
	assert.NotEmpty(t, result.FailureMessage())
}

func TestSourcesWithJobsExposeAssociations(t *testing.T) {
	ctx := context.Background()
	services := NewServices()

	sources, err := services.Sources.List(ctx)
	require.NoError(t, err)

	withJobs := 0
	for _, source := range sources {
		withJobs += len(source.Jobs)
	}
	assert.Greater(t, withJobs, 0, "fixtures must include sources with dependent jobs")
}

func TestDiscoverStreamsReturnsUsableCatalog(t *testing.T) {
	ctx := context.Background()
	services := NewServices()

	catalog, err := services.Sources.DiscoverStreams(ctx, "pg", "postgres", "latest", "{}")
	require.NoError(t, err)
	require.NotNil(t, catalog.SelectedStreams)
	assert.NotEmpty(t, catalog.Streams)
	assert.Contains(t, catalog.Namespaces(), "public")
}

func TestJobRunAndTaskPollingDelay(t *testing.T) {
	ctx := context.Background()
	services := NewServices()

	jobs, err := services.Jobs.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, jobs)

	require.NoError(t, services.Jobs.Run(ctx, jobs[0].ID))

	// The first fetches after a run return nothing, like a backend that
	// registers the task asynchronously.
	tasks, err := services.Jobs.Tasks(ctx, jobs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = services.Jobs.Tasks(ctx, jobs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = services.Jobs.Tasks(ctx, jobs[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, tasks)
}

func TestEntityUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	services := NewServices()

	destinations, err := services.Destinations.List(ctx)
	require.NoError(t, err)
	target := destinations[0]

	updated, err := services.Destinations.Update(ctx, target.ID, api.EntityBase{
		Name: "Renamed Lake", Type: target.Type, Version: target.Version, Config: target.Config,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Lake", updated.Name)
	assert.NotEmpty(t, updated.UpdatedAt)

	require.NoError(t, services.Destinations.Delete(ctx, target.ID))
	err = services.Destinations.Delete(ctx, target.ID)
	assert.Error(t, err)
}

func TestLoginRequiresCredentials(t *testing.T) {
	ctx := context.Background()
	services := NewServices()

	_, err := services.Auth.Login(ctx, "", "")
	assert.Error(t, err)

	resp, err := services.Auth.Login(ctx, "admin", "password")
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Username)
	assert.NotEmpty(t, resp.Token)
}

func TestCancelledContextStopsCalls(t *testing.T) {
	Latency = 50 * time.Millisecond
	defer func() { Latency = 0 }()

	services := NewServices()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := services.Sources.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
