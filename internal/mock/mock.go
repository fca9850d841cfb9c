// Package mock provides in-memory service implementations with artificial
// latency, used during development when no backend is reachable and by the
// end-to-end scenario tests.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/streamsel"
)

// Latency is the simulated network delay applied to every call. Tests set
// it to zero.
var Latency = 500 * time.Millisecond

func sleep(ctx context.Context) error {
	if Latency == 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var shared *api.Services

// SharedServices returns the process-wide mock services, so mutations made
// by one command remain visible to the next within a session.
func SharedServices() *api.Services {
	if shared == nil {
		shared = NewServices()
	}
	return shared
}

// NewServices builds the full set of mock services over a shared fixture
// state.
func NewServices() *api.Services {
	state := newState()
	return &api.Services{
		Auth:         &mockAuth{},
		Sources:      &mockEntities{state: state, kind: "source"},
		Destinations: &mockEntities{state: state, kind: "destination"},
		Jobs:         &mockJobs{state: state},
	}
}

type state struct {
	mu           sync.Mutex
	sources      []api.Entity
	destinations []api.Entity
	jobs         []api.Job
	nextID       int64
}

func newState() *state {
	s := &state{nextID: 100}
	s.sources = []api.Entity{
		{
			ID: 1, Name: "MongoDB Sales DB", Type: "mongodb", Version: "v0.1.0",
			Config:    `{"hosts":["mongodb.example.com:27017"],"username":"sales_admin","database":"sales_data","srv":false,"max_threads":50,"default_mode":"cdc"}`,
			CreatedAt: "2025-01-15T10:30:00Z", CreatedBy: "admin",
			Jobs: []api.EntityJob{{ID: 1, Name: "Daily Sales Data Sync", Activate: true, DestinationName: "AWS S3 Data Lake", DestinationType: "s3", LastRunState: "success"}},
		},
		{
			ID: 2, Name: "PostgreSQL Inventory", Type: "postgres", Version: "v0.1.0",
			Config:    `{"host":"postgres.example.com","port":5432,"database":"inventory_db","username":"inventory_user","ssl":{"mode":"disable"},"update_method":{"replication_slot":"inventory_slot","intial_wait_time":10}}`,
			CreatedAt: "2025-01-20T14:45:00Z", CreatedBy: "admin",
			Jobs: []api.EntityJob{{ID: 2, Name: "Inventory Sync", Activate: true, DestinationName: "AWS Glue Analytics", DestinationType: "iceberg", LastRunState: "success"}},
		},
		{
			ID: 3, Name: "MySQL HR", Type: "mysql", Version: "v0.1.0",
			Config:    `{"hosts":"mysql.example.com","port":3306,"database":"hr_system","username":"hr_admin","tls_skip_verify":true}`,
			CreatedAt: "2025-01-10T09:15:00Z", CreatedBy: "admin",
		},
	}
	s.destinations = []api.Entity{
		{
			ID: 1, Name: "AWS S3 Data Lake", Type: "s3", Version: "v0.1.0",
			Config:    `{"s3_bucket":"sales-lake","s3_region":"us-east-1"}`,
			CreatedAt: "2025-01-15T10:30:00Z", CreatedBy: "admin",
			Jobs: []api.EntityJob{{ID: 1, Name: "Daily Sales Data Sync", Activate: true, SourceName: "MongoDB Sales DB", SourceType: "mongodb", LastRunState: "success"}},
		},
		{
			ID: 2, Name: "AWS Glue Analytics", Type: "iceberg", Version: "v0.1.0",
			Config:    `{"catalog_type":"glue","iceberg_s3_path":"s3://glue-warehouse"}`,
			CreatedAt: "2025-01-20T14:45:00Z", CreatedBy: "admin",
			Jobs: []api.EntityJob{{ID: 2, Name: "Inventory Sync", Activate: true, SourceName: "PostgreSQL Inventory", SourceType: "postgres", LastRunState: "success"}},
		},
	}
	s.jobs = []api.Job{
		{
			ID: 1, Name: "Daily Sales Data Sync", Activate: true,
			Source:        api.JobEndpoint{Name: "MongoDB Sales DB", Type: "mongodb", Version: "v0.1.0"},
			Destination:   api.JobEndpoint{Name: "AWS S3 Data Lake", Type: "s3", Version: "v0.1.0"},
			StreamsConfig: sampleStreamsConfig("public"),
			Frequency:     "1-days", LastRunState: "success", LastRunTime: "2025-01-30T06:00:00Z",
			CreatedAt: "2025-01-15T10:30:00Z", CreatedBy: "admin",
		},
		{
			ID: 2, Name: "Inventory Sync", Activate: true,
			Source:        api.JobEndpoint{Name: "PostgreSQL Inventory", Type: "postgres", Version: "v0.1.0"},
			Destination:   api.JobEndpoint{Name: "AWS Glue Analytics", Type: "iceberg", Version: "v0.1.0"},
			StreamsConfig: sampleStreamsConfig("warehouse"),
			Frequency:     "6-hours", LastRunState: "success", LastRunTime: "2025-01-30T03:00:00Z",
			CreatedAt: "2025-01-20T14:45:00Z", CreatedBy: "admin",
		},
	}
	return s
}

func (s *state) newID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

type mockAuth struct{}

func (a *mockAuth) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("login failed: username and password are required")
	}
	return &api.LoginResponse{Token: "mock-session-token", Username: username}, nil
}

type mockEntities struct {
	state *state
	kind  string
}

func (m *mockEntities) items() *[]api.Entity {
	if m.kind == "source" {
		return &m.state.sources
	}
	return &m.state.destinations
}

func (m *mockEntities) List(ctx context.Context) ([]api.Entity, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	out := make([]api.Entity, len(*m.items()))
	copy(out, *m.items())
	return out, nil
}

func (m *mockEntities) Create(ctx context.Context, base api.EntityBase) (*api.Entity, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	entity := api.Entity{
		ID:        m.state.newID(),
		Name:      base.Name,
		Type:      strings.ToLower(base.Type),
		Version:   base.Version,
		Config:    base.Config,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		CreatedBy: "mock-user",
	}
	*m.items() = append(*m.items(), entity)
	return &entity, nil
}

func (m *mockEntities) Update(ctx context.Context, id int64, base api.EntityBase) (*api.Entity, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	items := *m.items()
	for i := range items {
		if items[i].ID == id {
			items[i].Name = base.Name
			items[i].Type = strings.ToLower(base.Type)
			items[i].Version = base.Version
			items[i].Config = base.Config
			items[i].UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			items[i].UpdatedBy = "mock-user"
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%s %d not found", m.kind, id)
}

func (m *mockEntities) Delete(ctx context.Context, id int64) error {
	if err := sleep(ctx); err != nil {
		return err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	items := *m.items()
	for i := range items {
		if items[i].ID == id {
			*m.items() = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s %d not found", m.kind, id)
}

// TestConnection succeeds unless the config mentions an unreachable host,
// which lets failure paths be exercised without a backend.
func (m *mockEntities) TestConnection(ctx context.Context, req api.TestRequest) (api.TestResult, error) {
	if err := sleep(ctx); err != nil {
		return api.TestResult{}, err
	}
	if strings.Contains(req.Config, "unreachable") {
		return api.TestResult{
			Status:  api.TestFailed,
			Message: "could not connect to host, please check your parameters",
		}, nil
	}
	return api.TestResult{Status: api.TestSucceeded, Message: "Connection succeeded"}, nil
}

func (m *mockEntities) Versions(ctx context.Context, connectorType string) ([]string, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	return []string{"latest", "v0.2.0", "v0.1.0"}, nil
}

func (m *mockEntities) Spec(ctx context.Context, connectorType, version string) ([]byte, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	if spec, ok := connectorSpecs[strings.ToLower(connectorType)]; ok {
		return []byte(spec), nil
	}
	return []byte(genericSpec), nil
}

func (m *mockEntities) DiscoverStreams(ctx context.Context, name, connectorType, version, config string) (*streamsel.Catalog, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	return SampleCatalog(), nil
}

type mockJobs struct {
	state *state
	// tasksDelay simulates backend eventual consistency: the first
	// tasksDelay fetches after a run return no rows.
	tasksDelay int
}

func (m *mockJobs) List(ctx context.Context) ([]api.Job, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	out := make([]api.Job, len(m.state.jobs))
	copy(out, m.state.jobs)
	return out, nil
}

func (m *mockJobs) Create(ctx context.Context, base api.JobBase) (*api.Job, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	job := api.Job{
		ID:            m.state.newID(),
		Name:          base.Name,
		Source:        base.Source,
		Destination:   base.Destination,
		StreamsConfig: base.StreamsConfig,
		Frequency:     base.Frequency,
		Activate:      base.Activate,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		CreatedBy:     "mock-user",
	}
	m.state.jobs = append(m.state.jobs, job)
	return &job, nil
}

func (m *mockJobs) Update(ctx context.Context, id int64, base api.JobBase) (*api.Job, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	for i := range m.state.jobs {
		if m.state.jobs[i].ID == id {
			job := &m.state.jobs[i]
			job.Name = base.Name
			job.Source = base.Source
			job.Destination = base.Destination
			job.StreamsConfig = base.StreamsConfig
			job.Frequency = base.Frequency
			job.Activate = base.Activate
			job.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			job.UpdatedBy = "mock-user"
			return job, nil
		}
	}
	return nil, fmt.Errorf("job %d not found", id)
}

func (m *mockJobs) Delete(ctx context.Context, id int64) error {
	if err := sleep(ctx); err != nil {
		return err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	for i := range m.state.jobs {
		if m.state.jobs[i].ID == id {
			m.state.jobs = append(m.state.jobs[:i], m.state.jobs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("job %d not found", id)
}

func (m *mockJobs) Run(ctx context.Context, id int64) error {
	if err := sleep(ctx); err != nil {
		return err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	for i := range m.state.jobs {
		if m.state.jobs[i].ID == id {
			m.state.jobs[i].LastRunState = "running"
			m.state.jobs[i].LastRunTime = time.Now().UTC().Format(time.RFC3339)
			m.tasksDelay = 2
			return nil
		}
	}
	return fmt.Errorf("job %d not found", id)
}

func (m *mockJobs) Activate(ctx context.Context, id int64, activate bool) error {
	if err := sleep(ctx); err != nil {
		return err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	for i := range m.state.jobs {
		if m.state.jobs[i].ID == id {
			m.state.jobs[i].Activate = activate
			return nil
		}
	}
	return fmt.Errorf("job %d not found", id)
}

func (m *mockJobs) Tasks(ctx context.Context, id int64) ([]api.JobTask, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	if m.tasksDelay > 0 {
		m.tasksDelay--
		return nil, nil
	}
	return []api.JobTask{
		{Runtime: "2m14s", StartTime: "2025-01-30T06:00:00Z", Status: "success", FilePath: "/logs/run-1.log"},
		{Runtime: "1m58s", StartTime: "2025-01-29T06:00:00Z", Status: "success", FilePath: "/logs/run-0.log"},
	}, nil
}

func (m *mockJobs) TaskLogs(ctx context.Context, jobID int64, filePath string) ([]api.TaskLog, error) {
	if err := sleep(ctx); err != nil {
		return nil, err
	}
	return []api.TaskLog{
		{Level: "info", Message: "replication started", Time: "2025-01-30T06:00:01Z"},
		{Level: "info", Message: "snapshot of 4 streams complete", Time: "2025-01-30T06:01:40Z"},
		{Level: "info", Message: "replication finished", Time: "2025-01-30T06:02:14Z"},
	}, nil
}

// sampleStreamsConfig builds a fixture streams_config with every stream
// of one namespace selected.
func sampleStreamsConfig(namespace string) string {
	catalog := SampleCatalog()
	catalog.SetNamespace(namespace, true)
	encoded, err := catalog.Encode()
	if err != nil {
		return ""
	}
	return encoded
}

// SampleCatalog returns the stream catalog the mock source discovers.
func SampleCatalog() *streamsel.Catalog {
	return &streamsel.Catalog{
		SelectedStreams: make(map[string][]streamsel.SelectedStream),
		Streams: []streamsel.StreamData{
			{SyncMode: streamsel.SyncModeCDC, Stream: streamsel.Stream{
				Name: "orders", Namespace: "public",
				SupportedSyncModes: []string{"full_refresh", "cdc"},
				TypeSchema: map[string]interface{}{
					"id": "integer", "customer_id": "integer", "total": "number", "placed_at": "timestamp",
				},
			}},
			{SyncMode: streamsel.SyncModeCDC, Stream: streamsel.Stream{
				Name: "customers", Namespace: "public",
				SupportedSyncModes: []string{"full_refresh", "cdc"},
				TypeSchema: map[string]interface{}{
					"id": "integer", "email": "string", "created_at": "timestamp",
				},
			}},
			{SyncMode: streamsel.SyncModeFullRefresh, Stream: streamsel.Stream{
				Name: "inventory", Namespace: "warehouse",
				SupportedSyncModes: []string{"full_refresh"},
				TypeSchema: map[string]interface{}{
					"sku": "string", "quantity": "integer", "updated_at": "timestamp",
				},
			}},
			{SyncMode: streamsel.SyncModeCDC, Stream: streamsel.Stream{
				Name: "shipments", Namespace: "warehouse",
				SupportedSyncModes: []string{"full_refresh", "cdc"},
				TypeSchema: map[string]interface{}{
					"id": "integer", "carrier": "string", "shipped_at": "timestamp",
				},
			}},
		},
	}
}
