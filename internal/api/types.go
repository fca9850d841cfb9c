// Package api defines the backend's view models and the service
// interfaces the rest of the CLI consumes. The REST implementations live
// here; the in-memory development implementations live in internal/mock.
package api

import (
	"context"

	"github.com/driftstream/driftstream-cli/internal/streamsel"
)

// Entity is a source or destination configuration record. Config is the
// connector-specific configuration, JSON-encoded by the backend.
type Entity struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Version   string      `json:"version"`
	Config    string      `json:"config"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
	CreatedBy string      `json:"created_by"`
	UpdatedBy string      `json:"updated_by"`
	Jobs      []EntityJob `json:"jobs"`
}

// EntityBase is the create/update payload for an entity.
type EntityBase struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version string `json:"version"`
	Config  string `json:"config"`
}

// EntityJob summarizes a job associated with an entity.
type EntityJob struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Activate        bool   `json:"activate"`
	SourceName      string `json:"source_name,omitempty"`
	SourceType      string `json:"source_type,omitempty"`
	DestinationName string `json:"destination_name,omitempty"`
	DestinationType string `json:"destination_type,omitempty"`
	LastRunState    string `json:"last_run_state"`
	LastRunTime     string `json:"last_runtime"`
}

// TestRequest asks the backend to test a connector configuration.
type TestRequest struct {
	Type    string `json:"type"`
	Version string `json:"version"`
	Config  string `json:"config"`
}

const (
	TestSucceeded = "SUCCEEDED"
	TestFailed    = "FAILED"
)

// TestResult is the connection-test outcome. A failed test is an expected,
// recoverable result, not an error.
type TestResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Succeeded reports whether the connection test passed.
func (r TestResult) Succeeded() bool {
	return r.Status == TestSucceeded
}

// FailureMessage returns the backend's message, or a generic fallback.
func (r TestResult) FailureMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return "Connection test failed, please check your parameters"
}

// JobEndpoint is the source or destination half of a job.
type JobEndpoint struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version string `json:"version"`
	Config  string `json:"config"`
}

// Job is a configured source/destination pairing with a stream selection
// and a run frequency of the form "<value>-<unit>".
type Job struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Source        JobEndpoint `json:"source"`
	Destination   JobEndpoint `json:"destination"`
	StreamsConfig string      `json:"streams_config"`
	Frequency     string      `json:"frequency"`
	Activate      bool        `json:"activate"`
	LastRunState  string      `json:"last_run_state"`
	LastRunTime   string      `json:"last_run_time"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at"`
	CreatedBy     string      `json:"created_by"`
	UpdatedBy     string      `json:"updated_by"`
}

// JobBase is the create/update payload for a job.
type JobBase struct {
	Name          string      `json:"name"`
	Source        JobEndpoint `json:"source"`
	Destination   JobEndpoint `json:"destination"`
	StreamsConfig string      `json:"streams_config"`
	Frequency     string      `json:"frequency"`
	Activate      bool        `json:"activate"`
}

// JobTask is one run of a job.
type JobTask struct {
	Runtime   string `json:"runtime"`
	StartTime string `json:"start_time"`
	Status    string `json:"status"`
	FilePath  string `json:"file_path"`
}

// TaskLog is one log line of a job run.
type TaskLog struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// SourceService manages source entities.
type SourceService interface {
	List(ctx context.Context) ([]Entity, error)
	Create(ctx context.Context, source EntityBase) (*Entity, error)
	Update(ctx context.Context, id int64, source EntityBase) (*Entity, error)
	Delete(ctx context.Context, id int64) error
	TestConnection(ctx context.Context, req TestRequest) (TestResult, error)
	Versions(ctx context.Context, connectorType string) ([]string, error)
	Spec(ctx context.Context, connectorType, version string) ([]byte, error)
	DiscoverStreams(ctx context.Context, name, connectorType, version, config string) (*streamsel.Catalog, error)
}

// DestinationService manages destination entities.
type DestinationService interface {
	List(ctx context.Context) ([]Entity, error)
	Create(ctx context.Context, destination EntityBase) (*Entity, error)
	Update(ctx context.Context, id int64, destination EntityBase) (*Entity, error)
	Delete(ctx context.Context, id int64) error
	TestConnection(ctx context.Context, req TestRequest) (TestResult, error)
	Versions(ctx context.Context, connectorType string) ([]string, error)
	Spec(ctx context.Context, connectorType, version string) ([]byte, error)
}

// JobService manages jobs and their run history.
type JobService interface {
	List(ctx context.Context) ([]Job, error)
	Create(ctx context.Context, job JobBase) (*Job, error)
	Update(ctx context.Context, id int64, job JobBase) (*Job, error)
	Delete(ctx context.Context, id int64) error
	Run(ctx context.Context, id int64) error
	Activate(ctx context.Context, id int64, activate bool) error
	Tasks(ctx context.Context, id int64) ([]JobTask, error)
	TaskLogs(ctx context.Context, jobID int64, filePath string) ([]TaskLog, error)
}

// AuthService performs login against the backend.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
}
