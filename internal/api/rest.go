package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/driftstream/driftstream-cli/internal/config"
	"github.com/driftstream/driftstream-cli/internal/httpclient"
	"github.com/driftstream/driftstream-cli/internal/streamsel"
)

// Services bundles the four backend services behind one handle.
type Services struct {
	Auth         AuthService
	Sources      SourceService
	Destinations DestinationService
	Jobs         JobService
}

// NewRESTServices builds the production services over the shared HTTP
// client. Connection tests and stream discovery use an untimed client.
func NewRESTServices() *Services {
	client := httpclient.GetClient()
	long := httpclient.NewLongRunningClient()
	return &Services{
		Auth:         &restAuth{client: client},
		Sources:      &restEntities{client: client, long: long, path: "/sources"},
		Destinations: &restEntities{client: client, long: long, path: "/destinations"},
		Jobs:         &restJobs{client: client, long: long},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type restAuth struct {
	client *httpclient.Client
}

func (a *restAuth) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var resp LoginResponse
	url := config.GetConfig().BaseURL() + "/login"
	if err := a.client.Post(ctx, url, body, &resp, false); err != nil {
		return nil, fmt.Errorf("login failed: %v", err)
	}
	if resp.Username == "" {
		resp.Username = username
	}
	return &resp, nil
}

// restEntities serves both sources and destinations; the two surfaces are
// identical except for the path and stream discovery.
type restEntities struct {
	client *httpclient.Client
	long   *httpclient.Client
	path   string
}

func (e *restEntities) url(suffix string) string {
	return config.GetConfig().ProjectURL(e.path + suffix)
}

func (e *restEntities) List(ctx context.Context) ([]Entity, error) {
	var env envelope
	if err := e.client.Get(ctx, e.url(""), &env, true); err != nil {
		return nil, err
	}
	var entities []Entity
	if err := json.Unmarshal(env.Data, &entities); err != nil {
		return nil, fmt.Errorf("failed to decode entity list: %v", err)
	}
	return entities, nil
}

func (e *restEntities) Create(ctx context.Context, entity EntityBase) (*Entity, error) {
	entity.Type = strings.ToLower(entity.Type)
	var env envelope
	if err := e.client.Post(ctx, e.url(""), entity, &env, true); err != nil {
		return nil, err
	}
	var created Entity
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return nil, fmt.Errorf("failed to decode created entity: %v", err)
	}
	return &created, nil
}

func (e *restEntities) Update(ctx context.Context, id int64, entity EntityBase) (*Entity, error) {
	entity.Type = strings.ToLower(entity.Type)
	var env envelope
	if err := e.client.Put(ctx, e.url(fmt.Sprintf("/%d", id)), entity, &env, true); err != nil {
		return nil, err
	}
	var updated Entity
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated entity: %v", err)
	}
	return &updated, nil
}

func (e *restEntities) Delete(ctx context.Context, id int64) error {
	return e.client.Delete(ctx, e.url(fmt.Sprintf("/%d", id)), true)
}

func (e *restEntities) TestConnection(ctx context.Context, req TestRequest) (TestResult, error) {
	req.Type = strings.ToLower(req.Type)
	var env envelope
	if err := e.long.Post(ctx, e.url("/test"), req, &env, true); err != nil {
		return TestResult{}, err
	}
	var result TestResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return TestResult{}, fmt.Errorf("failed to decode test result: %v", err)
		}
	}
	if result.Message == "" {
		result.Message = env.Message
	}
	return result, nil
}

func (e *restEntities) Versions(ctx context.Context, connectorType string) ([]string, error) {
	var env envelope
	url := e.url("/versions/?type=" + strings.ToLower(connectorType))
	if err := e.client.Get(ctx, url, &env, true); err != nil {
		return nil, err
	}
	var payload struct {
		Version []string `json:"version"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode versions: %v", err)
	}
	return payload.Version, nil
}

func (e *restEntities) Spec(ctx context.Context, connectorType, version string) ([]byte, error) {
	body := struct {
		Type    string `json:"type"`
		Version string `json:"version"`
	}{Type: strings.ToLower(connectorType), Version: version}

	var env envelope
	if err := e.client.Post(ctx, e.url("/spec"), body, &env, true); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (e *restEntities) DiscoverStreams(ctx context.Context, name, connectorType, version, cfg string) (*streamsel.Catalog, error) {
	if version == "" {
		version = "latest"
	}
	body := struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		Version string `json:"version"`
		Config  string `json:"config"`
	}{Name: name, Type: strings.ToLower(connectorType), Version: version, Config: cfg}

	var env envelope
	if err := e.long.Post(ctx, e.url("/streams"), body, &env, true); err != nil {
		return nil, err
	}
	var catalog streamsel.Catalog
	if err := json.Unmarshal(env.Data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode streams: %v", err)
	}
	if catalog.SelectedStreams == nil {
		catalog.SelectedStreams = make(map[string][]streamsel.SelectedStream)
	}
	return &catalog, nil
}

type restJobs struct {
	client *httpclient.Client
	long   *httpclient.Client
}

func (j *restJobs) url(suffix string) string {
	return config.GetConfig().ProjectURL("/jobs" + suffix)
}

func (j *restJobs) List(ctx context.Context) ([]Job, error) {
	var env envelope
	if err := j.client.Get(ctx, j.url(""), &env, true); err != nil {
		return nil, err
	}
	var jobs []Job
	if err := json.Unmarshal(env.Data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode job list: %v", err)
	}
	return jobs, nil
}

func (j *restJobs) Create(ctx context.Context, job JobBase) (*Job, error) {
	var created Job
	if err := j.client.Post(ctx, j.url(""), job, &created, true); err != nil {
		return nil, err
	}
	return &created, nil
}

func (j *restJobs) Update(ctx context.Context, id int64, job JobBase) (*Job, error) {
	var updated Job
	if err := j.client.Put(ctx, j.url(fmt.Sprintf("/%d", id)), job, &updated, true); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (j *restJobs) Delete(ctx context.Context, id int64) error {
	return j.client.Delete(ctx, j.url(fmt.Sprintf("/%d", id)), true)
}

func (j *restJobs) Run(ctx context.Context, id int64) error {
	return j.long.Post(ctx, j.url(fmt.Sprintf("/%d/sync", id)), struct{}{}, nil, true)
}

func (j *restJobs) Activate(ctx context.Context, id int64, activate bool) error {
	body := struct {
		Activate bool `json:"activate"`
	}{Activate: activate}
	return j.client.Post(ctx, j.url(fmt.Sprintf("/%d/activate", id)), body, nil, true)
}

func (j *restJobs) Tasks(ctx context.Context, id int64) ([]JobTask, error) {
	var env envelope
	if err := j.long.Get(ctx, j.url(fmt.Sprintf("/%d/tasks", id)), &env, true); err != nil {
		return nil, err
	}
	var tasks []JobTask
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &tasks); err != nil {
			return nil, fmt.Errorf("failed to decode job tasks: %v", err)
		}
	}
	return tasks, nil
}

func (j *restJobs) TaskLogs(ctx context.Context, jobID int64, filePath string) ([]TaskLog, error) {
	body := struct {
		FilePath string `json:"file_path"`
	}{FilePath: filePath}

	var env envelope
	if err := j.long.Post(ctx, j.url(fmt.Sprintf("/%d/logs", jobID)), body, &env, true); err != nil {
		return nil, err
	}
	var logs []TaskLog
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &logs); err != nil {
			return nil, fmt.Errorf("failed to decode task logs: %v", err)
		}
	}
	return logs, nil
}
