// Package wizard drives job creation as a linear flow: pick or create a
// source, pick or create a destination, select streams, then name and
// schedule the job. Each step gates the next; a new connector must pass a
// connection test before the flow advances.
package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/driftstream/driftstream-cli/internal/api"
	"github.com/driftstream/driftstream-cli/internal/drafts"
	"github.com/driftstream/driftstream-cli/internal/streamsel"
)

// Step is a wizard stage. Steps advance strictly forward except for Back.
type Step int

const (
	StepSource Step = iota
	StepDestination
	StepSchema
	StepConfig
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepSource:
		return "source"
	case StepDestination:
		return "destination"
	case StepSchema:
		return "schema"
	case StepConfig:
		return "config"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// FrequencyUnits are the accepted schedule units.
var FrequencyUnits = []string{"minutes", "hours", "days", "weeks", "months"}

// Endpoint is the wizard's working copy of one side of the job: either an
// existing entity or a new connector definition that must pass a test.
type Endpoint struct {
	// Existing is set when the user picked an already-saved entity.
	Existing *api.Entity
	// New holds an in-progress connector definition otherwise.
	New    api.EntityBase
	Tested bool
}

func (e *Endpoint) chosen() bool {
	return e.Existing != nil || (e.New.Name != "" && e.New.Type != "")
}

func (e *Endpoint) toJobEndpoint() api.JobEndpoint {
	if e.Existing != nil {
		return api.JobEndpoint{
			Name:    e.Existing.Name,
			Type:    e.Existing.Type,
			Version: e.Existing.Version,
			Config:  e.Existing.Config,
		}
	}
	return api.JobEndpoint{
		Name:    e.New.Name,
		Type:    e.New.Type,
		Version: e.New.Version,
		Config:  e.New.Config,
	}
}

// Wizard is the job-creation flow state. It talks to the backend through
// the services and leaves all rendering to the caller.
type Wizard struct {
	services *api.Services

	step        Step
	source      Endpoint
	destination Endpoint
	catalog     *streamsel.Catalog

	jobName        string
	frequencyValue int
	frequencyUnit  string

	draftID string

	// Set in edit mode: the job being updated and its schedule state,
	// which editing must not change.
	jobID    int64
	activate bool
}

// New starts a fresh wizard.
func New(services *api.Services) *Wizard {
	return &Wizard{services: services, frequencyValue: 1, frequencyUnit: "days"}
}

// Edit seeds a wizard from an existing job and re-enters at the schema
// step. The job's connectors carry over as tested endpoints; Back still
// reaches the earlier steps to swap them out.
func Edit(services *api.Services, job *api.Job) *Wizard {
	w := New(services)
	w.jobID = job.ID
	w.activate = job.Activate
	w.jobName = job.Name
	w.source = Endpoint{New: api.EntityBase{
		Name: job.Source.Name, Type: job.Source.Type,
		Version: job.Source.Version, Config: job.Source.Config,
	}, Tested: true}
	w.destination = Endpoint{New: api.EntityBase{
		Name: job.Destination.Name, Type: job.Destination.Type,
		Version: job.Destination.Version, Config: job.Destination.Config,
	}, Tested: true}
	if catalog, err := streamsel.ParseCatalog(job.StreamsConfig); err == nil {
		w.catalog = catalog
	}
	if value, unit, err := ParseFrequency(job.Frequency); err == nil {
		w.frequencyValue = value
		w.frequencyUnit = unit
	}
	w.step = StepSchema
	return w
}

// Editing reports whether the wizard updates an existing job.
func (w *Wizard) Editing() bool {
	return w.jobID != 0
}

// Resume rebuilds a wizard from a saved draft, re-entering at the first
// incomplete step. Resumed endpoints keep their tested state; the backend
// accepted them when the draft was saved.
func Resume(services *api.Services, draft *drafts.Draft) *Wizard {
	w := New(services)
	w.draftID = draft.ID
	w.jobName = draft.Name
	if draft.Source != nil {
		w.source = Endpoint{New: api.EntityBase{
			Name: draft.Source.Name, Type: draft.Source.Type,
			Version: draft.Source.Version, Config: draft.Source.Config,
		}, Tested: true}
		w.step = StepDestination
	}
	if draft.Destination != nil {
		w.destination = Endpoint{New: api.EntityBase{
			Name: draft.Destination.Name, Type: draft.Destination.Type,
			Version: draft.Destination.Version, Config: draft.Destination.Config,
		}, Tested: true}
		w.step = StepSchema
	}
	if draft.StreamsConfig != "" {
		if catalog, err := streamsel.ParseCatalog(draft.StreamsConfig); err == nil {
			w.catalog = catalog
			w.step = StepConfig
		}
	}
	if value, unit, err := ParseFrequency(draft.Frequency); err == nil {
		w.frequencyValue = value
		w.frequencyUnit = unit
	}
	return w
}

// Step returns the current stage.
func (w *Wizard) Step() Step {
	return w.step
}

// Catalog returns the discovered stream catalog, nil before discovery.
func (w *Wizard) Catalog() *streamsel.Catalog {
	return w.catalog
}

// Source returns the working source endpoint.
func (w *Wizard) Source() *Endpoint {
	return &w.source
}

// Destination returns the working destination endpoint.
func (w *Wizard) Destination() *Endpoint {
	return &w.destination
}

// JobName returns the configured job name.
func (w *Wizard) JobName() string {
	return w.jobName
}

// SetJobName records the job name.
func (w *Wizard) SetJobName(name string) {
	w.jobName = name
}

// SetFrequency records the schedule.
func (w *Wizard) SetFrequency(value int, unit string) error {
	if value <= 0 {
		return fmt.Errorf("frequency value must be positive")
	}
	for _, u := range FrequencyUnits {
		if u == unit {
			w.frequencyValue = value
			w.frequencyUnit = unit
			return nil
		}
	}
	return fmt.Errorf("invalid frequency unit %q (expected one of %s)",
		unit, strings.Join(FrequencyUnits, ", "))
}

// Frequency returns the schedule in the backend's "<value>-<unit>" form.
func (w *Wizard) Frequency() string {
	return fmt.Sprintf("%d-%s", w.frequencyValue, w.frequencyUnit)
}

// ParseFrequency splits a "<value>-<unit>" schedule.
func ParseFrequency(frequency string) (int, string, error) {
	parts := strings.SplitN(frequency, "-", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("invalid frequency %q", frequency)
	}
	var value int
	if _, err := fmt.Sscanf(parts[0], "%d", &value); err != nil || value <= 0 {
		return 0, "", fmt.Errorf("invalid frequency %q", frequency)
	}
	for _, u := range FrequencyUnits {
		if u == parts[1] {
			return value, parts[1], nil
		}
	}
	return 0, "", fmt.Errorf("invalid frequency unit %q", parts[1])
}

// UseExistingSource selects a saved source and advances. Saved entities
// were already validated when created, so no test gates the step.
func (w *Wizard) UseExistingSource(source *api.Entity) error {
	if w.step != StepSource {
		return w.stepError(StepSource)
	}
	w.setSource(Endpoint{Existing: source, Tested: true})
	w.step = StepDestination
	return nil
}

// setSource swaps the working source, discarding a catalog discovered
// from a different source.
func (w *Wizard) setSource(endpoint Endpoint) {
	if w.source.toJobEndpoint() != endpoint.toJobEndpoint() {
		w.catalog = nil
	}
	w.source = endpoint
}

// TestAndAdvanceSource tests a new source definition and, on success,
// advances to the destination step. A failed test keeps the wizard on the
// source step and returns the backend's message as the error.
func (w *Wizard) TestAndAdvanceSource(ctx context.Context, source api.EntityBase) error {
	if w.step != StepSource {
		return w.stepError(StepSource)
	}
	if source.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if source.Type == "" {
		return fmt.Errorf("connector type is required")
	}
	w.setSource(Endpoint{New: source})
	result, err := w.services.Sources.TestConnection(ctx, api.TestRequest{
		Type: source.Type, Version: source.Version, Config: source.Config,
	})
	if err != nil {
		return err
	}
	if !result.Succeeded() {
		return fmt.Errorf("%s", result.FailureMessage())
	}
	w.source.Tested = true
	w.step = StepDestination
	return nil
}

// UseExistingDestination selects a saved destination and advances.
func (w *Wizard) UseExistingDestination(destination *api.Entity) error {
	if w.step != StepDestination {
		return w.stepError(StepDestination)
	}
	w.destination = Endpoint{Existing: destination, Tested: true}
	w.step = StepSchema
	return nil
}

// TestAndAdvanceDestination tests a new destination definition and, on
// success, advances to the schema step.
func (w *Wizard) TestAndAdvanceDestination(ctx context.Context, destination api.EntityBase) error {
	if w.step != StepDestination {
		return w.stepError(StepDestination)
	}
	if destination.Name == "" {
		return fmt.Errorf("destination name is required")
	}
	if destination.Type == "" {
		return fmt.Errorf("connector type is required")
	}
	w.destination = Endpoint{New: destination}
	result, err := w.services.Destinations.TestConnection(ctx, api.TestRequest{
		Type: destination.Type, Version: destination.Version, Config: destination.Config,
	})
	if err != nil {
		return err
	}
	if !result.Succeeded() {
		return fmt.Errorf("%s", result.FailureMessage())
	}
	w.destination.Tested = true
	w.step = StepSchema
	return nil
}

// DiscoverStreams fetches the source's stream catalog for the schema step.
// The previous selection is kept when re-entering the step with the same
// source; changing the source discards it.
func (w *Wizard) DiscoverStreams(ctx context.Context) (*streamsel.Catalog, error) {
	if w.step != StepSchema {
		return nil, w.stepError(StepSchema)
	}
	if w.catalog != nil {
		return w.catalog, nil
	}
	endpoint := w.source.toJobEndpoint()
	catalog, err := w.services.Sources.DiscoverStreams(ctx,
		endpoint.Name, endpoint.Type, endpoint.Version, endpoint.Config)
	if err != nil {
		return nil, err
	}
	w.catalog = catalog
	return catalog, nil
}

// ConfirmSchema accepts the stream selection and advances to the config
// step. An empty selection is allowed; the job then replicates nothing
// until streams are added.
func (w *Wizard) ConfirmSchema() error {
	if w.step != StepSchema {
		return w.stepError(StepSchema)
	}
	if w.catalog == nil {
		return fmt.Errorf("streams have not been discovered")
	}
	w.step = StepConfig
	return nil
}

// Back returns to the previous step. Backing out of the source step is the
// caller's cancel path; the wizard stays put.
func (w *Wizard) Back() {
	if w.step > StepSource && w.step < StepDone {
		w.step--
	}
}

// AtStart reports whether leaving now abandons the flow entirely, which is
// when the caller should ask for confirmation.
func (w *Wizard) AtStart() bool {
	return w.step == StepSource
}

// Create validates the final step and creates or updates the job. New
// jobs always start deactivated; editing keeps the job's schedule state.
func (w *Wizard) Create(ctx context.Context) (*api.Job, error) {
	if w.step != StepConfig {
		return nil, w.stepError(StepConfig)
	}
	if w.jobName == "" {
		return nil, fmt.Errorf("job name is required")
	}
	streamsConfig, err := w.catalog.Encode()
	if err != nil {
		return nil, err
	}
	base := api.JobBase{
		Name:          w.jobName,
		Source:        w.source.toJobEndpoint(),
		Destination:   w.destination.toJobEndpoint(),
		StreamsConfig: streamsConfig,
		Frequency:     w.Frequency(),
		Activate:      w.activate,
	}

	var job *api.Job
	if w.Editing() {
		job, err = w.services.Jobs.Update(ctx, w.jobID, base)
	} else {
		job, err = w.services.Jobs.Create(ctx, base)
	}
	if err != nil {
		return nil, err
	}
	w.step = StepDone
	return job, nil
}

// SaveDraft snapshots the current progress into the draft store. Only
// completed steps are included.
func (w *Wizard) SaveDraft(store *drafts.Store) (*drafts.Draft, error) {
	draft := drafts.Draft{
		ID:        w.draftID,
		Name:      w.jobName,
		Frequency: w.Frequency(),
	}
	if w.source.chosen() && w.source.Tested {
		endpoint := w.source.toJobEndpoint()
		draft.Source = &endpoint
	}
	if w.destination.chosen() && w.destination.Tested {
		endpoint := w.destination.toJobEndpoint()
		draft.Destination = &endpoint
	}
	if w.catalog != nil {
		streamsConfig, err := w.catalog.Encode()
		if err != nil {
			return nil, err
		}
		draft.StreamsConfig = streamsConfig
	}
	saved, err := store.Save(draft)
	if err != nil {
		return nil, err
	}
	w.draftID = saved.ID
	return saved, nil
}

// DeleteDraft removes this wizard's draft after the job is created.
func (w *Wizard) DeleteDraft(store *drafts.Store) error {
	if w.draftID == "" {
		return nil
	}
	return store.Delete(w.draftID)
}

func (w *Wizard) stepError(want Step) error {
	return fmt.Errorf("not on the %s step (currently on %s)", want, w.step)
}
