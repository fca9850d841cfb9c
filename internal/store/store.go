// Package store holds the client-side copy of backend state. Every
// mutation calls the backend first and applies the result locally only on
// success, so the store never needs rollback.
package store

import (
	"context"
	"sync"

	"github.com/driftstream/driftstream-cli/internal/api"
)

// Store caches entity and job lists between commands and screens. It is
// safe for concurrent use; the TUI refreshes it from background commands.
type Store struct {
	mu       sync.Mutex
	services *api.Services

	sources      []api.Entity
	destinations []api.Entity
	jobs         []api.Job

	loadingSources      bool
	loadingDestinations bool
	loadingJobs         bool
}

// New builds a store over the given services.
func New(services *api.Services) *Store {
	return &Store{services: services}
}

// Services exposes the backing services for operations the store does not
// cache, such as connection tests and stream discovery.
func (s *Store) Services() *api.Services {
	return s.services
}

// Sources returns the cached source list.
func (s *Store) Sources() []api.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Entity, len(s.sources))
	copy(out, s.sources)
	return out
}

// Destinations returns the cached destination list.
func (s *Store) Destinations() []api.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Entity, len(s.destinations))
	copy(out, s.destinations)
	return out
}

// Jobs returns the cached job list.
func (s *Store) Jobs() []api.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Loading reports whether any list fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingSources || s.loadingDestinations || s.loadingJobs
}

// FetchSources refreshes the source list from the backend.
func (s *Store) FetchSources(ctx context.Context) ([]api.Entity, error) {
	s.mu.Lock()
	s.loadingSources = true
	s.mu.Unlock()

	sources, err := s.services.Sources.List(ctx)

	s.mu.Lock()
	s.loadingSources = false
	if err == nil {
		// The cache keeps its own copy so the slice handed to the
		// caller survives later mutations.
		s.sources = make([]api.Entity, len(sources))
		copy(s.sources, sources)
	}
	s.mu.Unlock()
	return sources, err
}

// FetchDestinations refreshes the destination list from the backend.
func (s *Store) FetchDestinations(ctx context.Context) ([]api.Entity, error) {
	s.mu.Lock()
	s.loadingDestinations = true
	s.mu.Unlock()

	destinations, err := s.services.Destinations.List(ctx)

	s.mu.Lock()
	s.loadingDestinations = false
	if err == nil {
		s.destinations = make([]api.Entity, len(destinations))
		copy(s.destinations, destinations)
	}
	s.mu.Unlock()
	return destinations, err
}

// FetchJobs refreshes the job list from the backend.
func (s *Store) FetchJobs(ctx context.Context) ([]api.Job, error) {
	s.mu.Lock()
	s.loadingJobs = true
	s.mu.Unlock()

	jobs, err := s.services.Jobs.List(ctx)

	s.mu.Lock()
	s.loadingJobs = false
	if err == nil {
		s.jobs = make([]api.Job, len(jobs))
		copy(s.jobs, jobs)
	}
	s.mu.Unlock()
	return jobs, err
}

// AddSource creates a source on the backend and caches the result.
func (s *Store) AddSource(ctx context.Context, base api.EntityBase) (*api.Entity, error) {
	created, err := s.services.Sources.Create(ctx, base)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sources = append(s.sources, *created)
	s.mu.Unlock()
	return created, nil
}

// UpdateSource updates a source on the backend and in the cache.
func (s *Store) UpdateSource(ctx context.Context, id int64, base api.EntityBase) (*api.Entity, error) {
	updated, err := s.services.Sources.Update(ctx, id, base)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	replaceEntity(s.sources, *updated)
	s.mu.Unlock()
	return updated, nil
}

// DeleteSource deletes a source on the backend and from the cache.
func (s *Store) DeleteSource(ctx context.Context, id int64) error {
	if err := s.services.Sources.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.sources = removeEntity(s.sources, id)
	s.mu.Unlock()
	return nil
}

// AddDestination creates a destination on the backend and caches the result.
func (s *Store) AddDestination(ctx context.Context, base api.EntityBase) (*api.Entity, error) {
	created, err := s.services.Destinations.Create(ctx, base)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.destinations = append(s.destinations, *created)
	s.mu.Unlock()
	return created, nil
}

// UpdateDestination updates a destination on the backend and in the cache.
func (s *Store) UpdateDestination(ctx context.Context, id int64, base api.EntityBase) (*api.Entity, error) {
	updated, err := s.services.Destinations.Update(ctx, id, base)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	replaceEntity(s.destinations, *updated)
	s.mu.Unlock()
	return updated, nil
}

// DeleteDestination deletes a destination on the backend and from the cache.
func (s *Store) DeleteDestination(ctx context.Context, id int64) error {
	if err := s.services.Destinations.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.destinations = removeEntity(s.destinations, id)
	s.mu.Unlock()
	return nil
}

// AddJob creates a job on the backend and caches the result.
func (s *Store) AddJob(ctx context.Context, base api.JobBase) (*api.Job, error) {
	created, err := s.services.Jobs.Create(ctx, base)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.jobs = append(s.jobs, *created)
	s.mu.Unlock()
	return created, nil
}

// UpdateJob updates a job on the backend and in the cache.
func (s *Store) UpdateJob(ctx context.Context, id int64, base api.JobBase) (*api.Job, error) {
	updated, err := s.services.Jobs.Update(ctx, id, base)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for i := range s.jobs {
		if s.jobs[i].ID == updated.ID {
			s.jobs[i] = *updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// DeleteJob deletes a job on the backend and from the cache.
func (s *Store) DeleteJob(ctx context.Context, id int64) error {
	if err := s.services.Jobs.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	jobs := make([]api.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if job.ID != id {
			jobs = append(jobs, job)
		}
	}
	s.jobs = jobs
	s.mu.Unlock()
	return nil
}

// ActivateJob pauses or resumes a job on the backend and in the cache.
func (s *Store) ActivateJob(ctx context.Context, id int64, activate bool) error {
	if err := s.services.Jobs.Activate(ctx, id, activate); err != nil {
		return err
	}
	s.mu.Lock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			s.jobs[i].Activate = activate
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func replaceEntity(entities []api.Entity, updated api.Entity) {
	for i := range entities {
		if entities[i].ID == updated.ID {
			entities[i] = updated
			return
		}
	}
}

// removeEntity returns a fresh slice so snapshots handed out earlier
// stay intact.
func removeEntity(entities []api.Entity, id int64) []api.Entity {
	out := make([]api.Entity, 0, len(entities))
	for _, entity := range entities {
		if entity.ID != id {
			out = append(out, entity)
		}
	}
	return out
}
