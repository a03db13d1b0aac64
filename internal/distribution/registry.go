// Package distribution tracks background send jobs and runs the per-recipient
// generate, composite, and send loop.
package distribution

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"postify/internal/domain"
)

// Registry keeps distribution jobs in memory for the lifetime of the
// process. Jobs are never evicted; a restart forgets them.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*domain.DistributionJob
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*domain.DistributionJob)}
}

// Create registers a new running job and returns its id.
func (r *Registry) Create(holiday string, total int) string {
	id := uuid.NewString()
	job := &domain.DistributionJob{
		ID:              id,
		Status:          domain.JobStatusRunning,
		Holiday:         holiday,
		TotalRecipients: total,
		StartedAt:       time.Now().UTC(),
		Results:         []domain.RecipientResult{},
	}

	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()

	return id
}

// Get returns a copy of the job so callers can read it without racing the
// worker that keeps mutating the original.
func (r *Registry) Get(id string) (*domain.DistributionJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return job.Clone(), nil
}

// Update applies fn to the job under the write lock.
func (r *Registry) Update(id string, fn func(*domain.DistributionJob)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	fn(job)
	return nil
}
