package service

import (
	"context"
	"errors"
	"sync"
)

// ErrJobAlreadyRunning is returned when starting a second task for the
// same job id.
var ErrJobAlreadyRunning = errors.New("job already running")

// Registry supervises the detached per-job background tasks. Each job
// id gets at most one goroutine; all of them share the registry's root
// context, so cancelling it abandons every in-flight task at its next
// suspension point.
type Registry struct {
	ctx     context.Context
	mu      sync.Mutex
	wg      sync.WaitGroup
	running map[string]struct{}
}

func NewRegistry(ctx context.Context) *Registry {
	return &Registry{
		ctx:     ctx,
		running: make(map[string]struct{}),
	}
}

// Start launches fn for jobID unless a task for that id is already
// live.
func (r *Registry) Start(jobID string, fn func(ctx context.Context)) error {
	r.mu.Lock()
	if _, ok := r.running[jobID]; ok {
		r.mu.Unlock()
		return ErrJobAlreadyRunning
	}
	r.running[jobID] = struct{}{}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.running, jobID)
			r.mu.Unlock()
			r.wg.Done()
		}()
		fn(r.ctx)
	}()

	return nil
}

// IsRunning reports whether a task for jobID is live.
func (r *Registry) IsRunning(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[jobID]
	return ok
}

// Count returns the number of live tasks.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}

// Wait blocks until every started task has returned.
func (r *Registry) Wait() {
	r.wg.Wait()
}
