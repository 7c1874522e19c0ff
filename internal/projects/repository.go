package projects

import (
	"context"
	"sync"
	"time"
)

// Repository persists projects. List returns the newest-created project
// first. Update runs fn against the stored project atomically and saves
// the result only when fn returns nil.
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Update(ctx context.Context, id string, fn func(*Project) error) (*Project, error)
}

type memoryRepository struct {
	mu       sync.RWMutex
	projects []*Project
	byID     map[string]*Project
}

// NewMemoryRepository creates an in-process project store
func NewMemoryRepository() Repository {
	return &memoryRepository{byID: make(map[string]*Project)}
}

func (r *memoryRepository) Create(ctx context.Context, project *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[project.ID]; exists {
		return ErrValidation
	}
	now := time.Now()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	stored := project.Clone()
	r.projects = append([]*Project{stored}, r.projects...)
	r.byID[stored.ID] = stored
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (r *memoryRepository) List(ctx context.Context) ([]*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Project, len(r.projects))
	for i, p := range r.projects {
		out[i] = p.Clone()
	}
	return out, nil
}

func (r *memoryRepository) Update(ctx context.Context, id string, fn func(*Project) error) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = stored.ID
	working.CreatedAt = stored.CreatedAt
	working.UpdatedAt = time.Now()

	*stored = *working.Clone()
	return working, nil
}
