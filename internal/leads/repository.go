package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	// Create assigns id, status and timestamps and stores the record.
	Create(ctx context.Context, rec *Record) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	// List returns leads newest first.
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Record, error)
}

// InMemoryRepository keeps leads in process memory. Used in development
// and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Record
	order []string
	now   func() time.Time
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Record),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := rec.clone()
	stored.ID = uuid.New().String()
	stored.Status = StatusNew
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt

	r.mu.Lock()
	r.leads[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	r.mu.Unlock()

	return stored.clone(), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return rec.clone(), nil
}

func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	filter = filter.normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, 0, filter.Limit)
	skipped := 0
	for i := len(r.order) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		rec := r.leads[r.order[i]]
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, rec.clone())
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Record, error) {
	status, err := ParseStatus(string(status))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	if !rec.Status.CanTransition(status) {
		return nil, ErrInvalidTransition
	}
	rec.Status = status
	rec.UpdatedAt = r.now()
	return rec.clone(), nil
}

// Len reports how many leads are stored.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}
