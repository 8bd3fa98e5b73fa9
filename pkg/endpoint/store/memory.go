package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ursais/web-api/pkg/endpoint"
)

// MemoryRepository is a non-persistent repository for tests and dev.
// Insertion order is kept so FindByRoute has the same first-match
// semantics as the SQL implementation.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*endpoint.Endpoint
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: map[string]*endpoint.Endpoint{}}
}

func (m *MemoryRepository) Init() error { return nil }

func (m *MemoryRepository) List(ctx context.Context) ([]*endpoint.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*endpoint.Endpoint, 0, len(m.order))
	for _, id := range m.order {
		list = append(list, clone(m.items[id]))
	}
	return list, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (*endpoint.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.items[id]; ok {
		return clone(e), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) FindByRoute(ctx context.Context, route string) (*endpoint.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if m.items[id].Route == route {
			return clone(m.items[id]), nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) Create(ctx context.Context, e *endpoint.Endpoint) error {
	if err := prepare(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if m.items[id].Route == e.Route {
			return endpoint.NewUserError("route %s already exists", e.Route)
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	m.items[e.ID] = clone(e)
	m.order = append(m.order, e.ID)
	return nil
}

func (m *MemoryRepository) Update(ctx context.Context, e *endpoint.Endpoint) error {
	if err := prepare(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[e.ID]; !ok {
		return ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	m.items[e.ID] = clone(e)
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryRepository) Duplicate(ctx context.Context, id string) (*endpoint.Endpoint, error) {
	src, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dup := copyRecord(src)
	if err := m.Create(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

func clone(e *endpoint.Endpoint) *endpoint.Endpoint {
	c := *e
	return &c
}
