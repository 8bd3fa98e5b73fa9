// Package store persists endpoint records. The Postgres repository is the
// production implementation; the memory one backs tests and dev runs.
package store

import (
	"context"
	"errors"

	"github.com/ursais/web-api/pkg/endpoint"
)

// ErrNotFound is returned by Get/Duplicate for an unknown record id.
var ErrNotFound = errors.New("endpoint not found")

// Repository abstracts persistence for endpoint records.
type Repository interface {
	Init() error
	List(ctx context.Context) ([]*endpoint.Endpoint, error)
	Get(ctx context.Context, id string) (*endpoint.Endpoint, error)
	// FindByRoute returns at most one record for the route, first by
	// insertion order, or nil when none matches. This is the elevated
	// lookup used by the request path; no auth filtering applies.
	FindByRoute(ctx context.Context, route string) (*endpoint.Endpoint, error)
	Create(ctx context.Context, e *endpoint.Endpoint) error
	Update(ctx context.Context, e *endpoint.Endpoint) error
	Delete(ctx context.Context, id string) error
	// Duplicate copies a record under a new id, appending
	// endpoint.CopySuffix to the route to keep routes unique.
	Duplicate(ctx context.Context, id string) (*endpoint.Endpoint, error)
}

// prepare runs the write-time constraints shared by every implementation.
func prepare(e *endpoint.Endpoint) error {
	if err := e.Normalize(); err != nil {
		return err
	}
	return e.Validate()
}
