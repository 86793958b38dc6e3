package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"songmarket/internal/server/database"
)

// ResourceStore is the persistence contract shared by every resource kind.
type ResourceStore[T, F any] interface {
	Create(ctx context.Context, id string, fields F) (*T, error)
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, fields F) (*T, error)
	Delete(ctx context.Context, id string) error
}

// ResourceService implements create/list/get/update/delete for one kind.
type ResourceService[T, F any] struct {
	store ResourceStore[T, F]
	label string
}

// NewResourceService wraps store; label names the kind in messages ("Song").
func NewResourceService[T, F any](store ResourceStore[T, F], label string) *ResourceService[T, F] {
	return &ResourceService[T, F]{store: store, label: label}
}

// Label returns the display name of the resource kind.
func (s *ResourceService[T, F]) Label() string {
	return s.label
}

// Create stores a new record under a generated id.
func (s *ResourceService[T, F]) Create(ctx context.Context, fields F) (*T, error) {
	return s.store.Create(ctx, uuid.NewString(), fields)
}

// List returns every record.
func (s *ResourceService[T, F]) List(ctx context.Context) ([]T, error) {
	return s.store.List(ctx)
}

// Get returns the record with id. Ids that are not UUIDs cannot exist.
func (s *ResourceService[T, F]) Get(ctx context.Context, id string) (*T, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	rec, err := s.store.Get(ctx, id)
	return rec, notFound(err)
}

// Update applies the supplied fields and returns the updated record.
func (s *ResourceService[T, F]) Update(ctx context.Context, id string, fields F) (*T, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	rec, err := s.store.Update(ctx, id, fields)
	return rec, notFound(err)
}

// Delete removes the record with id.
func (s *ResourceService[T, F]) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	return notFound(s.store.Delete(ctx, id))
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
