package ports

import (
	"context"

	"github.com/carnavalia/catalog-api/internal/core/domain"
)

// ListFilter carries pagination and an optional equality filter on a parent
// reference (e.g. contest_id for editions).
type ListFilter struct {
	Page        int    // 1-based
	Limit       int    // capped by the service
	ParentField string // bson field name; empty = no filter
	ParentID    string
}

// ListResult is a page of entities plus the total match count.
type ListResult[T domain.Entity] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CatalogRepository persists one kind of catalogue entity.
// FindByID, Update and Delete return domain.ErrNotFound for unknown IDs.
type CatalogRepository[T domain.Entity] interface {
	Create(ctx context.Context, entity T) error
	FindByID(ctx context.Context, id string) (T, error)
	List(ctx context.Context, filter ListFilter) ([]T, int64, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id string) error
}

// CatalogService exposes the use cases for one kind of catalogue entity.
type CatalogService[T domain.Entity] interface {
	Create(ctx context.Context, entity T) (T, error)
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context, filter ListFilter) (*ListResult[T], error)
	Update(ctx context.Context, id string, entity T) (T, error)
	Delete(ctx context.Context, id string) error
}
