package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// CatalogService implements the CRUD use cases for one entity kind.
type CatalogService[T domain.Entity] struct {
	kind   string
	repo   ports.CatalogRepository[T]
	logger zerolog.Logger
}

func NewCatalogService[T domain.Entity](kind string, repo ports.CatalogRepository[T], logger zerolog.Logger) *CatalogService[T] {
	return &CatalogService[T]{kind: kind, repo: repo, logger: logger.With().Str("kind", kind).Logger()}
}

// Create assigns a fresh ID and timestamps to entity and stores it.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) (T, error) {
	now := time.Now().UTC()
	entity.SetID(uuid.NewString())
	entity.Stamp(now, now)

	if err := s.repo.Create(ctx, entity); err != nil {
		s.logger.Error().Err(err).Msg("failed to create entity")
		var zero T
		return zero, err
	}

	s.logger.Info().Str("id", entity.GetID()).Msg("entity created")
	return entity, nil
}

func (s *CatalogService[T]) Get(ctx context.Context, id string) (T, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns one page of entities. Page and limit are normalised to
// page >= 1 and 1 <= limit <= 100.
func (s *CatalogService[T]) List(ctx context.Context, filter ports.ListFilter) (*ports.ListResult[T], error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ports.ListResult[T]{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Update replaces the stored entity with id. The ID and creation time of the
// stored record are kept.
func (s *CatalogService[T]) Update(ctx context.Context, id string, entity T) (T, error) {
	var zero T

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return zero, err
	}

	entity.SetID(id)
	entity.Stamp(existing.Created(), time.Now().UTC())
	if err := s.repo.Update(ctx, entity); err != nil {
		return zero, err
	}

	s.logger.Info().Str("id", id).Msg("entity updated")
	return entity, nil
}

func (s *CatalogService[T]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Msg("entity deleted")
	return nil
}
