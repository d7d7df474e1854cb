package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

func editionParents(e *domain.Edition) map[string]string {
	return map[string]string{"contest_id": e.ContestID}
}

func TestCatalogService_CreateAssignsIdentity(t *testing.T) {
	repo := newStubCatalogRepo[*domain.Edition](editionParents)
	svc := NewCatalogService[*domain.Edition](domain.KindEditions, repo, zerolog.Nop())

	created, err := svc.Create(context.Background(), &domain.Edition{ContestID: "coac", Year: 2026})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Contains(t, repo.items, created.ID)
}

func TestCatalogService_UpdateKeepsCreatedAt(t *testing.T) {
	repo := newStubCatalogRepo[*domain.Edition](editionParents)
	svc := NewCatalogService[*domain.Edition](domain.KindEditions, repo, zerolog.Nop())

	created, err := svc.Create(context.Background(), &domain.Edition{ContestID: "coac", Year: 2025})
	require.NoError(t, err)
	createdAt := created.CreatedAt

	updated, err := svc.Update(context.Background(), created.ID, &domain.Edition{ContestID: "coac", Year: 2026, Venue: "Gran Teatro Falla"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, createdAt, updated.CreatedAt)
	assert.Equal(t, 2026, updated.Year)

	_, err = svc.Update(context.Background(), "missing", &domain.Edition{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_GetAndDelete(t *testing.T) {
	repo := newStubCatalogRepo[*domain.Locality](nil)
	svc := NewCatalogService[*domain.Locality](domain.KindLocalities, repo, zerolog.Nop())

	created, err := svc.Create(context.Background(), &domain.Locality{Name: "Cádiz", Province: "Cádiz", Country: "España"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cádiz", got.Name)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), domain.ErrNotFound)
}

func TestCatalogService_ListPaginationAndFilter(t *testing.T) {
	repo := newStubCatalogRepo[*domain.Edition](editionParents)
	svc := NewCatalogService[*domain.Edition](domain.KindEditions, repo, zerolog.Nop())

	for i := 0; i < 25; i++ {
		contest := "coac"
		if i%5 == 0 {
			contest = "other"
		}
		_, err := svc.Create(context.Background(), &domain.Edition{ContestID: contest, Year: 2000 + i})
		require.NoError(t, err, fmt.Sprintf("create %d", i))
	}

	res, err := svc.List(context.Background(), ports.ListFilter{Page: 0, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, defaultPageLimit, res.Limit)
	assert.Len(t, res.Items, defaultPageLimit)
	assert.Equal(t, int64(25), res.Total)
	assert.Equal(t, 2, res.TotalPages)

	res, err = svc.List(context.Background(), ports.ListFilter{Page: 1, Limit: 1000, ParentField: "contest_id", ParentID: "other"})
	require.NoError(t, err)
	assert.Equal(t, maxPageLimit, repo.lastQuery.Limit)
	assert.Equal(t, int64(5), res.Total)
	for _, e := range res.Items {
		assert.Equal(t, "other", e.ContestID)
	}
}
