package main

import (
	"context"

	"github.com/rs/zerolog"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/carnavalia/catalog-api/internal/api"
	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
	"github.com/carnavalia/catalog-api/internal/core/service"
	"github.com/carnavalia/catalog-api/internal/infrastructure/db/mongo"
)

// catalogService builds the repository and service for one kind and indexes
// the parent reference fields its list endpoint filters on.
func catalogService[T domain.Entity](
	ctx context.Context,
	db *mongodrv.Database,
	log zerolog.Logger,
	kind string,
	newEntity func() T,
	parents ...string,
) (ports.CatalogService[T], error) {
	repo := mongo.NewCatalogRepository(db, kind, newEntity)
	if err := repo.EnsureIndexes(ctx, parents...); err != nil {
		return nil, err
	}
	return service.NewCatalogService[T](kind, repo, log), nil
}

func buildCatalog(ctx context.Context, db *mongodrv.Database, log zerolog.Logger) (api.CatalogServices, error) {
	var (
		cs  api.CatalogServices
		err error
	)
	if cs.Localities, err = catalogService(ctx, db, log, domain.KindLocalities,
		func() *domain.Locality { return &domain.Locality{} }); err != nil {
		return cs, err
	}
	if cs.Contests, err = catalogService(ctx, db, log, domain.KindContests,
		func() *domain.Contest { return &domain.Contest{} }, "locality_id"); err != nil {
		return cs, err
	}
	if cs.Editions, err = catalogService(ctx, db, log, domain.KindEditions,
		func() *domain.Edition { return &domain.Edition{} }, "contest_id"); err != nil {
		return cs, err
	}
	if cs.Groups, err = catalogService(ctx, db, log, domain.KindGroups,
		func() *domain.Group { return &domain.Group{} }, "locality_id"); err != nil {
		return cs, err
	}
	if cs.Persons, err = catalogService(ctx, db, log, domain.KindPersons,
		func() *domain.Person { return &domain.Person{} }, "locality_id"); err != nil {
		return cs, err
	}
	if cs.Memberships, err = catalogService(ctx, db, log, domain.KindMemberships,
		func() *domain.Membership { return &domain.Membership{} }, "group_id", "person_id", "edition_id"); err != nil {
		return cs, err
	}
	if cs.Comments, err = catalogService(ctx, db, log, domain.KindComments,
		func() *domain.Comment { return &domain.Comment{} }, "group_id", "edition_id"); err != nil {
		return cs, err
	}
	if cs.Images, err = catalogService(ctx, db, log, domain.KindImages,
		func() *domain.Image { return &domain.Image{} }, "group_id", "edition_id"); err != nil {
		return cs, err
	}
	if cs.Videos, err = catalogService(ctx, db, log, domain.KindVideos,
		func() *domain.Video { return &domain.Video{} }, "group_id", "edition_id"); err != nil {
		return cs, err
	}
	if cs.Prizes, err = catalogService(ctx, db, log, domain.KindPrizes,
		func() *domain.Prize { return &domain.Prize{} }, "edition_id", "group_id"); err != nil {
		return cs, err
	}
	return cs, nil
}
