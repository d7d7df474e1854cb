package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

// CatalogRepository implements ports.CatalogRepository for one entity kind.
// newEntity allocates the value documents are decoded into.
type CatalogRepository[T domain.Entity] struct {
	col       *mongo.Collection
	newEntity func() T
}

func NewCatalogRepository[T domain.Entity](db *mongo.Database, kind string, newEntity func() T) *CatalogRepository[T] {
	return &CatalogRepository[T]{col: db.Collection(kind), newEntity: newEntity}
}

func (r *CatalogRepository[T]) Create(ctx context.Context, entity T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, entity); err != nil {
		return fmt.Errorf("insert %s: %w", r.col.Name(), err)
	}
	return nil
}

func (r *CatalogRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	entity := r.newEntity()
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(entity); err != nil {
		var zero T
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, domain.ErrNotFound
		}
		return zero, fmt.Errorf("find %s: %w", r.col.Name(), err)
	}
	return entity, nil
}

// List returns one page ordered by creation time, plus the total match count.
func (r *CatalogRepository[T]) List(ctx context.Context, f ports.ListFilter) ([]T, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.ParentField != "" && f.ParentID != "" {
		filter[f.ParentField] = f.ParentID
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.col.Name(), err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.col.Name(), err)
	}
	defer cur.Close(ctx)

	items := make([]T, 0, f.Limit)
	for cur.Next(ctx) {
		entity := r.newEntity()
		if err := cur.Decode(entity); err != nil {
			return nil, 0, fmt.Errorf("decode %s: %w", r.col.Name(), err)
		}
		items = append(items, entity)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.col.Name(), err)
	}
	return items, total, nil
}

func (r *CatalogRepository[T]) Update(ctx context.Context, entity T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": entity.GetID()}, entity)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes indexes the reference fields the collection is filtered by.
func (r *CatalogRepository[T]) EnsureIndexes(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := make([]mongo.IndexModel, 0, len(fields))
	for _, f := range fields {
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: f, Value: 1}}})
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
