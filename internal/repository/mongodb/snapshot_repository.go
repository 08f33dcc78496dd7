package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// SnapshotRepository persists and reads daily KPI snapshots.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot models.KPISnapshot) error
	Latest(ctx context.Context, propertyID string) (*models.KPISnapshot, error)
	LatestBefore(ctx context.Context, propertyID string, cutoff time.Time) (*models.KPISnapshot, error)
}

// MongoSnapshotRepository implements SnapshotRepository against the
// kpi_snapshots collection.
type MongoSnapshotRepository struct {
	store *Store
}

// NewSnapshotRepository wires a snapshot repository instance.
func NewSnapshotRepository(store *Store) *MongoSnapshotRepository {
	return &MongoSnapshotRepository{store: store}
}

// Save inserts a snapshot, assigning an id when absent.
func (r *MongoSnapshotRepository) Save(ctx context.Context, snapshot models.KPISnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if _, err := r.store.database().Collection(collSnapshots).InsertOne(ctx, snapshot); err != nil {
		return models.NewFetchError("save snapshot", err)
	}
	return nil
}

// Latest returns the most recent snapshot of a property, or ErrNotFound.
func (r *MongoSnapshotRepository) Latest(ctx context.Context, propertyID string) (*models.KPISnapshot, error) {
	return r.findOne(ctx, bson.M{"property_id": propertyID})
}

// LatestBefore returns the most recent snapshot captured at or before the
// cutoff, or ErrNotFound.
func (r *MongoSnapshotRepository) LatestBefore(ctx context.Context, propertyID string, cutoff time.Time) (*models.KPISnapshot, error) {
	return r.findOne(ctx, bson.M{
		"property_id": propertyID,
		"captured_at": bson.M{"$lte": cutoff},
	})
}

func (r *MongoSnapshotRepository) findOne(ctx context.Context, filter bson.M) (*models.KPISnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "captured_at", Value: -1}})

	var snapshot models.KPISnapshot
	err := r.store.database().Collection(collSnapshots).FindOne(ctx, filter, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewFetchError("latest snapshot", err)
	}
	return &snapshot, nil
}
