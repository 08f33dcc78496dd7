package mongodb

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// PropertyRepository defines read access to stored properties.
type PropertyRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error)
	ListAll(ctx context.Context) ([]models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
}

// MongoPropertyRepository implements PropertyRepository against the
// properties collection.
type MongoPropertyRepository struct {
	store    *Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPropertyRepository wires a property repository instance.
func NewPropertyRepository(store *Store, logger *zap.Logger) *MongoPropertyRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoPropertyRepository{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// ListByOwner returns every property owned by the user, sorted by name.
// No matches yield an empty slice, never an error.
func (r *MongoPropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	filter := bson.M{"owner": ownerID}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cur, err := r.store.database().Collection(collProperties).Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewFetchError("properties by owner", err)
	}
	defer cur.Close(ctx)

	return r.decodeAll(ctx, cur)
}

// ListAll returns every stored property, sorted by name. Used by the
// snapshot job which walks all properties regardless of owner.
func (r *MongoPropertyRepository) ListAll(ctx context.Context) ([]models.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cur, err := r.store.database().Collection(collProperties).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, models.NewFetchError("all properties", err)
	}
	defer cur.Close(ctx)

	return r.decodeAll(ctx, cur)
}

// Get performs a point read of a single property.
func (r *MongoPropertyRepository) Get(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	err := r.store.database().Collection(collProperties).FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewFetchError("property by id", err)
	}

	if err := r.validate.Struct(&property); err != nil {
		r.logger.Warn("rejected malformed property document", zap.String("id", id), zap.Error(err))
		return nil, &models.ValidationError{Field: "property", Reason: err.Error()}
	}

	return &property, nil
}

func (r *MongoPropertyRepository) decodeAll(ctx context.Context, cur *mongo.Cursor) ([]models.Property, error) {
	properties := make([]models.Property, 0)
	for cur.Next(ctx) {
		var property models.Property
		if err := cur.Decode(&property); err != nil {
			r.logger.Warn("skip undecodable property document", zap.Error(err))
			continue
		}
		if err := r.validate.Struct(&property); err != nil {
			r.logger.Warn("quarantine malformed property document",
				zap.String("id", property.ID), zap.Error(err))
			continue
		}
		properties = append(properties, property)
	}
	if err := cur.Err(); err != nil {
		return nil, models.NewFetchError("properties cursor", err)
	}

	return properties, nil
}
