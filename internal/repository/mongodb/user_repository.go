package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// UserRepository defines account lookups for the auth layer.
type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// MongoUserRepository implements UserRepository against the users collection.
type MongoUserRepository struct {
	store *Store
}

// NewUserRepository wires a user repository instance.
func NewUserRepository(store *Store) *MongoUserRepository {
	return &MongoUserRepository{store: store}
}

// Get performs a point read of a single user.
func (r *MongoUserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks a user up by email address.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// TouchLastLogin records a successful sign-in time.
func (r *MongoUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_login": at}}
	if _, err := r.store.database().Collection(collUsers).UpdateByID(ctx, id, update); err != nil {
		return models.NewFetchError("touch last login", err)
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.store.database().Collection(collUsers).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewFetchError("user lookup", err)
	}
	return &user, nil
}
