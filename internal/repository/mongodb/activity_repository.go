package mongodb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// ActivityRepository defines read access to stored activities. All
// operations are idempotent and return empty results on no match.
type ActivityRepository interface {
	ListByProperty(ctx context.Context, propertyID string, from, to time.Time, limit int, cursor string) ([]models.RawActivity, string, error)
	Get(ctx context.Context, id string) (*models.RawActivity, error)
	CountInWindow(ctx context.Context, propertyID string, from, to time.Time) (int64, error)
	CountPendingInWindow(ctx context.Context, propertyID string, from, to time.Time) (int64, error)
	CountUpcomingPending(ctx context.Context, propertyID string, now time.Time) (int64, error)
}

// MongoActivityRepository implements ActivityRepository against the
// activities collection.
type MongoActivityRepository struct {
	store    *Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewActivityRepository wires an activity repository instance.
func NewActivityRepository(store *Store, logger *zap.Logger) *MongoActivityRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoActivityRepository{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// Cursor marks the last document of a page for continuation. Ties on the
// date are broken by the document id so the ordering is total.
type Cursor struct {
	Date time.Time `json:"d"`
	ID   string    `json:"id"`
}

// EncodeCursor serializes a continuation point into an opaque token.
func EncodeCursor(date time.Time, id string) string {
	raw, _ := json.Marshal(Cursor{Date: date, ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a continuation token produced by EncodeCursor.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, fmt.Errorf("parse cursor: %w", err)
	}
	return c, nil
}

// ListByProperty returns activities of a property with date inside [from, to],
// sorted descending by date, capped at limit. A non-empty returned cursor
// continues the listing on the next call.
func (r *MongoActivityRepository) ListByProperty(ctx context.Context, propertyID string, from, to time.Time, limit int, cursor string) ([]models.RawActivity, string, error) {
	filter := bson.M{
		"property_id": propertyID,
		"date":        bson.M{"$gte": from, "$lte": to},
	}

	if cursor != "" {
		c, err := DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		filter["$or"] = bson.A{
			bson.M{"date": bson.M{"$lt": c.Date}},
			bson.M{"date": c.Date, "_id": bson.M{"$lt": c.ID}},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.store.database().Collection(collActivities).Find(ctx, filter, opts)
	if err != nil {
		return nil, "", models.NewFetchError("activities by property", err)
	}
	defer cur.Close(ctx)

	return r.scanPage(ctx, cur, limit)
}

// scanPage drains one page of the driver cursor, quarantining malformed
// documents. The continuation point tracks the last document the driver
// delivered, not the last one that survived quarantine, so a bad record in
// the middle of a full page never truncates the listing.
func (r *MongoActivityRepository) scanPage(ctx context.Context, cur *mongo.Cursor, limit int) ([]models.RawActivity, string, error) {
	activities := make([]models.RawActivity, 0, limit)
	scanned := 0
	var lastDate time.Time
	var lastID string

	for cur.Next(ctx) {
		scanned++
		if id, ok := cur.Current.Lookup("_id").StringValueOK(); ok {
			lastID = id
		}
		if date, ok := cur.Current.Lookup("date").TimeOK(); ok {
			lastDate = date
		}

		var raw models.RawActivity
		if err := cur.Decode(&raw); err != nil {
			r.logger.Warn("skip undecodable activity document", zap.Error(err))
			continue
		}
		if err := r.validate.Struct(&raw); err != nil {
			r.logger.Warn("quarantine malformed activity document",
				zap.String("id", raw.ID), zap.Error(err))
			continue
		}
		activities = append(activities, raw)
	}
	if err := cur.Err(); err != nil {
		return nil, "", models.NewFetchError("activities cursor", err)
	}

	next := ""
	if scanned == limit && lastID != "" {
		next = EncodeCursor(lastDate, lastID)
	}

	return activities, next, nil
}

// Get performs a point read of a single activity.
func (r *MongoActivityRepository) Get(ctx context.Context, id string) (*models.RawActivity, error) {
	var raw models.RawActivity
	err := r.store.database().Collection(collActivities).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewFetchError("activity by id", err)
	}

	if err := r.validate.Struct(&raw); err != nil {
		r.logger.Warn("rejected malformed activity document", zap.String("id", id), zap.Error(err))
		return nil, &models.ValidationError{Field: "activity", Reason: err.Error()}
	}

	return &raw, nil
}

// CountInWindow counts activities of a property with date inside [from, to].
func (r *MongoActivityRepository) CountInWindow(ctx context.Context, propertyID string, from, to time.Time) (int64, error) {
	filter := bson.M{
		"property_id": propertyID,
		"date":        bson.M{"$gte": from, "$lte": to},
	}

	count, err := r.store.database().Collection(collActivities).CountDocuments(ctx, filter)
	if err != nil {
		return 0, models.NewFetchError("count activities", err)
	}
	return count, nil
}

// CountPendingInWindow counts pending activities of a property with date
// inside [from, to]. Feeds the upcoming-tasks trend.
func (r *MongoActivityRepository) CountPendingInWindow(ctx context.Context, propertyID string, from, to time.Time) (int64, error) {
	filter := bson.M{
		"property_id": propertyID,
		"status":      string(models.StatusPending),
		"date":        bson.M{"$gte": from, "$lte": to},
	}

	count, err := r.store.database().Collection(collActivities).CountDocuments(ctx, filter)
	if err != nil {
		return 0, models.NewFetchError("count pending activities", err)
	}
	return count, nil
}

// CountUpcomingPending counts pending activities dated now or later.
func (r *MongoActivityRepository) CountUpcomingPending(ctx context.Context, propertyID string, now time.Time) (int64, error) {
	filter := bson.M{
		"property_id": propertyID,
		"status":      string(models.StatusPending),
		"date":        bson.M{"$gte": now},
	}

	count, err := r.store.database().Collection(collActivities).CountDocuments(ctx, filter)
	if err != nil {
		return 0, models.NewFetchError("count upcoming tasks", err)
	}
	return count, nil
}
