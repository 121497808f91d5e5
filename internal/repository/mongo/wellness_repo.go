package mongo

import (
	"context"
	"errors"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const wellnessCollectionName = "wellness"

// mongoWellnessRepository implements repository.WellnessRepository.
// Each document is one date, keyed by the YYYY-MM-DD string.
type mongoWellnessRepository struct {
	collection *mongo.Collection
}

// NewMongoWellnessRepository creates a new wellness repository backed by MongoDB.
func NewMongoWellnessRepository(db *mongo.Database) repository.WellnessRepository {
	return &mongoWellnessRepository{
		collection: db.Collection(wellnessCollectionName),
	}
}

// GetDay retrieves the aggregate for a date.
func (r *mongoWellnessRepository) GetDay(ctx context.Context, date string) (*domain.WellnessDay, error) {
	var day domain.WellnessDay
	err := r.collection.FindOne(ctx, bson.M{"_id": date}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if day.Responses == nil {
		day.Responses = map[string]domain.WellnessResponse{}
	}
	return &day, nil
}

// SaveDay writes the whole day document, guarded by its version.
func (r *mongoWellnessRepository) SaveDay(ctx context.Context, day *domain.WellnessDay, expectedVersion int64) error {
	now := time.Now().UTC()
	if expectedVersion == 0 {
		// Creates the day, or claims one stored without a version (seeded or imported).
		// A versioned document fails the filter, and the upsert's insert then hits the _id key.
		filter := bson.M{
			"_id": day.Date,
			"$or": bson.A{
				bson.M{"version": bson.M{"$exists": false}},
				bson.M{"version": 0},
			},
		}
		update := bson.M{
			"$set": bson.M{
				"responses":     day.Responses,
				"averages":      day.Averages,
				"responseCount": day.ResponseCount,
				"version":       int64(1),
				"updatedAt":     now,
			},
		}
		if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return repository.ErrVersionConflict
			}
			return err
		}
		day.Version = 1
		day.UpdatedAt = now
		return nil
	}

	filter := bson.M{"_id": day.Date, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"responses":     day.Responses,
			"averages":      day.Averages,
			"responseCount": day.ResponseCount,
			"updatedAt":     now,
		},
		"$inc": bson.M{"version": 1},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrVersionConflict
	}
	day.Version = expectedVersion + 1
	day.UpdatedAt = now
	return nil
}

// ListRange returns the day documents with from <= date <= to, oldest first.
func (r *mongoWellnessRepository) ListRange(ctx context.Context, from, to string) ([]domain.WellnessDay, error) {
	filter := bson.M{"_id": bson.M{"$gte": from, "$lte": to}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	days := []domain.WellnessDay{}
	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}
