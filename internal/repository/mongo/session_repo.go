package mongo

import (
	"context"
	"errors"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "schedule"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new schedule repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session. The unique (date, slot) index turns a racing
// duplicate into repository.ErrDuplicate.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.Date == "" || session.Slot == "" {
		return primitive.NilObjectID, errors.New("session date and slot are required")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetBySlot retrieves the session occupying (date, slot), if any.
func (r *mongoSessionRepository) GetBySlot(ctx context.Context, date string, slot domain.Slot) (*domain.Session, error) {
	return r.findOne(ctx, bson.M{"date": date, "slot": slot})
}

func (r *mongoSessionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListByDateRange returns sessions with from <= date <= to, ordered by date then slot.
// ISO dates compare lexically, and "AM" sorts before "PM".
func (r *mongoSessionRepository) ListByDateRange(ctx context.Context, from, to string) ([]domain.Session, error) {
	filter := bson.M{}
	dateFilter := bson.M{}
	if from != "" {
		dateFilter["$gte"] = from
	}
	if to != "" {
		dateFilter["$lte"] = to
	}
	if len(dateFilter) > 0 {
		filter["date"] = dateFilter
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "slot", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update replaces the editable fields of a session.
func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	if session.ID == primitive.NilObjectID {
		return errors.New("session ID is required for update")
	}

	session.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"date":                 session.Date,
			"slot":                 session.Slot,
			"startTime":            session.StartTime,
			"type":                 session.Type,
			"title":                session.Title,
			"location":             session.Location,
			"notes":                session.Notes,
			"courts":               session.Courts,
			"totalMinutes":         session.TotalMinutes,
			"highIntensityMinutes": session.HighIntensityMinutes,
			"parts":                session.Parts,
			"updatedAt":            session.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": session.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a session record. Child records are the service's concern.
func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSessionIndexes creates necessary indexes for the schedule collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			// One session per (date, slot).
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "slot", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("date_slot_unique"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	})
}
