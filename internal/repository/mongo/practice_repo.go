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

const practiceCollectionName = "practices"

// mongoPracticeRepository implements repository.PracticeRepository and repository.PracticeWatcher.
// Documents are keyed by the owning session's ID.
type mongoPracticeRepository struct {
	collection *mongo.Collection
}

// NewMongoPracticeRepository creates a new practice-data repository backed by MongoDB.
func NewMongoPracticeRepository(db *mongo.Database) *mongoPracticeRepository {
	return &mongoPracticeRepository{
		collection: db.Collection(practiceCollectionName),
	}
}

var (
	_ repository.PracticeRepository = (*mongoPracticeRepository)(nil)
	_ repository.PracticeWatcher    = (*mongoPracticeRepository)(nil)
)

// Get retrieves the practice blob of a session.
func (r *mongoPracticeRepository) Get(ctx context.Context, sessionID primitive.ObjectID) (*domain.PracticeData, error) {
	var data domain.PracticeData
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&data)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	data.EnsureMaps()
	return &data, nil
}

// ListBySessionIDs retrieves the blobs that exist for the given sessions.
func (r *mongoPracticeRepository) ListBySessionIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PracticeData, error) {
	if len(ids) == 0 {
		return []domain.PracticeData{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []domain.PracticeData{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].EnsureMaps()
	}
	return out, nil
}

// SaveDrills replaces the drill sheet and metrics.
func (r *mongoPracticeRepository) SaveDrills(ctx context.Context, sessionID primitive.ObjectID, rows []domain.DrillRow, metrics domain.PracticeMetrics, updatedBy string, at time.Time) error {
	return r.upsertSet(ctx, sessionID, bson.M{
		"drillRows": rows,
		"metrics":   metrics,
		"updatedAt": at,
		"updatedBy": updatedBy,
	})
}

// SetAttendance replaces the whole attendance map. Last write wins.
func (r *mongoPracticeRepository) SetAttendance(ctx context.Context, sessionID primitive.ObjectID, attendance map[string]domain.AttendanceRecord, updatedBy string, at time.Time) error {
	return r.upsertSet(ctx, sessionID, bson.M{
		"attendance": attendance,
		"updatedAt":  at,
		"updatedBy":  updatedBy,
	})
}

// OpenSurvey stores the eligibility snapshot for a survey kind.
func (r *mongoPracticeRepository) OpenSurvey(ctx context.Context, sessionID primitive.ObjectID, kind domain.SurveyKind, players []string, at time.Time) error {
	playersField, openedField := "surveyPlayers", "surveyOpenedAt"
	if kind == domain.SurveyGym {
		playersField, openedField = "gymSurveyPlayers", "gymSurveyOpenedAt"
	}
	return r.upsertSet(ctx, sessionID, bson.M{
		playersField: players,
		openedField:  at,
		"updatedAt":  at,
	})
}

// SetSurveyResponse overwrites one player's court survey in place.
func (r *mongoPracticeRepository) SetSurveyResponse(ctx context.Context, sessionID primitive.ObjectID, playerID string, resp domain.SurveyResponse) error {
	return r.setField(ctx, sessionID, "surveyData."+playerID, resp, resp.SavedAt)
}

// SetGymSurveyResponse overwrites one player's gym survey in place.
func (r *mongoPracticeRepository) SetGymSurveyResponse(ctx context.Context, sessionID primitive.ObjectID, playerID string, resp domain.GymSurveyResponse) error {
	return r.setField(ctx, sessionID, "gymSurveyData."+playerID, resp, resp.SavedAt)
}

func (r *mongoPracticeRepository) setField(ctx context.Context, sessionID primitive.ObjectID, path string, value interface{}, at time.Time) error {
	update := bson.M{"$set": bson.M{path: value, "updatedAt": at}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": sessionID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPracticeRepository) upsertSet(ctx context.Context, sessionID primitive.ObjectID, fields bson.M) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": sessionID}, bson.M{"$set": fields}, options.Update().SetUpsert(true))
	return err
}

// Delete removes a session's practice blob.
func (r *mongoPracticeRepository) Delete(ctx context.Context, sessionID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Watch follows the collection's change stream and hands every inserted, updated or
// replaced document to fn. Change streams need a replica set; on a standalone server
// Watch returns the driver's error immediately.
func (r *mongoPracticeRepository) Watch(ctx context.Context, fn func(domain.PracticeData)) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}}}}},
	}
	stream, err := r.collection.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var event struct {
			FullDocument *domain.PracticeData `bson:"fullDocument"`
		}
		if err := stream.Decode(&event); err != nil {
			return err
		}
		if event.FullDocument == nil {
			continue
		}
		event.FullDocument.EnsureMaps()
		fn(*event.FullDocument)
	}
	if ctx.Err() != nil {
		return nil
	}
	return stream.Err()
}
