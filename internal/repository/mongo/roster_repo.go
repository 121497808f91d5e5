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

const rosterCollectionName = "roster"

// mongoRosterRepository implements repository.RosterRepository
type mongoRosterRepository struct {
	collection *mongo.Collection
}

// NewMongoRosterRepository creates a new roster repository backed by MongoDB.
func NewMongoRosterRepository(db *mongo.Database) repository.RosterRepository {
	return &mongoRosterRepository{
		collection: db.Collection(rosterCollectionName),
	}
}

// Create inserts a new player.
func (r *mongoRosterRepository) Create(ctx context.Context, player *domain.Player) (primitive.ObjectID, error) {
	if player.Name == "" {
		return primitive.NilObjectID, errors.New("player name is required")
	}

	player.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	player.CreatedAt = now
	player.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, player)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted player ID")
	}
	return insertedID, nil
}

// GetByID retrieves a player by ID.
func (r *mongoRosterRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Player, error) {
	var player domain.Player
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// List returns the roster ordered by jersey number.
func (r *mongoRosterRepository) List(ctx context.Context, activeOnly bool) ([]domain.Player, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "number", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	players := []domain.Player{}
	if err = cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// Update modifies a player's roster fields.
func (r *mongoRosterRepository) Update(ctx context.Context, player *domain.Player) error {
	if player.ID == primitive.NilObjectID {
		return errors.New("player ID is required for update")
	}
	player.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":      player.Name,
			"number":    player.Number,
			"position":  player.Position,
			"active":    player.Active,
			"updatedAt": player.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": player.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a player. Historical attendance and surveys keep the id.
func (r *mongoRosterRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureRosterIndexes creates necessary indexes for the roster collection.
func EnsureRosterIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "active", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index(),
		},
	})
}
