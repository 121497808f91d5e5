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

const (
	planCollectionName   = "plans"
	folderCollectionName = "plan_folders"
)

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new gym plan repository backed by MongoDB.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.Name == "" || plan.Type == "" {
		return primitive.NilObjectID, errors.New("plan name and type are required")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// List returns plans matching the filter, most recently updated first.
func (r *mongoPlanRepository) List(ctx context.Context, f repository.PlanFilter) ([]domain.Plan, error) {
	filter := bson.M{}
	if !f.IncludeArchived {
		filter["isArchived"] = false
	}
	if f.GroupID != nil {
		filter["groupId"] = *f.GroupID
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []domain.Plan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Update replaces the plan's editable fields.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}
	plan.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":       plan.Name,
		"type":       plan.Type,
		"exercises":  plan.Exercises,
		"players":    plan.Players,
		"isArchived": plan.IsArchived,
		"updatedAt":  plan.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if plan.GroupID != nil {
		set["groupId"] = *plan.GroupID
	} else {
		update["$unset"] = bson.M{"groupId": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a plan.
func (r *mongoPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Ungroup clears groupId on every plan of a folder and reports how many changed.
func (r *mongoPlanRepository) Ungroup(ctx context.Context, folderID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"groupId": folderID},
		bson.M{"$unset": bson.M{"groupId": ""}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsurePlanIndexes creates necessary indexes for the plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "groupId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "isArchived", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
	})
}

// mongoFolderRepository implements repository.FolderRepository
type mongoFolderRepository struct {
	collection *mongo.Collection
}

// NewMongoFolderRepository creates a new plan folder repository backed by MongoDB.
func NewMongoFolderRepository(db *mongo.Database) repository.FolderRepository {
	return &mongoFolderRepository{
		collection: db.Collection(folderCollectionName),
	}
}

func (r *mongoFolderRepository) Create(ctx context.Context, folder *domain.Folder) (primitive.ObjectID, error) {
	folder.ID = primitive.NewObjectID()
	folder.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, folder); err != nil {
		return primitive.NilObjectID, err
	}
	return folder.ID, nil
}

func (r *mongoFolderRepository) List(ctx context.Context) ([]domain.Folder, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	folders := []domain.Folder{}
	if err = cursor.All(ctx, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *mongoFolderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
