package waitlistRepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"unilink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoWaitlistRepo struct {
	coll *mongo.Collection
}

func NewMongoWaitlistRepo(ctx context.Context, db *mongo.Database) (*MongoWaitlistRepo, error) {
	repo := &MongoWaitlistRepo{coll: db.Collection("waitlist")}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create waitlist indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoWaitlistRepo) Create(ctx context.Context, e models.WaitlistEntry) (*models.WaitlistEntry, error) {
	e.Email = strings.ToLower(e.Email)
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert waitlist entry: %w", err)
	}
	return &e, nil
}

func (r *MongoWaitlistRepo) List(ctx context.Context) ([]models.WaitlistEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.WaitlistEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waitlist: %w", err)
	}
	return entries, nil
}

func (r *MongoWaitlistRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete waitlist entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoWaitlistRepo) Clear(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear waitlist: %w", err)
	}
	return res.DeletedCount, nil
}
