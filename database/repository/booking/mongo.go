package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unilink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository with one document per
// booking and a unique partial index on the session id.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repository on db.bookings and makes sure its
// indexes exist.
func NewMongoBookingRepo(ctx context.Context, db *mongo.Database) (*MongoBookingRepo, error) {
	repo := &MongoBookingRepo{coll: db.Collection("bookings")}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoBookingRepo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "stripeSessionId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"stripeSessionId": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) CreateIfAbsent(ctx context.Context, b models.Booking) (*models.Booking, bool, error) {
	_, err := r.coll.InsertOne(ctx, b)
	if err == nil {
		return &b, true, nil
	}
	if b.StripeSessionID != "" && mongo.IsDuplicateKeyError(err) {
		existing, findErr := r.GetBySessionID(ctx, b.StripeSessionID)
		if findErr != nil {
			return nil, false, fmt.Errorf("failed to load existing booking: %w", findErr)
		}
		return existing, false, nil
	}
	return nil, false, fmt.Errorf("failed to insert booking: %w", err)
}

func (r *MongoBookingRepo) Create(ctx context.Context, b models.Booking) (*models.Booking, error) {
	b.StripeSessionID = ""
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	var b models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Booking, error) {
	if sessionID == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"stripeSessionId": sessionID})
}

func (r *MongoBookingRepo) List(ctx context.Context) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return int(n), nil
}

func (r *MongoBookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoBookingRepo) Clear(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear bookings: %w", err)
	}
	return res.DeletedCount, nil
}
