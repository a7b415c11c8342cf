package database

import (
	"context"
	"fmt"
	"time"

	"unilink/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens the MongoDB client used when STORE_BACKEND=mongo. The caller
// owns the client and must Disconnect it on shutdown.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.DatabaseURL).
		SetTimeout(cfg.StoreTimeout)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Database returns the application database on client.
func Database(client *mongo.Client, cfg *config.Config) *mongo.Database {
	return client.Database(cfg.DatabaseName)
}
