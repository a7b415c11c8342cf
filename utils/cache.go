package utils

import (
	"context"
	"fmt"
	"time"

	"unilink/config"

	"github.com/go-redis/redis/v8"
)

// RedisOptions builds client options for the given logical DB. REDIS_URL,
// when set, wins over REDIS_ADDR/REDIS_PASSWORD; its DB component is
// replaced by db unless db is negative.
func RedisOptions(cfg *config.Config, db int) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		if db >= 0 {
			opts.DB = db
		}
		return opts, nil
	}
	if db < 0 {
		db = cfg.RedisDB
	}
	return &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       db,
	}, nil
}

// NewRedisClient connects to the store DB and pings it. The client is
// created once at startup and shared by every repository.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := RedisOptions(cfg, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
