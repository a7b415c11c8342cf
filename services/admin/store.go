package admin

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"unilink/models"

	"github.com/go-redis/redis/v8"
)

var ErrSessionNotFound = errors.New("admin session not found")

// SessionStore keeps the server-side record of each admin login.
type SessionStore interface {
	Save(ctx context.Context, sess *models.AdminSession, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.AdminSession, error)
	Delete(ctx context.Context, id string) error
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string {
	return "admin:session:" + id
}

func (r *RedisSessionStore) Save(ctx context.Context, sess *models.AdminSession, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(sess.ID), data, ttl).Err()
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*models.AdminSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess models.AdminSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}
