package waitlistRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	recordsRepo "unilink/database/repository/records"
	"unilink/models"

	"github.com/go-redis/redis/v8"
)

type RedisWaitlistRepo struct {
	set recordsRepo.Set
}

func NewRedisWaitlistRepo(client *redis.Client) *RedisWaitlistRepo {
	return &RedisWaitlistRepo{set: recordsRepo.NewRedisSet(client, "waitlist")}
}

func (r *RedisWaitlistRepo) Create(ctx context.Context, e models.WaitlistEntry) (*models.WaitlistEntry, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal waitlist entry: %w", err)
	}
	uniq := strings.ToLower(e.Email)
	if _, created, err := r.set.Insert(ctx, e.ID, uniq, data, float64(e.CreatedAt.UnixMilli())); err != nil {
		return nil, err
	} else if !created {
		return nil, ErrDuplicateEmail
	}
	return &e, nil
}

func (r *RedisWaitlistRepo) List(ctx context.Context) ([]models.WaitlistEntry, error) {
	all, err := r.set.All(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]models.WaitlistEntry, 0, len(all))
	for _, data := range all {
		var e models.WaitlistEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal waitlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *RedisWaitlistRepo) Delete(ctx context.Context, id string) error {
	ok, err := r.set.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisWaitlistRepo) Clear(ctx context.Context) (int64, error) {
	return r.set.Clear(ctx)
}
