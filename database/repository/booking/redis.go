package bookingRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	recordsRepo "unilink/database/repository/records"
	"unilink/models"

	"github.com/go-redis/redis/v8"
)

const redisNamespace = "bookings"

// RedisBookingRepo keeps each booking under its own key; the session id is
// the record's unique value, so confirmation is a single atomic insert.
type RedisBookingRepo struct {
	set recordsRepo.Set
}

func NewRedisBookingRepo(client *redis.Client) *RedisBookingRepo {
	return &RedisBookingRepo{set: recordsRepo.NewRedisSet(client, redisNamespace)}
}

func (r *RedisBookingRepo) CreateIfAbsent(ctx context.Context, b models.Booking) (*models.Booking, bool, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal booking: %w", err)
	}
	stored, created, err := r.set.Insert(ctx, b.ID, b.StripeSessionID, data, score(b))
	if err != nil {
		return nil, false, err
	}
	out, err := decode(stored)
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func (r *RedisBookingRepo) Create(ctx context.Context, b models.Booking) (*models.Booking, error) {
	b.StripeSessionID = ""
	out, _, err := r.CreateIfAbsent(ctx, b)
	return out, err
}

func (r *RedisBookingRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Booking, error) {
	data, err := r.set.GetByUnique(ctx, sessionID)
	if err != nil {
		return nil, translate(err)
	}
	return decode(data)
}

func (r *RedisBookingRepo) List(ctx context.Context) ([]models.Booking, error) {
	all, err := r.set.All(ctx)
	if err != nil {
		return nil, err
	}
	bookings := make([]models.Booking, 0, len(all))
	for _, data := range all {
		b, err := decode(data)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, nil
}

func (r *RedisBookingRepo) Count(ctx context.Context) (int, error) {
	n, err := r.set.Count(ctx)
	return int(n), err
}

func (r *RedisBookingRepo) Delete(ctx context.Context, id string) error {
	ok, err := r.set.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisBookingRepo) Clear(ctx context.Context) (int64, error) {
	return r.set.Clear(ctx)
}

func score(b models.Booking) float64 {
	return float64(b.CreatedAt.UnixMilli())
}

func decode(data []byte) (*models.Booking, error) {
	var b models.Booking
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
	}
	return &b, nil
}

func translate(err error) error {
	if errors.Is(err, recordsRepo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
