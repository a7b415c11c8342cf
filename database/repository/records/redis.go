package recordsRepo

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// KEYS: record, index, uniques. ARGV: id, data, score, uniq, record prefix.
var insertScript = redis.NewScript(`
if ARGV[4] ~= '' then
  local owner = redis.call('HGET', KEYS[3], ARGV[4])
  if owner then
    local existing = redis.call('HGET', ARGV[5] .. owner, 'data')
    if existing then
      return {0, existing}
    end
  end
  redis.call('HSET', KEYS[3], ARGV[4], ARGV[1])
end
redis.call('HSET', KEYS[1], 'data', ARGV[2], 'uniq', ARGV[4])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
return {1, ARGV[2]}
`)

// KEYS: record, index, uniques. ARGV: id.
var deleteScript = redis.NewScript(`
local uniq = redis.call('HGET', KEYS[1], 'uniq')
if redis.call('DEL', KEYS[1]) == 0 then
  return 0
end
redis.call('ZREM', KEYS[2], ARGV[1])
if uniq and uniq ~= '' and redis.call('HGET', KEYS[3], uniq) == ARGV[1] then
  redis.call('HDEL', KEYS[3], uniq)
end
return 1
`)

// KEYS: index, uniques. ARGV: record prefix.
var clearScript = redis.NewScript(`
local ids = redis.call('ZRANGE', KEYS[1], 0, -1)
for _, id in ipairs(ids) do
  redis.call('DEL', ARGV[1] .. id)
end
redis.call('DEL', KEYS[1], KEYS[2])
return #ids
`)

// RedisSet implements Set with a hash per record, a sorted-set index and a
// hash of unique values, all under one namespace.
type RedisSet struct {
	client    *redis.Client
	namespace string
}

// NewRedisSet returns a Set storing its keys under namespace, e.g.
// "bookings" gives bookings:record:<id>, bookings:index, bookings:uniques.
func NewRedisSet(client *redis.Client, namespace string) *RedisSet {
	return &RedisSet{client: client, namespace: namespace}
}

func (s *RedisSet) recordPrefix() string { return s.namespace + ":record:" }

func (s *RedisSet) recordKey(id string) string { return s.recordPrefix() + id }

func (s *RedisSet) indexKey() string { return s.namespace + ":index" }

func (s *RedisSet) uniquesKey() string { return s.namespace + ":uniques" }

func (s *RedisSet) Insert(ctx context.Context, id, uniq string, data []byte, score float64) ([]byte, bool, error) {
	res, err := insertScript.Run(ctx, s.client,
		[]string{s.recordKey(id), s.indexKey(), s.uniquesKey()},
		id, data, score, uniq, s.recordPrefix(),
	).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("insert %s: %w", s.recordKey(id), err)
	}
	if len(res) != 2 {
		return nil, false, fmt.Errorf("insert %s: unexpected script reply %v", s.recordKey(id), res)
	}
	created, _ := res[0].(int64)
	stored, _ := res[1].(string)
	return []byte(stored), created == 1, nil
}

func (s *RedisSet) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.recordKey(id), "data").Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.recordKey(id), err)
	}
	return data, nil
}

func (s *RedisSet) GetByUnique(ctx context.Context, uniq string) ([]byte, error) {
	if uniq == "" {
		return nil, ErrNotFound
	}
	id, err := s.client.HGet(ctx, s.uniquesKey(), uniq).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", uniq, err)
	}
	return s.Get(ctx, id)
}

func (s *RedisSet) All(ctx context.Context) ([][]byte, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.indexKey(), err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.StringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGet(ctx, s.recordKey(id), "data")
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("list %s: %w", s.indexKey(), err)
	}

	out := make([][]byte, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			// Deleted between ZRANGE and HGET.
			continue
		}
		out = append(out, data)
	}
	return out, nil
}

func (s *RedisSet) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.indexKey(), err)
	}
	return n, nil
}

func (s *RedisSet) Delete(ctx context.Context, id string) (bool, error) {
	n, err := deleteScript.Run(ctx, s.client,
		[]string{s.recordKey(id), s.indexKey(), s.uniquesKey()},
		id,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", s.recordKey(id), err)
	}
	return n == 1, nil
}

func (s *RedisSet) Clear(ctx context.Context) (int64, error) {
	n, err := clearScript.Run(ctx, s.client,
		[]string{s.indexKey(), s.uniquesKey()},
		s.recordPrefix(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", s.namespace, err)
	}
	return n, nil
}
