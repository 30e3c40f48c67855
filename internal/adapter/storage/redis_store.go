package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/port"
)

// RedisStore implements port.KVStore on a go-redis client. Atomic maps to
// WATCH + MULTI/EXEC: reads inside the unit go through the watched
// connection, staged writes are replayed into a transactional pipeline.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyAbsent
	}
	return val, err
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) GetDocument(ctx context.Context, key string) (domain.Document, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrKeyAbsent
	}
	return domain.Document(fields), nil
}

func (s *RedisStore) PutDocument(ctx context.Context, key string, doc domain.Document) error {
	// DEL + HSET so fields dropped from the document don't linger.
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]string(doc))
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return s.client.Keys(ctx, pattern).Result()
}

func (s *RedisStore) Atomic(ctx context.Context, watchKeys []string, fn func(port.AtomicUnit) error) error {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		unit := &redisUnit{tx: tx}
		if err := fn(unit); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, w := range unit.writes {
				w(ctx, pipe)
			}
			return nil
		})
		return err
	}, watchKeys...)

	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrTxConflict
	}
	return err
}

type redisUnit struct {
	tx     *redis.Tx
	writes []func(context.Context, redis.Pipeliner)
}

func (u *redisUnit) Get(ctx context.Context, key string) (string, error) {
	val, err := u.tx.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyAbsent
	}
	return val, err
}

func (u *redisUnit) GetDocument(ctx context.Context, key string) (domain.Document, error) {
	fields, err := u.tx.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrKeyAbsent
	}
	return domain.Document(fields), nil
}

func (u *redisUnit) StageSet(key, value string) {
	u.writes = append(u.writes, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, value, 0)
	})
}

func (u *redisUnit) StagePutDocument(key string, doc domain.Document) {
	u.writes = append(u.writes, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]string(doc))
	})
}
