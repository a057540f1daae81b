package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix — префикс ключей в Redis по умолчанию.
const DefaultRedisPrefix = "gophadmin"

// RedisBackend хранит значения в Redis под ключами "<prefix>:<key>" без TTL.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend создаёт RedisBackend. Пустой prefix заменяется на DefaultRedisPrefix.
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) key(key string) string {
	return r.prefix + ":" + key
}

// Load возвращает значение по ключу или ErrNotFound.
func (r *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return data, nil
}

// Save заменяет значение по ключу.
func (r *RedisBackend) Save(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Ping проверяет соединение с Redis.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close закрывает клиент Redis.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
