package seatmap

import (
	"context"
	"fmt"
	"strconv"

	"cinema-cli/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a go-redis client from the cache config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisBackend shares mappings between terminals. Each studio is one hash
// (seat number -> id); a set records which studios have been refreshed so an
// empty seat list still counts as cached.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "cinema"
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) mappingKey(studioID string) string {
	return fmt.Sprintf("%s:seatmap:%s", r.prefix, studioID)
}

func (r *RedisBackend) knownKey() string {
	return r.prefix + ":seatmap:known"
}

func (r *RedisBackend) namesKey() string {
	return r.prefix + ":studio_names"
}

func (r *RedisBackend) Replace(ctx context.Context, studioID string, mapping Mapping) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := r.mappingKey(studioID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(mapping) > 0 {
			values := make(map[string]any, len(mapping))
			for number, id := range mapping {
				values[number] = id
			}
			pipe.HSet(ctx, key, values)
		}
		pipe.SAdd(ctx, r.knownKey(), studioID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace seat map in redis: %w", err)
	}
	return nil
}

func (r *RedisBackend) Mapping(ctx context.Context, studioID string) (Mapping, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	known, err := r.client.SIsMember(ctx, r.knownKey(), studioID).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to check seat map in redis: %w", err)
	}
	if !known {
		return nil, false, nil
	}
	raw, err := r.client.HGetAll(ctx, r.mappingKey(studioID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get seat map from redis: %w", err)
	}
	mapping := make(Mapping, len(raw))
	for number, value := range raw {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("seat %s has non-numeric id %q", number, value)
		}
		mapping[number] = id
	}
	return mapping, true, nil
}

func (r *RedisBackend) SetName(ctx context.Context, studioID, name string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.HSet(ctx, r.namesKey(), studioID, name).Err(); err != nil {
		return fmt.Errorf("failed to set studio name in redis: %w", err)
	}
	return nil
}

func (r *RedisBackend) Name(ctx context.Context, studioID string) (string, bool, error) {
	if r.client == nil {
		return "", false, fmt.Errorf("redis client is nil")
	}
	name, err := r.client.HGet(ctx, r.namesKey(), studioID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get studio name from redis: %w", err)
	}
	return name, true, nil
}
