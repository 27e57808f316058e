package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursegen/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap/zapcore"
)

type RedisCache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisCache(client *redis.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, logger: log}
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		r.logger.Log(zapcore.ErrorLevel, "", "Cache set failed", map[string]any{"cacheKey": key}, "CACHE", err)
		return fmt.Errorf("failed to set key %s in cache: %w", key, err)
	}
	r.logger.Log(zapcore.DebugLevel, "", "Cache set", map[string]any{"cacheKey": key, "ttl": expiration.String()}, "CACHE", nil)
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		r.logger.Log(zapcore.DebugLevel, "", "Cache miss", map[string]any{"cacheKey": key}, "CACHE", nil)
		return "", false, nil
	}
	if err != nil {
		r.logger.Log(zapcore.ErrorLevel, "", "Cache get failed", map[string]any{"cacheKey": key}, "CACHE", err)
		return "", false, fmt.Errorf("failed to get key %s from cache: %w", key, err)
	}
	r.logger.Log(zapcore.DebugLevel, "", "Cache hit", map[string]any{"cacheKey": key}, "CACHE", nil)
	return val, true, nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Log(zapcore.ErrorLevel, "", "Cache delete failed", map[string]any{"cacheKeys": keys}, "CACHE", err)
		return fmt.Errorf("failed to delete keys %v from cache: %w", keys, err)
	}
	return nil
}

// DeletePattern removes every key matching a glob pattern. DEL does not
// understand globs, so keys are collected with SCAN first.
func (r *RedisCache) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys %s: %w", pattern, err)
		}
		if err := r.Delete(ctx, keys...); err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
