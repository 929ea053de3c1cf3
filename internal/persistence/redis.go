package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// RedisDocument stores the document as a single string value.
type RedisDocument struct {
	redis *Redis
	key   string
}

// NewRedisDocument returns a backend bound to key.
func NewRedisDocument(r *Redis, key string) *RedisDocument {
	return &RedisDocument{redis: r, key: key}
}

func (d *RedisDocument) Read(ctx context.Context) ([]byte, error) {
	data, err := d.redis.Client.Get(ctx, d.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", d.key, err)
	}
	return data, nil
}

// Write replaces the key in one SET, which Redis applies atomically.
func (d *RedisDocument) Write(ctx context.Context, data []byte) error {
	if err := d.redis.Client.Set(ctx, d.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", d.key, err)
	}
	return nil
}

func (d *RedisDocument) Ping(ctx context.Context) error {
	return d.redis.Ping(ctx)
}
