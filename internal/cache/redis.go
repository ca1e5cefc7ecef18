package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spigell/ats-matcher/internal/models"
)

const keyPrefix = "ats-matcher:match:"

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Redis struct {
	client redis.UniversalClient
}

func NewRedis(cfg RedisConfig) *Redis {
	return NewRedisWithClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}))
}

func NewRedisWithClient(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (*models.MatchResult, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var result models.MatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("decoding cached result: %w", err)
	}
	return &result, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, result models.MatchResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
