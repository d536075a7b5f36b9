package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
)

// InterfaceRedisService defines the JSON cache interface
type InterfaceRedisService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisService caches JSON-encoded values in Redis
type RedisService struct {
	client *redis.Client
}

// NewRedisService connects to Redis using the configured address
func NewRedisService(cfg *config.Config) (InterfaceRedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisService{client: client}, nil
}

// Get reads a key and JSON-decodes it into dest. A missing key returns
// redis.Nil.
func (s *RedisService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set JSON-encodes value and stores it under key with the given TTL
func (s *RedisService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a key
func (s *RedisService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Ping checks connectivity for the health endpoint
func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool
func (s *RedisService) Close() error {
	return s.client.Close()
}
