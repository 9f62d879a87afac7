package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/car-cost-forecast/internal/config"
	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each preset as a JSON value under a prefixed key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(ctx context.Context, conf config.StoreConfig) (*RedisStore, error) {
	addr := conf.RedisAddr
	if addr == "" {
		addr = constants.DefaultRedisAddr
	}
	prefix := conf.RedisPrefix
	if prefix == "" {
		prefix = constants.DefaultRedisPrefix
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: rdb, prefix: prefix}, nil
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// Save stores params under name, replacing any existing preset.
func (s *RedisStore) Save(ctx context.Context, name string, params costmodel.Parameters) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	value, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding preset %s: %w", name, err)
	}
	return s.client.Set(ctx, s.key(name), value, 0).Err()
}

// Load returns the preset stored under name.
func (s *RedisStore) Load(ctx context.Context, name string) (costmodel.Parameters, error) {
	name, err := normalizeName(name)
	if err != nil {
		return costmodel.Parameters{}, err
	}
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return costmodel.Parameters{}, notFound(name)
	}
	if err != nil {
		return costmodel.Parameters{}, fmt.Errorf("loading preset %s: %w", name, err)
	}

	var params costmodel.Parameters
	if err := json.Unmarshal(val, &params); err != nil {
		return costmodel.Parameters{}, fmt.Errorf("decoding preset %s: %w", name, err)
	}
	return params, nil
}

// Delete removes the preset stored under name.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.key(name)).Result()
	if err != nil {
		return fmt.Errorf("deleting preset %s: %w", name, err)
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

// List returns the preset names in alphabetical order.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
