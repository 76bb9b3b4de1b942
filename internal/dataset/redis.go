package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/limaJavier/coursetimetable/internal/config"
	"github.com/limaJavier/coursetimetable/pkg/model"
)

// redisClient is the subset of *redis.Client the store relies on
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps the dataset snapshot as a JSON payload under a single key
type RedisStore struct {
	client redisClient
	key    string
}

func NewRedisStore(client redisClient, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// NewRedisClient returns a connected Redis client.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (store *RedisStore) Load(ctx context.Context) (model.RawDataset, error) {
	raw, err := store.client.Get(ctx, store.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.RawDataset{}, fmt.Errorf("%w: redis key %v", model.ErrDatasetMissing, store.key)
	} else if err != nil {
		return model.RawDataset{}, fmt.Errorf("redis get %s: %w", store.key, err)
	}

	return model.DatasetFromBytes(raw)
}

func (store *RedisStore) Save(ctx context.Context, dataset model.RawDataset) error {
	payload, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	if err := store.client.Set(ctx, store.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", store.key, err)
	}
	return nil
}
