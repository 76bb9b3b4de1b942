package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/limaJavier/coursetimetable/internal/config"
	"github.com/limaJavier/coursetimetable/pkg/model"
)

// ErrInvalidDataset marks an uploaded dataset rejected by validation
var ErrInvalidDataset = errors.New("invalid dataset")

// Store loads and persists the raw dataset snapshot
type Store interface {
	Load(ctx context.Context) (model.RawDataset, error)
	Save(ctx context.Context, dataset model.RawDataset) error
}

// New selects the dataset store configured by cfg. The Redis client is only required by the "redis" source
func New(cfg config.DatasetConfig, client *redis.Client) (Store, error) {
	switch cfg.Source {
	case "", "file", "json":
		return NewFileStore(cfg.Path), nil
	case "csv":
		return NewCSVStore(cfg.CSVDir), nil
	case "redis":
		if client == nil {
			return nil, errors.New("redis dataset source requires a redis client")
		}
		return NewRedisStore(client, cfg.RedisKey), nil
	default:
		return nil, fmt.Errorf("unknown dataset source \"%v\"", cfg.Source)
	}
}

var validate = validator.New()

// Validate checks the field-level rules of every record. Cross-record rules (ids, faculty references) are left to
// the normalizer
func Validate(dataset model.RawDataset) error {
	if err := validate.Struct(dataset); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return fmt.Errorf("%w: %v", ErrInvalidDataset, validationErrors)
		}
		return err
	}
	return nil
}
