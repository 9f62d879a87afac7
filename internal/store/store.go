// Package store keeps named parameter presets so scenarios can refer to a
// vehicle by name instead of repeating its figures.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/car-cost-forecast/internal/config"
	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a preset name is unknown.
var ErrNotFound = errors.New("preset not found")

// FieldName is the field reported when a preset name is rejected.
const FieldName = "name"

// Store is a name to parameter record mapping.
type Store interface {
	Save(ctx context.Context, name string, params costmodel.Parameters) error
	Load(ctx context.Context, name string) (costmodel.Parameters, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// New opens the backend selected in the store configuration.
func New(ctx context.Context, logger *zap.Logger, conf config.StoreConfig) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(fmt.Sprintf("opening %s preset store", conf.Backend),
		zap.String("op", "store.New"),
		zap.String("path", conf.Path),
	)

	switch conf.Backend {
	case "", constants.StoreBackendFile:
		path := conf.Path
		if path == "" {
			path = constants.DefaultPresetFile
		}
		return NewFileStore(path), nil
	case constants.StoreBackendSQLite:
		path := conf.Path
		if path == "" {
			path = constants.DefaultPresetDatabase
		}
		return OpenSQLite(path)
	case constants.StoreBackendRedis:
		return NewRedisStore(ctx, conf)
	}
	return nil, fmt.Errorf("unknown store backend %q", conf.Backend)
}

// normalizeName trims the preset name and rejects empty names.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validation.NewError(FieldName, "preset name cannot be empty")
	}
	return name, nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}
