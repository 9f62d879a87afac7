package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/car-cost-forecast/internal/config"
	"github.com/iwvelando/car-cost-forecast/internal/tracing"
	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
	"gopkg.in/yaml.v3"
)

// DefaultShutdownTimeout bounds how long in-flight projections may finish
// after a termination signal.
const DefaultShutdownTimeout = 10 * time.Second

// Config defines runtime parameters for the projection API.
type Config struct {
	Address         string               `yaml:"address"`
	MaxUploadSize   string               `yaml:"maxUploadSize"`
	ShutdownTimeout string               `yaml:"shutdownTimeout"`
	Logging         config.LoggingConfig `yaml:"logging"`
	Tracing         tracing.Config       `yaml:"tracing"`
	Store           config.StoreConfig   `yaml:"store"`

	uploadSizeBytes int64
	shutdownTimeout time.Duration
}

func defaultConfig() *Config {
	cfg := &Config{}
	// An empty config always normalizes cleanly.
	_ = cfg.normalize()
	return cfg
}

// LoadConfig reads the server configuration from YAML. A missing file yields
// the defaults: listen on constants.DefaultServerAddress and keep presets in
// constants.DefaultPresetFile.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid server config %s: %w", path, err)
	}
	return cfg, nil
}

// UploadSizeBytes is the largest request body a handler will read.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// GracePeriod is how long shutdown waits for open requests.
func (c *Config) GracePeriod() time.Duration {
	return c.shutdownTimeout
}

func (c *Config) normalize() error {
	if c.Address = strings.TrimSpace(c.Address); c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if err := normalizeStore(&c.Store); err != nil {
		return err
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return validation.NewError("maxUploadSize", "%v", err)
	}
	if size == 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size

	c.shutdownTimeout = DefaultShutdownTimeout
	if s := strings.TrimSpace(c.ShutdownTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return validation.NewError("shutdownTimeout", "must be a positive duration, got %q", c.ShutdownTimeout)
		}
		c.shutdownTimeout = d
	}
	return nil
}

// normalizeStore fills the per-backend defaults that store.New would otherwise
// pick, so the effective location shows up in the loaded config.
func normalizeStore(s *config.StoreConfig) error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case "", constants.StoreBackendFile:
		s.Backend = constants.StoreBackendFile
		if s.Path == "" {
			s.Path = constants.DefaultPresetFile
		}
	case constants.StoreBackendSQLite:
		if s.Path == "" {
			s.Path = constants.DefaultPresetDatabase
		}
	case constants.StoreBackendRedis:
		if s.RedisAddr == "" {
			s.RedisAddr = constants.DefaultRedisAddr
		}
		if s.RedisPrefix == "" {
			s.RedisPrefix = constants.DefaultRedisPrefix
		}
	default:
		return validation.NewError("store.backend", "must be one of %s, %s or %s, got %q",
			constants.StoreBackendFile, constants.StoreBackendSQLite, constants.StoreBackendRedis, s.Backend)
	}
	return nil
}

// Longer suffixes first so "MB" is not read as "B".
var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"GB", 1 << 30}, {"G", 1 << 30},
	{"MB", 1 << 20}, {"M", 1 << 20},
	{"KB", 1 << 10}, {"K", 1 << 10},
	{"B", 1},
}

// ParseSize converts a byte count with an optional binary unit ("256K", "2MB")
// into bytes. An empty value means constants.DefaultMaxUploadSizeBytes.
func ParseSize(value string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	if s == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	multiplier := int64(1)
	for _, unit := range sizeUnits {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.multiplier
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", value)
	}
	if n < 0 || n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size %q out of range", value)
	}
	return n * multiplier, nil
}
