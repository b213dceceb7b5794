package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/7Lumine/whitelistbot/internal/domain"
)

// Store es lo que el bot necesita de cualquier backend: el Load/Save del
// registry más Close para el shutdown.
type Store interface {
	Load(ctx context.Context) ([]domain.Entry, error)
	Save(ctx context.Context, entries []domain.Entry) error
	Close() error
}

const (
	DriverYAML     = "yaml"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
)

var ErrUnknownDriver = errors.New("unknown store driver")

type Config struct {
	Driver      string
	File        string // yaml: ruta del documento; sqlite: ruta de la base
	DatabaseURL string
	RedisURL    string
}

// Open elige el backend según cfg.Driver.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case "", DriverYAML:
		return NewYAMLStore(cfg.File, logger)
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("store %s: DATABASE_URL is required", cfg.Driver)
		}
		return OpenSQL(ctx, DriverPostgres, cfg.DatabaseURL)
	case DriverSQLite:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = cfg.File
		}
		return OpenSQL(ctx, DriverSQLite, dsn)
	case DriverRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("store %s: REDIS_URL is required", cfg.Driver)
		}
		return NewRedisStore(ctx, cfg.RedisURL)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
