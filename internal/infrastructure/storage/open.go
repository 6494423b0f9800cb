package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/travelreviews/webclient/internal/core/ports"
	"github.com/travelreviews/webclient/internal/infrastructure/db/mongo"
	"github.com/travelreviews/webclient/internal/infrastructure/db/redis"
	"github.com/travelreviews/webclient/internal/pkg/config"
)

// Open builds the Storage backend selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return NewMemory(), nil
	case config.StorageFile:
		log.Debug().Str("path", cfg.Storage.Path).Msg("using file credential storage")
		return NewFile(cfg.Storage.Path), nil
	case config.StorageRedis:
		s, err := redis.Open(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Prefix: cfg.Redis.Prefix})
		if err != nil {
			return nil, err
		}
		log.Debug().Str("addr", cfg.Redis.Addr).Msg("using redis credential storage")
		return s, nil
	case config.StorageMongo:
		db, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		log.Debug().Str("database", cfg.Mongo.Database).Msg("using mongo credential storage")
		return mongo.NewStorage(db), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Storage.Driver)
	}
}
