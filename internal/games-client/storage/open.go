// Package storage escolhe e abre o backend do armazenamento local do
// games-client conforme KVS_BACKEND.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/games-client/session"
	"github.com/radieske/sports-games-client/internal/kvs"
	"github.com/radieske/sports-games-client/internal/kvs/pgkv"
	"github.com/radieske/sports-games-client/internal/kvs/rediskv"
	"github.com/radieske/sports-games-client/internal/kvs/sqlitekv"
	"github.com/radieske/sports-games-client/internal/shared/cache"
	"github.com/radieske/sports-games-client/internal/shared/config"
	"github.com/radieske/sports-games-client/internal/shared/db"
)

// Backends aceitos em KVS_BACKEND
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Open abre o backend configurado e devolve o Store com as migrações de
// todas as chaves versionadas já registradas
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*kvs.Store, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("kvs backend ready", zap.String("backend", cfg.KVSBackend))

	migrations := session.RegisterMigrations(kvs.NewMigrations())
	return kvs.New(backend, log, kvs.WithMigrations(migrations)), nil
}

func openBackend(ctx context.Context, cfg config.Config) (kvs.Backend, error) {
	switch cfg.KVSBackend {
	case BackendSQLite:
		return sqlitekv.Open(ctx, cfg.KVSSQLitePath)
	case BackendRedis:
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return rediskv.New(rdb, cfg.KVSRedisPrefix), nil
	case BackendPostgres:
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		b, err := pgkv.New(ctx, pg, cfg.ServiceName)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		return b, nil
	case BackendMemory:
		return kvs.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown KVS_BACKEND %q", cfg.KVSBackend)
	}
}
