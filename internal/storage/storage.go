// Package storage picks and connects the cache backend for rendered output
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/UnendingLoop/ResizedImage/internal/config"
	"github.com/UnendingLoop/ResizedImage/internal/repository"
	"github.com/UnendingLoop/ResizedImage/internal/storage/memstorage"
	"github.com/UnendingLoop/ResizedImage/internal/storage/miniostorage"
	"github.com/UnendingLoop/ResizedImage/internal/storage/redisstorage"
	"github.com/wb-go/wbf/zlog"
)

// Cache is a string key-value store. A miss is (_, false, nil), backend failures come back as errors.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Janitor is implemented by backends that need expired entries removed explicitly.
type Janitor interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// NewCache connects the backend named in s.CacheBackend, retrying network backends.
func NewCache(ctx context.Context, s *config.Settings) (Cache, error) {
	switch s.CacheBackend {
	case config.BackendMemory, "":
		return memstorage.NewMemoryCache(s.CacheSize, s.CacheTTL), nil
	case config.BackendRedis:
		return withRetries(ctx, s, func(ctx context.Context) (Cache, error) {
			return redisstorage.NewRedisCache(ctx, redisstorage.Options{
				Addr:     s.RedisAddr,
				Password: s.RedisPassword,
				DB:       s.RedisDB,
				TTL:      s.CacheTTL,
			})
		})
	case config.BackendMinio:
		return withRetries(ctx, s, func(ctx context.Context) (Cache, error) {
			return miniostorage.NewMinioCache(ctx, miniostorage.Options{
				Endpoint: s.MinioEndpoint,
				User:     s.MinioUser,
				Pass:     s.MinioPass,
				Secure:   s.MinioSecure,
				Bucket:   s.Bucket,
			})
		})
	case config.BackendPostgres:
		dbConn, err := repository.ConnectWithRetries(ctx, s.PostgresDSN, s.ConnectRetries, s.ConnectDelay)
		if err != nil {
			return nil, err
		}
		if err := repository.MigrateWithRetries(ctx, dbConn.Master, s.MigrationsPath, s.ConnectRetries, s.ConnectDelay); err != nil {
			_ = dbConn.Master.Close()
			return nil, err
		}
		return repository.NewPostgresCache(dbConn, s.CacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", s.CacheBackend)
	}
}

func withRetries(ctx context.Context, s *config.Settings, connect func(context.Context) (Cache, error)) (Cache, error) {
	var err error
	for i := 0; i < max(s.ConnectRetries, 1); i++ {
		var c Cache
		if c, err = connect(ctx); err == nil {
			return c, nil
		}
		zlog.Logger.Warn().Err(err).Str("backend", s.CacheBackend).Int("attempt", i+1).
			Msgf("cache backend unavailable, waiting %v before next retry", s.ConnectDelay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.ConnectDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to %s cache: %w", s.CacheBackend, err)
}
