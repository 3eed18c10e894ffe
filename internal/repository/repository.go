// Package repository provides methods to work with DB
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/UnendingLoop/ResizedImage/internal/repository/cachepostgres"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

func NewPostgresCache(dbconn *dbpg.DB, ttl time.Duration) *cachepostgres.PostgresCache {
	return cachepostgres.NewPostgresCache(dbconn, ttl)
}

func ConnectWithRetries(ctx context.Context, dsn string, retryCount int, idleTime time.Duration) (*dbpg.DB, error) {
	dbOptions := dbpg.Options{
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: 10 * time.Minute,
	}
	var dbConn *dbpg.DB
	var err error

	for i := 0; i < max(retryCount, 1); i++ {
		dbConn, err = dbpg.New(dsn, nil, &dbOptions)
		if err == nil {
			if err = dbConn.Master.PingContext(ctx); err == nil {
				return dbConn, nil
			}
			_ = dbConn.Master.Close()
		}
		zlog.Logger.Warn().Err(err).Int("attempt", i+1).Msgf("failed to connect to PGDB, waiting %v before next retry", idleTime)
		if err := sleep(ctx, idleTime); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to connect to DB after %d attempts: %w", retryCount, err)
}

func MigrateWithRetries(ctx context.Context, db *sql.DB, migrationsPath string, retries int, idle time.Duration) error {
	var err error
	for i := 0; i < max(retries, 1); i++ {
		zlog.Logger.Info().Int("attempt", i+1).Msg("running migrations")
		if err = runMigrate(db, migrationsPath); err == nil {
			return nil
		}
		zlog.Logger.Warn().Err(err).Msgf("migration try #%d was unsuccessful, waiting %v before next try", i+1, idle)
		if err := sleep(ctx, idle); err != nil {
			return err
		}
	}
	return fmt.Errorf("out of migration retries: %w", err)
}

func runMigrate(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return err
	}

	sourceURL := "file://" + absPath
	zlog.Logger.Info().Str("source", sourceURL).Msg("running migrations")

	m, err := migrate.NewWithDatabaseInstance(
		sourceURL,
		"postgres",
		driver,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	zlog.Logger.Info().Msg("database migrations applied successfully")
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
