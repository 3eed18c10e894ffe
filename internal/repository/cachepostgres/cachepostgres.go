package cachepostgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wb-go/wbf/dbpg"
)

// PostgresCache stores rendered output in the render_cache table.
type PostgresCache struct {
	DB  *dbpg.DB
	TTL time.Duration
	now func() time.Time
}

func NewPostgresCache(db *dbpg.DB, ttl time.Duration) *PostgresCache {
	return &PostgresCache{DB: db, TTL: ttl, now: time.Now}
}

func (p *PostgresCache) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value
	FROM render_cache
	WHERE cache_key = $1
	AND (expires_at IS NULL OR expires_at > now())`

	var value string
	if err := p.DB.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *PostgresCache) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO render_cache (cache_key, value, created_at, expires_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (cache_key) DO UPDATE SET value = EXCLUDED.value, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`

	created := p.clock()
	var expires sql.NullTime
	if p.TTL > 0 {
		expires = sql.NullTime{Time: created.Add(p.TTL), Valid: true}
	}

	_, err := p.DB.Master.ExecContext(ctx, query, key, value, created, expires)
	return err
}

// DeleteExpired removes rows whose ttl has passed and returns how many were dropped.
func (p *PostgresCache) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM render_cache
	WHERE expires_at IS NOT NULL
	AND expires_at <= now()`

	res, err := p.DB.Master.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (p *PostgresCache) Close() error {
	return p.DB.Master.Close()
}

func (p *PostgresCache) clock() time.Time {
	if p.now == nil {
		return time.Now().UTC()
	}
	return p.now().UTC()
}
