package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stwalsh4118/hotelmatch/internal/config"
)

// Warehouse wraps the pgx connection pool to the match warehouse.
type Warehouse struct {
	Pool *pgxpool.Pool
}

// DSN builds a postgres connection URL from cfg. Credentials are escaped.
func DSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}

// NewPostgresPool creates a pgx pool to the warehouse, pings it and returns
// a Warehouse.
func NewPostgresPool(ctx context.Context, cfg config.DatabaseConfig) (*Warehouse, error) {
	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MinConns = int32(cfg.PoolMin)
	poolConfig.MaxConns = int32(cfg.PoolMax)

	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Second
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// The review tool only reads.
	poolConfig.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "hotelmatch"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Warehouse{Pool: pool}, nil
}

// Ping checks if the warehouse connection is alive.
func (w *Warehouse) Ping(ctx context.Context) error {
	return w.Pool.Ping(ctx)
}

// Close waits for borrowed connections and closes the pool.
func (w *Warehouse) Close() {
	if w.Pool != nil {
		w.Pool.Close()
	}
}

// Stats returns statistics about the connection pool.
func (w *Warehouse) Stats() *pgxpool.Stat {
	if w.Pool == nil {
		return nil
	}
	return w.Pool.Stat()
}
