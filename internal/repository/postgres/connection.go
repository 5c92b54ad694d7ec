package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grabtik/grabtik-bot/database"
)

// Connection wraps a pgx pool with migration bootstrap.
type Connection struct {
	*pgxpool.Pool
}

// NewConnection opens a connection pool and applies pending migrations.
func NewConnection(ctx context.Context, dsn string) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	if err := database.Migrate(ctx, dsn); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Connection{
		Pool: pool,
	}, nil
}

func (c *Connection) Close() error {
	if c.Pool != nil {
		c.Pool.Close()
	}
	return nil
}

func (c *Connection) Ping(ctx context.Context) error {
	if c.Pool == nil {
		return fmt.Errorf("connection pool is nil")
	}
	return c.Pool.Ping(ctx)
}
