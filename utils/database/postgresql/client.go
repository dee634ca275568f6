package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"github.com/lib/pq"
)

// Client owns the Postgres connection pool shared by every repository.
type Client struct {
	drv *entsql.Driver
}

func Open(ctx context.Context, dsn string) (*Client, error) {
	drv, err := entsql.Open(dialect.Postgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := drv.DB().PingContext(ctx); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Client{drv: drv}, nil
}

// Migrate creates or updates every table the site uses.
func (c *Client) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(c.drv, schema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("prepare migration: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("run migration: %w", err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.drv.DB().PingContext(ctx)
}

func (c *Client) Close() error {
	return c.drv.Close()
}

func (c *Client) DB() *sql.DB {
	return c.drv.DB()
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.Postgres)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *Client) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.drv.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
