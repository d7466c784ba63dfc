package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/stratumdb/stratum/driver"
)

type pgConn struct {
	db *sql.DB
}

type pgTx struct {
	tx *sql.Tx
}

// NewConn wraps an existing *sql.DB as a driver.Conn. The handle must
// point at a PostgreSQL database; statement placeholders are $1-style.
func NewConn(db *sql.DB) driver.Conn {
	return &pgConn{db: db}
}

// Open connects to a PostgreSQL database via the pgx stdlib driver and
// returns it as a driver.Conn. The caller owns no separate handle; use
// NewConn to share a pool with the rest of the application.
func Open(dsn string) (driver.Conn, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return &pgConn{db: db}, nil
}

func (c *pgConn) Begin(ctx context.Context) (driver.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

func (c *pgConn) AppliedNames(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT name FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations ledger: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to read migrations ledger: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read migrations ledger: %w", err)
	}

	return names, nil
}

func (t *pgTx) Exec(ctx context.Context, statement string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, statement, args...)
	return err
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}
