package dedup

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Pg is a Store backed by Postgres. Use it when the deployment already
// carries a relational database and marker durability matters more than
// lookup latency.
type Pg struct {
	pool  *pgxpool.Pool
	table string
}

// NewPg creates a Postgres-backed store. An empty table name defaults to
// "courier_dedup".
func NewPg(pool *pgxpool.Pool, table string) *Pg {
	if table == "" {
		table = "courier_dedup"
	}
	return &Pg{pool: pool, table: table}
}

// Setup creates the marker table if it does not exist.
func (p *Pg) Setup(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key text PRIMARY KEY,
		processed_at timestamptz NOT NULL DEFAULT now()
	)`, p.table)
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return errors.Wrap(err, "dedup: create table")
	}
	return nil
}

// Seen reports whether the key was marked.
func (p *Pg) Seen(ctx context.Context, key string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1)", p.table)
	var exists bool
	if err := p.pool.QueryRow(ctx, query, key).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "dedup: select marker")
	}
	return exists, nil
}

// MarkProcessed records the key. A concurrent duplicate insert is not an
// error.
func (p *Pg) MarkProcessed(ctx context.Context, key string) error {
	query := fmt.Sprintf("INSERT INTO %s (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", p.table)
	if _, err := p.pool.Exec(ctx, query, key); err != nil {
		return errors.Wrap(err, "dedup: insert marker")
	}
	return nil
}
