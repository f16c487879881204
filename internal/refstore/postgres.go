package refstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/resto-ops/facture-cli/internal/model"
)

// pgPool is the minimal pool interface used by PostgresSource.
type pgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresSource reads reference locations from a Postgres table with
// columns identifier, name, street_address, postal_code, city.
type PostgresSource struct {
	pool  pgPool
	table string
}

// NewPostgres connects to Postgres and returns a source over the given
// table (default "locations"). The source owns the pool.
func NewPostgres(ctx context.Context, url, table string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "refstore: postgres connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "refstore: postgres ping")
	}
	return NewPostgresFromPool(pool, table), nil
}

// NewPostgresFromPool builds a source over an existing pool.
func NewPostgresFromPool(pool pgPool, table string) *PostgresSource {
	if table == "" {
		table = "locations"
	}
	return &PostgresSource{pool: pool, table: table}
}

// Close releases the connection pool.
func (p *PostgresSource) Close() { p.pool.Close() }

// Load implements Source.
func (p *PostgresSource) Load(ctx context.Context) ([]model.ReferenceLocation, []LoadWarning, error) {
	query := fmt.Sprintf(
		`SELECT identifier, name, street_address, postal_code, city FROM %q ORDER BY identifier`, p.table)
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "refstore: postgres query %s", p.table)
	}
	defer rows.Close()

	return scanLocations(rows)
}
