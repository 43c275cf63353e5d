// Package db supplies the single PostGIS connection pool the rest of the
// service reads from. All queries run through WithSession, which hands a
// scoped session to the caller and guarantees its release on every exit
// path, including when the caller's function returns an error.
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/internetofwater/nldi-go/internal/core/observability"
	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

// SearchPaths are the schemas every session is configured to see: nhdplus
// (reference hydrography, read-only, upstream-curated) and nldi_data
// (crawler-managed tables, administratively writable only through the
// source registry's align operation).
const SearchPaths = "nhdplus, nldi_data, public"

type Gateway struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// Open creates the pool. It does not block on the first connection
// succeeding; use Ping to verify connectivity at startup.
func Open(ctx context.Context, dsn string, poolSize int, acquireTimeout time.Duration) (*Gateway, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nldierrors.Wrap(nldierrors.ConfigurationError, "parse database dsn", err)
	}
	if poolSize > 0 {
		cfg.MaxConns = int32(poolSize)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = SearchPaths

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nldierrors.Wrap(nldierrors.DatabaseUnavailable, "create connection pool", err)
	}
	return &Gateway{pool: pool, acquireTimeout: acquireTimeout}, nil
}

// Ping verifies the pool can produce a working connection right now; used
// by the /readyz readiness probe and once at startup.
func (g *Gateway) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.acquireTimeout)
	defer cancel()
	if err := g.pool.Ping(ctx); err != nil {
		return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "ping", err)
	}
	return nil
}

// Close releases the pool. Call once at shutdown.
func (g *Gateway) Close() {
	g.pool.Close()
}

// Session is the narrow surface lookup plugins query against: parameterised
// reads only, never raw SQL string concatenation of identifiers.
type Session interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// WithSession acquires a pooled connection bounded by the gateway's
// configured acquire timeout, hands it to fn, and releases it on every exit
// path. A pool that cannot produce a connection within the timeout fails
// with DatabaseUnavailable.
func WithSession(ctx context.Context, g *Gateway, fn func(ctx context.Context, s Session) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, g.acquireTimeout)
	defer cancel()

	conn, err := g.pool.Acquire(acquireCtx)
	observability.ObservePoolAcquire(err)
	if err != nil {
		return nldierrors.Wrap(nldierrors.DatabaseUnavailable, "acquire pooled connection", err)
	}
	defer conn.Release()

	observability.SetPoolInUse(g.pool.Stat().AcquiredConns())

	return fn(ctx, conn.Conn())
}

// Stats is a small snapshot used by readiness/metrics reporting.
type Stats struct {
	AcquiredConns int32
	IdleConns     int32
	MaxConns      int32
}

func (g *Gateway) Stats() Stats {
	s := g.pool.Stat()
	return Stats{
		AcquiredConns: s.AcquiredConns(),
		IdleConns:     s.IdleConns(),
		MaxConns:      s.MaxConns(),
	}
}
