// Package postgres provides the PostgreSQL-backed ports.Store.
//
// Money columns are NUMERIC and are read back with a ::text cast into
// decimal.Decimal. Coupon checks take a row lock with SELECT ... FOR UPDATE.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type queries struct {
	db dbtx
}

type Store struct {
	*queries
	pool *pgxpool.Pool
}

var _ ports.Store = (*Store)(nil)

// Open connects and pings. maxConns <= 0 keeps the pgxpool default.
func Open(ctx context.Context, dsn string, maxConns int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{queries: &queries{db: pool}, pool: pool}, nil
}

// Migrate creates the tables and indexes that do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) InTx(ctx context.Context, fn func(q ports.Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func (s *Store) CheckoutLog() *CheckoutLogRepository {
	return &CheckoutLogRepository{db: s.pool}
}

// isConstraintViolation reports SQLSTATE class 23 (unique, foreign key,
// check and not-null violations).
func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}

func wrap(err error, conflict, op string) error {
	if isConstraintViolation(err) {
		return apperr.Wrap(apperr.KindConflict, err, "%s", conflict)
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

func notFound(err error, what string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("%s %v not found", what, id)
	}
	return fmt.Errorf("postgres: get %s %v: %w", what, id, err)
}

func expectOneRow(tag pgconn.CommandTag, what string, id any) error {
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("%s %v not found", what, id)
	}
	return nil
}
