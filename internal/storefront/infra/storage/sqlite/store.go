// Package sqlite provides the SQLite-backed ports.Store used for local runs
// and tests.
//
// The pool is capped at one connection, so a transaction owns the database
// until it commits. That serialises checkouts, which is what makes the
// coupon lock a no-op here.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// queries implements ports.Queries on top of either the pool or a tx.
type queries struct {
	db dbtx
}

type Store struct {
	*queries
	db *sql.DB
}

var _ ports.Store = (*Store)(nil)

// Open opens (or creates) the SQLite database at path and applies the schema.
//
//	store, err := sqlite.Open("./data/storefront.db")
func Open(path string) (*Store, error) {
	// busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{queries: &queries{db: db}, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InTx runs fn inside one transaction. fn must only use the Queries it is
// given; touching s from inside fn would wait forever for the connection.
func (s *Store) InTx(ctx context.Context, fn func(q ports.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tx: %w", err)
	}
	return nil
}

// CheckoutLog returns the checkout audit repository sharing this database.
func (s *Store) CheckoutLog() *CheckoutLogRepository {
	return &CheckoutLogRepository{db: s.db}
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	// The low byte is the primary result code for both plain and extended codes.
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// wrap turns constraint violations into apperr conflicts with a
// user-facing message and everything else into an annotated driver error.
func wrap(err error, conflict, op string) error {
	if isConstraintViolation(err) {
		return apperr.Wrap(apperr.KindConflict, err, "%s", conflict)
	}
	return fmt.Errorf("sqlite: %s: %w", op, err)
}

// notFound maps sql.ErrNoRows to apperr.ErrNotFound.
func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("%s %v not found", what, id)
	}
	return fmt.Errorf("sqlite: get %s %v: %w", what, id, err)
}

func expectOneRow(res sql.Result, what string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("%s %v not found", what, id)
	}
	return nil
}
