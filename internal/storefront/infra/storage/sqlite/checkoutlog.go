package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/storefront/internal/storefront/core/checkoutlog"
)

// CheckoutLogRepository is the SQLite implementation of checkoutlog.Repository.
type CheckoutLogRepository struct {
	db *sql.DB
}

var _ checkoutlog.Repository = (*CheckoutLogRepository)(nil)

// Save inserts a new entry. It is safe to call concurrently.
func (r *CheckoutLogRepository) Save(ctx context.Context, entry *checkoutlog.Entry) error {
	const q = `
		INSERT INTO checkout_logs
			(attempt_id, customer_id, status, step, error_kind, message, order_reference, payload, trace_id, span_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.AttemptID,
		entry.CustomerID,
		string(entry.Status),
		entry.Step,
		entry.ErrorKind,
		entry.Message,
		entry.OrderReference,
		nullableString(entry.Payload),
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save checkout log for %q: %w", entry.AttemptID, err)
	}
	return nil
}

func (r *CheckoutLogRepository) ListByAttempt(ctx context.Context, attemptID string) ([]checkoutlog.Entry, error) {
	return r.list(ctx, `WHERE attempt_id = ? ORDER BY id`, attemptID)
}

// ListByCustomer returns the newest entries first.
func (r *CheckoutLogRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]checkoutlog.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.list(ctx, `WHERE customer_id = ? ORDER BY id DESC LIMIT ?`, customerID, limit)
}

func (r *CheckoutLogRepository) list(ctx context.Context, where string, args ...any) ([]checkoutlog.Entry, error) {
	q := `
		SELECT attempt_id, customer_id, status, step, error_kind, message, order_reference,
		       COALESCE(payload, ''), trace_id, span_id, created_at
		FROM   checkout_logs ` + where

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list checkout logs: %w", err)
	}
	defer rows.Close()

	var out []checkoutlog.Entry
	for rows.Next() {
		var e checkoutlog.Entry
		var createdAt string
		if err := rows.Scan(&e.AttemptID, &e.CustomerID, &e.Status, &e.Step, &e.ErrorKind, &e.Message,
			&e.OrderReference, &e.Payload, &e.TraceID, &e.SpanID, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan checkout log: %w", err)
		}
		if e.CreatedAt, err = parseRFC3339(createdAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
