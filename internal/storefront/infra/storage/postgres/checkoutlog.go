package postgres

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront/internal/storefront/core/checkoutlog"
)

// CheckoutLogRepository writes through the pool, never through the checkout
// transaction, so FAILED rows survive a rollback.
type CheckoutLogRepository struct {
	db dbtx
}

var _ checkoutlog.Repository = (*CheckoutLogRepository)(nil)

func (r *CheckoutLogRepository) Save(ctx context.Context, entry *checkoutlog.Entry) error {
	const q = `
		INSERT INTO checkout_logs
			(attempt_id, customer_id, status, step, error_kind, message, order_reference, payload, trace_id, span_id, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var payload *string
	if entry.Payload != "" {
		payload = &entry.Payload
	}
	_, err := r.db.Exec(ctx, q,
		entry.AttemptID,
		entry.CustomerID,
		string(entry.Status),
		entry.Step,
		entry.ErrorKind,
		entry.Message,
		entry.OrderReference,
		payload,
		entry.TraceID,
		entry.SpanID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save checkout log for %q: %w", entry.AttemptID, err)
	}
	return nil
}

func (r *CheckoutLogRepository) ListByAttempt(ctx context.Context, attemptID string) ([]checkoutlog.Entry, error) {
	return r.list(ctx, `WHERE attempt_id = $1 ORDER BY id`, attemptID)
}

func (r *CheckoutLogRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]checkoutlog.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.list(ctx, `WHERE customer_id = $1 ORDER BY id DESC LIMIT $2`, customerID, limit)
}

func (r *CheckoutLogRepository) list(ctx context.Context, where string, args ...any) ([]checkoutlog.Entry, error) {
	q := `
		SELECT attempt_id, customer_id, status, step, error_kind, message, order_reference,
		       COALESCE(payload::text, ''), trace_id, span_id, created_at
		FROM   checkout_logs ` + where

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list checkout logs: %w", err)
	}
	defer rows.Close()

	var out []checkoutlog.Entry
	for rows.Next() {
		var e checkoutlog.Entry
		var status string
		if err := rows.Scan(&e.AttemptID, &e.CustomerID, &status, &e.Step, &e.ErrorKind, &e.Message,
			&e.OrderReference, &e.Payload, &e.TraceID, &e.SpanID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan checkout log: %w", err)
		}
		e.Status = checkoutlog.Status(status)
		out = append(out, e)
	}
	return out, rows.Err()
}
