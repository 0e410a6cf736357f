// Package checkoutlog defines the append-only audit trail of checkout
// attempts.
//
// Rows are written outside the checkout transaction, so a rejected attempt
// leaves its STARTED and FAILED rows behind while every business write is
// rolled back. The trace_id column joins a row to its distributed trace.
package checkoutlog

import (
	"context"
	"time"
)

type Status string

const (
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

type Entry struct {
	// AttemptID groups the rows of one PlaceOrder call.
	AttemptID  string
	CustomerID int64
	Status     Status

	// Step is the checkout step that failed. Empty on other statuses.
	Step string

	// ErrorKind is the apperr kind of the failure, INTERNAL for unexpected ones.
	ErrorKind string
	Message   string

	// OrderReference is set on COMPLETED rows.
	OrderReference string

	// Payload is the JSON request, written on STARTED only.
	Payload string

	TraceID   string
	SpanID    string
	CreatedAt time.Time
}

// Repository persists log entries. Save appends; rows are never updated.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	ListByAttempt(ctx context.Context, attemptID string) ([]Entry, error)
	ListByCustomer(ctx context.Context, customerID int64, limit int) ([]Entry, error)
}
