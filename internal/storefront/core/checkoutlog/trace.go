package checkoutlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo returns the active span's ids as hex strings, or empty
// strings when ctx carries no valid span (as in unit tests).
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an Entry stamped with the trace of ctx and the current time.
//
//	entry := checkoutlog.NewEntry(ctx, attemptID, customerID, checkoutlog.StatusStarted)
//	entry.Payload = string(body)
//	_ = repo.Save(ctx, entry)
func NewEntry(ctx context.Context, attemptID string, customerID int64, status Status) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		AttemptID:  attemptID,
		CustomerID: customerID,
		Status:     status,
		TraceID:    ti.TraceID,
		SpanID:     ti.SpanID,
		CreatedAt:  time.Now().UTC(),
	}
}
