// Package checkout places orders.
//
// PlaceOrder runs a fixed list of steps inside one store transaction. A step
// that fails aborts the transaction, so stock decrements, the order row and
// the coupon usage row are all undone together. Nothing is compensated by
// hand.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/storefront/internal/storefront/core/checkoutlog"
	"github.com/jcmexdev/storefront/internal/storefront/core/coupon"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/inventory"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/shipping"
)

const tracerName = "github.com/jcmexdev/storefront/internal/storefront/core/checkout"

type Request struct {
	CustomerID int64  `json:"customer_id"`
	AddressID  int64  `json:"address_id"`
	CouponCode string `json:"coupon_code,omitempty"`
}

// StepError records which step rejected a checkout. It prints and unwraps
// as the underlying error.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

// FailedStep returns the name of the step that produced err, if any.
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}

type Orchestrator struct {
	store    ports.Store
	ledger   *inventory.Ledger
	coupons  *coupon.Evaluator
	shipping *shipping.Resolver
	logs     checkoutlog.Repository
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Orchestrator)

// WithCheckoutLog persists every attempt. Without it attempts are only logged.
func WithCheckoutLog(repo checkoutlog.Repository) Option {
	return func(o *Orchestrator) { o.logs = repo }
}

func WithCouponEvaluator(e *coupon.Evaluator) Option {
	return func(o *Orchestrator) { o.coupons = e }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(store ports.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		ledger:   inventory.NewLedger(),
		coupons:  coupon.NewEvaluator(),
		shipping: shipping.NewResolver(),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PlaceOrder turns the customer's cart into an order.
func (o *Orchestrator) PlaceOrder(ctx context.Context, req Request) (*entity.Order, error) {
	ctx, span := o.tracer.Start(ctx, "checkout.PlaceOrder", trace.WithAttributes(
		attribute.Int64("customer.id", req.CustomerID),
		attribute.Int64("address.id", req.AddressID),
	))
	defer span.End()

	attemptID := uuid.NewString()
	started := checkoutlog.NewEntry(ctx, attemptID, req.CustomerID, checkoutlog.StatusStarted)
	if payload, err := json.Marshal(req); err == nil {
		started.Payload = string(payload)
	}
	o.record(ctx, started)

	var order *entity.Order
	err := o.store.InTx(ctx, func(q ports.Queries) error {
		st := &State{Request: req, q: q}
		if err := o.run(ctx, st); err != nil {
			return err
		}
		order = st.Order
		return nil
	})
	if err != nil {
		failed := checkoutlog.NewEntry(ctx, attemptID, req.CustomerID, checkoutlog.StatusFailed)
		failed.Step = FailedStep(err)
		failed.ErrorKind = string(apperr.KindOf(err))
		failed.Message = apperr.MessageOf(err)
		o.record(ctx, failed)

		if apperr.IsBusiness(err) {
			slog.InfoContext(ctx, "checkout rejected",
				"attempt_id", attemptID, "customer_id", req.CustomerID,
				"step", failed.Step, "kind", failed.ErrorKind, "reason", failed.Message)
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "checkout failed")
			slog.ErrorContext(ctx, "checkout failed",
				"attempt_id", attemptID, "customer_id", req.CustomerID, "step", failed.Step, "error", err)
		}
		return nil, err
	}

	completed := checkoutlog.NewEntry(ctx, attemptID, req.CustomerID, checkoutlog.StatusCompleted)
	completed.OrderReference = order.Reference
	o.record(ctx, completed)

	span.SetAttributes(attribute.String("order.reference", order.Reference))
	slog.InfoContext(ctx, "order placed",
		"attempt_id", attemptID, "order_id", order.ID, "reference", order.Reference,
		"total", order.Total.StringFixed(2))
	return order, nil
}

// run executes the steps in order and stops at the first failure.
func (o *Orchestrator) run(ctx context.Context, st *State) error {
	for _, step := range o.steps() {
		stepCtx, span := o.tracer.Start(ctx, "checkout."+step.Name())
		err := step.Execute(stepCtx, st)
		if err != nil {
			span.RecordError(err)
			span.End()
			return &StepError{Step: step.Name(), Err: err}
		}
		span.End()
	}
	return nil
}

func (o *Orchestrator) steps() []Step {
	return []Step{
		loadCartStep{},
		validateAddressStep{},
		reserveStockStep{ledger: o.ledger},
		snapshotLinesStep{},
		applyCouponStep{coupons: o.coupons},
		resolveShippingStep{resolver: o.shipping},
		computeTotalsStep{},
		persistOrderStep{now: o.now},
		recordCouponUsageStep{now: o.now},
		clearCartStep{},
	}
}

// record is nil-safe and never fails the checkout.
func (o *Orchestrator) record(ctx context.Context, entry *checkoutlog.Entry) {
	if o.logs == nil {
		return
	}
	if err := o.logs.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "checkout log write failed", "attempt_id", entry.AttemptID, "status", entry.Status, "error", err)
	}
}
