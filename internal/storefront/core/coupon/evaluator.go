// Package coupon decides whether a coupon applies to a subtotal and how much
// it takes off.
package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

var hundred = decimal.NewFromInt(100)

// Discount is the outcome of a successful evaluation.
type Discount struct {
	Coupon entity.Coupon
	Amount decimal.Decimal
}

type Evaluator struct {
	now func() time.Time
}

type Option func(*Evaluator)

// WithClock overrides the time source used for the validity window.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate checks code against subtotal for customerID without writing
// anything. It backs the coupon preview.
func (e *Evaluator) Evaluate(ctx context.Context, q ports.CouponRepository, code string, customerID int64, subtotal decimal.Decimal) (Discount, error) {
	return e.evaluate(ctx, q, code, customerID, subtotal, false)
}

// Claim is Evaluate for checkout. It locks the coupon first so the cap
// counts it reads stay valid until the caller records usage in the same
// transaction.
func (e *Evaluator) Claim(ctx context.Context, q ports.CouponRepository, code string, customerID int64, subtotal decimal.Decimal) (Discount, error) {
	return e.evaluate(ctx, q, code, customerID, subtotal, true)
}

func (e *Evaluator) evaluate(ctx context.Context, q ports.CouponRepository, code string, customerID int64, subtotal decimal.Decimal, lock bool) (Discount, error) {
	code = entity.NormalizeCouponCode(code)
	if code == "" {
		return Discount{}, apperr.New(apperr.KindInvalidCoupon, "coupon code is required")
	}

	c, err := q.FindCouponByCode(ctx, code)
	if errors.Is(err, apperr.ErrNotFound) {
		return Discount{}, apperr.New(apperr.KindInvalidCoupon, "coupon %s is not valid", code)
	}
	if err != nil {
		return Discount{}, err
	}

	if lock {
		if err := q.LockCoupon(ctx, c.ID); err != nil {
			return Discount{}, err
		}
		// Re-read under the lock so an edit committed while waiting counts.
		if c, err = q.GetCoupon(ctx, c.ID); err != nil {
			return Discount{}, err
		}
	}

	if !c.ValidAt(e.now()) {
		return Discount{}, apperr.New(apperr.KindInvalidCoupon, "coupon %s is not valid", code)
	}

	if c.MinOrderTotal.Valid && subtotal.LessThan(c.MinOrderTotal.Decimal) {
		return Discount{}, apperr.New(apperr.KindBelowMinimum,
			"coupon %s requires a minimum order of %s", code, c.MinOrderTotal.Decimal.StringFixed(2))
	}

	if c.UsageLimit != nil {
		used, err := q.CountCouponUsage(ctx, c.ID)
		if err != nil {
			return Discount{}, err
		}
		if used >= *c.UsageLimit {
			return Discount{}, apperr.New(apperr.KindUsageLimitReached, "coupon %s has reached its usage limit", code)
		}
	}

	if c.PerUserLimit != nil {
		used, err := q.CountCouponUsageByCustomer(ctx, c.ID, customerID)
		if err != nil {
			return Discount{}, err
		}
		if used >= *c.PerUserLimit {
			return Discount{}, apperr.New(apperr.KindAlreadyUsedByCustomer, "coupon %s was already used", code)
		}
	}

	return Discount{Coupon: *c, Amount: Amount(c, subtotal)}, nil
}

// Amount computes the discount c grants on subtotal. PERCENT rounds half up
// to cents. The result never exceeds subtotal.
func Amount(c *entity.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.Type {
	case entity.CouponPercent:
		amount = subtotal.Mul(c.Value).Div(hundred).Round(2)
	case entity.CouponFixed:
		amount = c.Value
	default:
		return decimal.Zero
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
