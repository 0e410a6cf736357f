package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/storefront/core/coupon"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

type CouponPreview struct {
	Code     string
	Type     entity.CouponType
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

type CouponView struct {
	entity.Coupon
	Used int
}

type CouponService struct {
	store     ports.Store
	evaluator *coupon.Evaluator
}

func NewCouponService(store ports.Store, evaluator *coupon.Evaluator) *CouponService {
	if evaluator == nil {
		evaluator = coupon.NewEvaluator()
	}
	return &CouponService{store: store, evaluator: evaluator}
}

// Preview evaluates code without recording anything. A nil subtotal means
// the subtotal of the customer's cart.
func (s *CouponService) Preview(ctx context.Context, customerID int64, code string, subtotal *decimal.Decimal) (*CouponPreview, error) {
	var base decimal.Decimal
	if subtotal != nil {
		if subtotal.IsNegative() {
			return nil, apperr.Validation("subtotal must not be negative")
		}
		base = *subtotal
	} else {
		cart, err := s.store.GetOrCreateCart(ctx, customerID)
		if err != nil {
			return nil, err
		}
		base = cart.Subtotal()
	}

	d, err := s.evaluator.Evaluate(ctx, s.store, code, customerID, base)
	if err != nil {
		return nil, err
	}
	return &CouponPreview{
		Code:     d.Coupon.Code,
		Type:     d.Coupon.Type,
		Subtotal: base,
		Discount: d.Amount,
		Total:    base.Sub(d.Amount),
	}, nil
}

func (s *CouponService) Create(ctx context.Context, c *entity.Coupon) (*entity.Coupon, error) {
	c.ID = 0
	if c.Lifecycle == "" {
		c.Lifecycle = entity.LifecycleActive
	}
	if err := validateCoupon(c); err != nil {
		return nil, err
	}
	if err := s.store.CreateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) Update(ctx context.Context, id int64, c *entity.Coupon) (*entity.Coupon, error) {
	c.ID = id
	if err := validateCoupon(c); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return s.store.GetCoupon(ctx, id)
}

func (s *CouponService) Get(ctx context.Context, id int64) (*CouponView, error) {
	c, err := s.store.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}
	used, err := s.store.CountCouponUsage(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CouponView{Coupon: *c, Used: used}, nil
}

func (s *CouponService) List(ctx context.Context) ([]entity.Coupon, error) {
	return s.store.ListCoupons(ctx)
}

// Delete is soft. Usage rows keep pointing at the coupon.
func (s *CouponService) Delete(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(q ports.Queries) error {
		c, err := q.GetCoupon(ctx, id)
		if err != nil {
			return err
		}
		c.Lifecycle = entity.LifecycleDeleted
		return q.UpdateCoupon(ctx, c)
	})
}

func validateCoupon(c *entity.Coupon) error {
	c.Code = entity.NormalizeCouponCode(c.Code)
	if c.Code == "" {
		return apperr.Validation("code is required")
	}
	if !c.Type.Valid() {
		return apperr.Validation("type must be PERCENT or FIXED")
	}
	if !c.Value.IsPositive() {
		return apperr.Validation("value must be positive")
	}
	if c.Type == entity.CouponPercent && c.Value.GreaterThan(decimal.NewFromInt(100)) {
		return apperr.Validation("percent value must be at most 100")
	}
	if c.MinOrderTotal.Valid && c.MinOrderTotal.Decimal.IsNegative() {
		return apperr.Validation("minimum order total must not be negative")
	}
	if c.StartAt != nil && c.EndAt != nil && c.EndAt.Before(*c.StartAt) {
		return apperr.Validation("end must not be before start")
	}
	if c.UsageLimit != nil && *c.UsageLimit < 1 {
		return apperr.Validation("usage limit must be at least 1")
	}
	if c.PerUserLimit != nil && *c.PerUserLimit < 1 {
		return apperr.Validation("per-user limit must be at least 1")
	}
	if !c.Lifecycle.Valid() {
		return apperr.Validation("unknown lifecycle %q", c.Lifecycle)
	}
	return nil
}
