package checkout

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/storefront/core/coupon"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/inventory"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/shipping"
)

// Step is one stage of a checkout. Steps share a State and all run against
// the same transaction.
type Step interface {
	Name() string
	Execute(ctx context.Context, st *State) error
}

// State accumulates what the steps have learned so far.
type State struct {
	Request  Request
	Cart     *entity.Cart
	Address  *entity.Address
	Items    []entity.OrderItem
	Subtotal decimal.Decimal
	Discount *coupon.Discount
	Shipping shipping.Quote
	Total    decimal.Decimal
	Order    *entity.Order

	q ports.Queries
}

func (st *State) discountAmount() decimal.Decimal {
	if st.Discount == nil {
		return decimal.Zero
	}
	return st.Discount.Amount
}

const (
	StepLoadCart          = "load_cart"
	StepValidateAddress   = "validate_address"
	StepReserveStock      = "reserve_stock"
	StepSnapshotLines     = "snapshot_lines"
	StepApplyCoupon       = "apply_coupon"
	StepResolveShipping   = "resolve_shipping"
	StepComputeTotals     = "compute_totals"
	StepPersistOrder      = "persist_order"
	StepRecordCouponUsage = "record_coupon_usage"
	StepClearCart         = "clear_cart"
)

// --- loadCartStep ---

type loadCartStep struct{}

func (loadCartStep) Name() string { return StepLoadCart }

func (loadCartStep) Execute(ctx context.Context, st *State) error {
	// Concurrent checkouts of one cart queue here, and the later one finds
	// it already cleared.
	if err := st.q.LockCart(ctx, st.Request.CustomerID); err != nil {
		return err
	}
	cart, err := st.q.GetOrCreateCart(ctx, st.Request.CustomerID)
	if err != nil {
		return err
	}
	if cart.Empty() {
		return apperr.New(apperr.KindEmptyCart, "cart is empty")
	}

	// Lines are visited in ascending variant id so concurrent checkouts
	// touching the same variants lock them in the same order.
	slices.SortFunc(cart.Items, func(a, b entity.CartItem) int {
		return cmp.Compare(a.VariantID, b.VariantID)
	})
	st.Cart = cart
	return nil
}

// --- validateAddressStep ---

type validateAddressStep struct{}

func (validateAddressStep) Name() string { return StepValidateAddress }

func (validateAddressStep) Execute(ctx context.Context, st *State) error {
	addr, err := st.q.GetAddress(ctx, st.Request.AddressID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.New(apperr.KindInvalidAddress, "address %d not found", st.Request.AddressID)
	}
	if err != nil {
		return err
	}
	if addr.CustomerID != st.Request.CustomerID {
		return apperr.New(apperr.KindInvalidAddress, "address %d does not belong to this customer", st.Request.AddressID)
	}
	st.Address = addr
	return nil
}

// --- reserveStockStep ---

type reserveStockStep struct {
	ledger *inventory.Ledger
}

func (reserveStockStep) Name() string { return StepReserveStock }

func (s reserveStockStep) Execute(ctx context.Context, st *State) error {
	for _, it := range st.Cart.Items {
		if !it.Variant.Purchasable() {
			return apperr.New(apperr.KindItemUnavailable, "%s (%s) is no longer available", it.Variant.ProductName, it.Variant.SKU)
		}
		ok, err := s.ledger.Reserve(ctx, st.q, it.VariantID, it.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.KindInsufficientStock, "insufficient stock for %s", it.Variant.ProductName)
		}
	}
	return nil
}

// --- snapshotLinesStep ---

type snapshotLinesStep struct{}

func (snapshotLinesStep) Name() string { return StepSnapshotLines }

func (snapshotLinesStep) Execute(_ context.Context, st *State) error {
	st.Items = make([]entity.OrderItem, 0, len(st.Cart.Items))
	st.Subtotal = decimal.Zero
	for _, it := range st.Cart.Items {
		item := entity.NewOrderItem(it.Variant, it.Quantity)
		st.Items = append(st.Items, item)
		st.Subtotal = st.Subtotal.Add(item.LineTotal)
	}
	return nil
}

// --- applyCouponStep ---

type applyCouponStep struct {
	coupons *coupon.Evaluator
}

func (applyCouponStep) Name() string { return StepApplyCoupon }

func (s applyCouponStep) Execute(ctx context.Context, st *State) error {
	if entity.NormalizeCouponCode(st.Request.CouponCode) == "" {
		return nil
	}
	d, err := s.coupons.Claim(ctx, st.q, st.Request.CouponCode, st.Request.CustomerID, st.Subtotal)
	if err != nil {
		return err
	}
	st.Discount = &d
	return nil
}

// --- resolveShippingStep ---

type resolveShippingStep struct {
	resolver *shipping.Resolver
}

func (resolveShippingStep) Name() string { return StepResolveShipping }

func (s resolveShippingStep) Execute(ctx context.Context, st *State) error {
	quote, err := s.resolver.ResolveByCity(ctx, st.q, st.Address.City)
	if err != nil {
		return err
	}
	st.Shipping = quote
	return nil
}

// --- computeTotalsStep ---

type computeTotalsStep struct{}

func (computeTotalsStep) Name() string { return StepComputeTotals }

func (computeTotalsStep) Execute(_ context.Context, st *State) error {
	total := st.Subtotal.Sub(st.discountAmount()).Add(st.Shipping.Fee)
	if total.IsNegative() {
		total = decimal.Zero
	}
	st.Total = total
	return nil
}

// --- persistOrderStep ---

type persistOrderStep struct {
	now func() time.Time
}

func (persistOrderStep) Name() string { return StepPersistOrder }

func (s persistOrderStep) Execute(ctx context.Context, st *State) error {
	now := s.now().UTC()
	order := &entity.Order{
		Reference:     NewReference(now),
		CustomerID:    st.Request.CustomerID,
		AddressID:     st.Address.ID,
		Status:        entity.StatusNew,
		Subtotal:      st.Subtotal,
		DiscountTotal: st.discountAmount(),
		ShippingFee:   st.Shipping.Fee,
		Total:         st.Total,
		ShippingLabel: st.Shipping.Label,
		StockDeducted: true,
		Items:         st.Items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if st.Discount != nil {
		order.CouponCode = st.Discount.Coupon.Code
	}

	if err := st.q.CreateOrder(ctx, order); err != nil {
		return err
	}
	st.Order = order
	return nil
}

// NewReference builds the public order number: a UTC timestamp followed by
// a random suffix.
func NewReference(now time.Time) string {
	return "ORD-" + now.UTC().Format("20060102150405") + "-" + uuid.NewString()[:8]
}

// --- recordCouponUsageStep ---

type recordCouponUsageStep struct {
	now func() time.Time
}

func (recordCouponUsageStep) Name() string { return StepRecordCouponUsage }

func (s recordCouponUsageStep) Execute(ctx context.Context, st *State) error {
	if st.Discount == nil {
		return nil
	}
	return st.q.RecordCouponUsage(ctx, &entity.CouponUsage{
		CouponID:   st.Discount.Coupon.ID,
		CustomerID: st.Request.CustomerID,
		OrderID:    st.Order.ID,
		UsedAt:     s.now().UTC(),
	})
}

// --- clearCartStep ---

type clearCartStep struct{}

func (clearCartStep) Name() string { return StepClearCart }

func (clearCartStep) Execute(ctx context.Context, st *State) error {
	return st.q.ClearCart(ctx, st.Cart.ID)
}
