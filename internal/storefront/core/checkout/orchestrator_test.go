package checkout_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/storefront/internal/storefront/core/checkoutlog"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/storage/sqlite"
)

type fixture struct {
	t     *testing.T
	store *sqlite.Store
	orch  *checkout.Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "checkout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &fixture{
		t:     t,
		store: store,
		orch:  checkout.NewOrchestrator(store, checkout.WithCheckoutLog(store.CheckoutLog())),
	}
}

func (f *fixture) customer(email string) *entity.User {
	u := &entity.User{Email: email, PasswordHash: "x", Role: entity.RoleCustomer, Enabled: true}
	require.NoError(f.t, f.store.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) address(customerID int64, city string) *entity.Address {
	a := &entity.Address{CustomerID: customerID, Line1: "Av. Siempre Viva 742", City: city}
	require.NoError(f.t, f.store.CreateAddress(context.Background(), a))
	return a
}

func (f *fixture) variant(name, sku, price string, stock int) *entity.Variant {
	ctx := context.Background()
	p := &entity.Product{Name: name}
	require.NoError(f.t, f.store.CreateProduct(ctx, p))
	v := &entity.Variant{ProductID: p.ID, SKU: sku, Size: "M", Color: "blue", Price: decimal.RequireFromString(price), StockQuantity: stock}
	require.NoError(f.t, f.store.CreateVariant(ctx, v))
	return v
}

func (f *fixture) addToCart(customerID, variantID int64, qty int) {
	ctx := context.Background()
	cart, err := f.store.GetOrCreateCart(ctx, customerID)
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.AddCartItem(ctx, cart.ID, variantID, qty))
}

func (f *fixture) zone(city, fee string) {
	require.NoError(f.t, f.store.CreateZone(context.Background(), &entity.ShippingZone{City: city, Fee: decimal.RequireFromString(fee), Label: "Standard"}))
}

func (f *fixture) coupon(c *entity.Coupon) *entity.Coupon {
	if c.Lifecycle == "" {
		c.Lifecycle = entity.LifecycleActive
	}
	require.NoError(f.t, f.store.CreateCoupon(context.Background(), c))
	return c
}

func (f *fixture) stock(variantID int64) int {
	v, err := f.store.GetVariant(context.Background(), variantID)
	require.NoError(f.t, err)
	return v.StockQuantity
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPlaceOrderPercentCouponScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer("ana@example.com")
	addr := f.address(c.ID, "lima")
	a := f.variant("Tee", "TEE-A", "10.00", 5)
	f.addToCart(c.ID, a.ID, 2)
	f.zone("Lima", "5.00")
	f.coupon(&entity.Coupon{Code: "SAVE10", Type: entity.CouponPercent, Value: dec("10")})

	order, err := f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID, CouponCode: "save10"})
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(dec("20.00")), order.Subtotal.String())
	assert.True(t, order.DiscountTotal.Equal(dec("2.00")), order.DiscountTotal.String())
	assert.True(t, order.ShippingFee.Equal(dec("5.00")), order.ShippingFee.String())
	assert.True(t, order.Total.Equal(dec("23.00")), order.Total.String())
	assert.True(t, order.Total.Equal(order.Subtotal.Sub(order.DiscountTotal).Add(order.ShippingFee)))
	assert.Equal(t, entity.StatusNew, order.Status)
	assert.True(t, order.StockDeducted)
	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.Equal(t, "Standard", order.ShippingLabel)
	assert.Equal(t, 3, f.stock(a.ID))

	stored, err := f.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	item := stored.Items[0]
	assert.Equal(t, "Tee", item.ProductName)
	assert.Equal(t, "TEE-A", item.SKU)
	assert.Equal(t, "M", item.Size)
	assert.Equal(t, "blue", item.Color)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(dec("10.00")))
	assert.True(t, item.LineTotal.Equal(dec("20.00")))

	cart, err := f.store.GetOrCreateCart(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, cart.Empty(), "cart items cleared")

	used, err := f.store.CountCouponUsageByCustomer(ctx, mustCoupon(t, f, "SAVE10").ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

func mustCoupon(t *testing.T, f *fixture, code string) *entity.Coupon {
	c, err := f.store.FindCouponByCode(context.Background(), code)
	require.NoError(t, err)
	return c
}

func TestPlaceOrderZeroStockLeavesNoOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer("ben@example.com")
	addr := f.address(c.ID, "Cusco")
	ok := f.variant("Cap", "CAP", "8.00", 10)
	b := f.variant("Hoodie", "HOOD-B", "15.00", 0)
	f.addToCart(c.ID, ok.ID, 1)
	f.addToCart(c.ID, b.ID, 1)

	_, err := f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Hoodie")
	assert.Equal(t, checkout.StepReserveStock, checkout.FailedStep(err))

	assert.Equal(t, 10, f.stock(ok.ID), "earlier decrement rolled back")
	assert.Equal(t, 0, f.stock(b.ID))

	orders, err := f.store.ListOrdersByCustomer(ctx, c.ID, ports.Page{})
	require.NoError(t, err)
	assert.Empty(t, orders)

	cart, err := f.store.GetOrCreateCart(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "cart untouched")
}

func TestPlaceOrderFixedCouponCappedAtSubtotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer("cam@example.com")
	addr := f.address(c.ID, "Arequipa")
	v := f.variant("Jeans", "JEANS", "30.00", 2)
	f.addToCart(c.ID, v.ID, 1)
	f.zone("Arequipa", "7.50")
	f.coupon(&entity.Coupon{Code: "BIG50", Type: entity.CouponFixed, Value: dec("50.00")})

	order, err := f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID, CouponCode: "BIG50"})
	require.NoError(t, err)
	assert.True(t, order.DiscountTotal.Equal(dec("30.00")))
	assert.True(t, order.Total.Equal(dec("7.50")))
	assert.True(t, order.DiscountTotal.LessThanOrEqual(order.Subtotal))
}

func TestPlaceOrderRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer("dan@example.com")
	other := f.customer("eve@example.com")
	addr := f.address(c.ID, "Lima")
	foreign := f.address(other.ID, "Lima")

	_, err := f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID})
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)

	v := f.variant("Socks", "SOCKS", "3.00", 10)
	f.addToCart(c.ID, v.ID, 1)

	_, err = f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: foreign.ID})
	assert.ErrorIs(t, err, apperr.ErrInvalidAddress)
	_, err = f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: 9999})
	assert.ErrorIs(t, err, apperr.ErrInvalidAddress)

	_, err = f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID, CouponCode: "NOPE"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCoupon)

	f.coupon(&entity.Coupon{Code: "MIN100", Type: entity.CouponFixed, Value: dec("5"), MinOrderTotal: decimal.NewNullDecimal(dec("100"))})
	_, err = f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID, CouponCode: "MIN100"})
	assert.ErrorIs(t, err, apperr.ErrBelowMinimum)
	assert.Equal(t, 10, f.stock(v.ID), "coupon failure rolls back the reservation")

	require.NoError(t, f.store.SetVariantLifecycle(ctx, v.ID, entity.LifecycleInactive))
	_, err = f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID})
	assert.ErrorIs(t, err, apperr.ErrItemUnavailable)
}

func TestPlaceOrderWithoutZoneIsFreeShipping(t *testing.T) {
	f := newFixture(t)
	c := f.customer("fay@example.com")
	addr := f.address(c.ID, "Nowhere")
	v := f.variant("Belt", "BELT", "12.00", 1)
	f.addToCart(c.ID, v.ID, 1)

	order, err := f.orch.PlaceOrder(context.Background(), checkout.Request{CustomerID: c.ID, AddressID: addr.ID})
	require.NoError(t, err)
	assert.True(t, order.ShippingFee.IsZero())
	assert.Empty(t, order.ShippingLabel)
	assert.True(t, order.Total.Equal(dec("12.00")))
}

func TestLastUnitRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.variant("Limited", "LTD", "99.00", 1)

	const buyers = 8
	reqs := make([]checkout.Request, buyers)
	for i := range reqs {
		c := f.customer("buyer" + string(rune('a'+i)) + "@example.com")
		addr := f.address(c.ID, "Lima")
		f.addToCart(c.ID, v.ID, 1)
		reqs[i] = checkout.Request{CustomerID: c.ID, AddressID: addr.ID}
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orch.PlaceOrder(ctx, reqs[i])
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 0, f.stock(v.ID))
}

func TestConcurrentCheckoutsOfOneCartPlaceOneOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer("gus@example.com")
	addr := f.address(c.ID, "Lima")
	v := f.variant("Mug", "MUG", "10.00", 100)
	one := 1
	f.coupon(&entity.Coupon{Code: "ONCE", Type: entity.CouponPercent, Value: dec("50"), PerUserLimit: &one})
	f.addToCart(c.ID, v.ID, 1)

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID, CouponCode: "ONCE"})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		// The winner cleared the cart before any other attempt read it.
		assert.ErrorIs(t, err, apperr.ErrEmptyCart)
		assert.Equal(t, checkout.StepLoadCart, checkout.FailedStep(err))
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 99, f.stock(v.ID))

	used, err := f.store.CountCouponUsageByCustomer(ctx, mustCoupon(t, f, "ONCE").ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used)

	// A fresh cart does not make the coupon usable again.
	f.addToCart(c.ID, v.ID, 1)
	_, err = f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID, CouponCode: "ONCE"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyUsedByCustomer)
}

func TestGlobalUsageLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	limit := 1
	f.coupon(&entity.Coupon{Code: "FIRST", Type: entity.CouponFixed, Value: dec("1"), UsageLimit: &limit})
	v := f.variant("Pin", "PIN", "4.00", 10)

	for i, email := range []string{"h1@example.com", "h2@example.com"} {
		c := f.customer(email)
		addr := f.address(c.ID, "Lima")
		f.addToCart(c.ID, v.ID, 1)
		_, err := f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID, CouponCode: "FIRST"})
		if i == 0 {
			require.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, apperr.ErrUsageLimitReached)
		}
	}
}

func TestCheckoutLogRecordsAttempts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer("ivy@example.com")
	addr := f.address(c.ID, "Lima")

	_, err := f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID})
	require.ErrorIs(t, err, apperr.ErrEmptyCart)

	v := f.variant("Scarf", "SCARF", "9.00", 1)
	f.addToCart(c.ID, v.ID, 1)
	order, err := f.orch.PlaceOrder(ctx, checkout.Request{CustomerID: c.ID, AddressID: addr.ID})
	require.NoError(t, err)

	entries, err := f.store.CheckoutLog().ListByCustomer(ctx, c.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, checkoutlog.StatusCompleted, entries[0].Status)
	assert.Equal(t, order.Reference, entries[0].OrderReference)
	assert.Equal(t, checkoutlog.StatusStarted, entries[1].Status)
	assert.NotEmpty(t, entries[1].Payload)
	assert.Equal(t, checkoutlog.StatusFailed, entries[2].Status)
	assert.Equal(t, checkout.StepLoadCart, entries[2].Step)
	assert.Equal(t, string(apperr.KindEmptyCart), entries[2].ErrorKind)
}
