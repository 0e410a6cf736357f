package app_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/metrics"
	"github.com/jcmexdev/storefront/internal/storefront/app"
	"github.com/jcmexdev/storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/storefront/internal/storefront/core/coupon"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/storage/sqlite"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e entity.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	t         *testing.T
	store     *sqlite.Store
	events    *recordingPublisher
	orders    *app.OrderService
	carts     *app.CartService
	addresses *app.AddressService
	coupons   *app.CouponService
	shipping  *app.ShippingService
	catalog   *app.CatalogService
	users     *app.UserService
	tokens    *auth.TokenIssuer
	idem      *cache.Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	events := &recordingPublisher{}
	idem := cache.NewMemory("storefront")
	tokens := auth.NewTokenIssuer("test-secret", "storefront", time.Hour)
	orch := checkout.NewOrchestrator(store, checkout.WithCheckoutLog(store.CheckoutLog()))
	return &env{
		t:      t,
		store:  store,
		events: events,
		orders: app.NewOrderService(store, orch,
			app.WithIdempotencyCache(idem, time.Hour),
			app.WithEvents(events),
			app.WithMetrics(metrics.NewServerMetrics("test")),
		),
		carts:     app.NewCartService(store),
		addresses: app.NewAddressService(store),
		coupons:   app.NewCouponService(store, coupon.NewEvaluator()),
		shipping:  app.NewShippingService(store),
		catalog:   app.NewCatalogService(store),
		users:     app.NewUserService(store, tokens),
		tokens:    tokens,
		idem:      idem,
	}
}

func (e *env) user(email string, role entity.Role) *entity.User {
	u, err := e.users.Create(context.Background(), email, "correct-horse", "Test User", role)
	require.NoError(e.t, err)
	return u
}

func (e *env) variant(sku, price string, stock int) *entity.Variant {
	ctx := context.Background()
	p, err := e.catalog.CreateProduct(ctx, &entity.Product{Name: "Shirt " + sku})
	require.NoError(e.t, err)
	v, err := e.catalog.CreateVariant(ctx, &entity.Variant{
		ProductID: p.ID, SKU: sku, Size: "M", Color: "red",
		Price: decimal.RequireFromString(price), StockQuantity: stock,
	})
	require.NoError(e.t, err)
	return v
}

func (e *env) address(customerID int64, city string) *entity.Address {
	a, err := e.addresses.Create(context.Background(), customerID, &entity.Address{Line1: "Calle 1", City: city})
	require.NoError(e.t, err)
	return a
}

// placedOrder puts one unit in the cart and checks out.
func (e *env) placedOrder(customer *entity.User, v *entity.Variant) *entity.Order {
	ctx := context.Background()
	_, err := e.carts.Add(ctx, customer.ID, v.ID, 1)
	require.NoError(e.t, err)
	a := e.address(customer.ID, "Lima")
	o, err := e.orders.PlaceOrder(ctx, checkout.Request{CustomerID: customer.ID, AddressID: a.ID}, "")
	require.NoError(e.t, err)
	return o
}

func TestPlaceOrderIdempotentReplay(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := e.user("buyer@example.com", entity.RoleCustomer)
	v := e.variant("TS-1", "10.00", 5)
	a := e.address(buyer.ID, "Lima")

	_, err := e.carts.Add(ctx, buyer.ID, v.ID, 2)
	require.NoError(t, err)

	req := checkout.Request{CustomerID: buyer.ID, AddressID: a.ID}
	first, err := e.orders.PlaceOrder(ctx, req, "key-1")
	require.NoError(t, err)

	again, err := e.orders.PlaceOrder(ctx, req, "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.Reference, again.Reference)

	got, err := e.store.GetVariant(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQuantity)

	// A different key runs checkout again and finds the cart empty.
	_, err = e.orders.PlaceOrder(ctx, req, "key-2")
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)

	assert.Equal(t, []string{entity.EventOrderPlaced}, e.events.types())
}

func TestStaleIdempotencyKeyIsDropped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := e.user("stale@example.com", entity.RoleCustomer)
	v := e.variant("TS-2", "10.00", 5)
	a := e.address(buyer.ID, "Lima")
	_, err := e.carts.Add(ctx, buyer.ID, v.ID, 1)
	require.NoError(t, err)

	key := e.idem.GenerateKey("place_order", fmt.Sprintf("%d:%s", buyer.ID, "key-9"))
	require.NoError(t, e.idem.Set(ctx, key, "987654", time.Hour))

	order, err := e.orders.PlaceOrder(ctx, checkout.Request{CustomerID: buyer.ID, AddressID: a.ID}, "key-9")
	require.NoError(t, err)

	cached, err := e.idem.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(order.ID, 10), cached)

	require.NoError(t, e.idem.Set(ctx, key, "not-a-number", time.Hour))
	_, err = e.orders.PlaceOrder(ctx, checkout.Request{CustomerID: buyer.ID, AddressID: a.ID}, "key-9")
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
	cached, err = e.idem.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestUpdateStatusByAdminAndEmployee(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := e.user("buyer@example.com", entity.RoleCustomer)
	admin := e.user("admin@example.com", entity.RoleAdmin)
	courier := e.user("courier@example.com", entity.RoleEmployee)
	other := e.user("other@example.com", entity.RoleEmployee)
	order := e.placedOrder(buyer, e.variant("TS-1", "10.00", 5))

	adminActor := entity.Actor{ID: admin.ID, Role: entity.RoleAdmin}
	courierActor := entity.Actor{ID: courier.ID, Role: entity.RoleEmployee}

	_, err := e.orders.UpdateStatus(ctx, courierActor, order.ID, entity.StatusShipped)
	assert.ErrorIs(t, err, apperr.ErrForbidden, "unassigned employee")

	_, err = e.orders.AssignEmployee(ctx, order.ID, buyer.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation, "assignee must be an employee")

	assigned, err := e.orders.AssignEmployee(ctx, order.ID, courier.ID)
	require.NoError(t, err)
	assert.True(t, assigned.AssignedTo(courier.ID))

	got, err := e.orders.UpdateStatus(ctx, adminActor, order.ID, entity.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusProcessing, got.Status)

	got, err = e.orders.UpdateStatus(ctx, adminActor, order.ID, entity.StatusProcessing)
	require.NoError(t, err, "self-transition")
	assert.Equal(t, entity.StatusProcessing, got.Status)

	_, err = e.orders.UpdateStatus(ctx, entity.Actor{ID: other.ID, Role: entity.RoleEmployee}, order.ID, entity.StatusShipped)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.orders.UpdateStatus(ctx, courierActor, order.ID, entity.StatusShipped)
	require.NoError(t, err)
	_, err = e.orders.UpdateStatus(ctx, courierActor, order.ID, entity.StatusFailedPickup)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "employees cannot mark failed pickup")
	_, err = e.orders.UpdateStatus(ctx, courierActor, order.ID, entity.StatusDelivered)
	require.NoError(t, err)

	_, err = e.orders.UpdateStatus(ctx, adminActor, order.ID, entity.StatusShipped)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "delivered is terminal")

	_, err = e.orders.UpdateStatus(ctx, entity.Actor{ID: buyer.ID, Role: entity.RoleCustomer}, order.ID, entity.StatusDelivered)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.orders.UpdateStatus(ctx, adminActor, order.ID, app.ParseStatus("lost"))
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	assert.Equal(t, []string{
		entity.EventOrderPlaced,
		entity.EventOrderStatusChanged,
		entity.EventOrderStatusChanged,
		entity.EventOrderStatusChanged,
	}, e.events.types())

	final, err := e.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, final.Status)
}

func TestOrderReadScopes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := e.user("buyer@example.com", entity.RoleCustomer)
	stranger := e.user("stranger@example.com", entity.RoleCustomer)
	courier := e.user("courier@example.com", entity.RoleEmployee)
	admin := entity.Actor{ID: e.user("admin@example.com", entity.RoleAdmin).ID, Role: entity.RoleAdmin}
	v := e.variant("TS-1", "10.00", 5)

	first := e.placedOrder(buyer, v)
	second := e.placedOrder(buyer, v)

	_, err := e.orders.GetForCustomer(ctx, stranger.ID, first.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	got, err := e.orders.GetForCustomer(ctx, buyer.ID, first.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = e.orders.GetForCustomer(ctx, buyer.ID, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	mine, err := e.orders.ListForCustomer(ctx, buyer.ID, ports.Page{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = e.orders.AssignEmployee(ctx, second.ID, courier.ID)
	require.NoError(t, err)
	_, err = e.orders.GetForEmployee(ctx, courier.ID, first.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assigned, err := e.orders.ListForEmployee(ctx, courier.ID, ports.Page{})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, second.ID, assigned[0].ID)

	for _, to := range []entity.OrderStatus{entity.StatusShipped, entity.StatusDelivered} {
		_, err = e.orders.UpdateStatus(ctx, admin, second.ID, to)
		require.NoError(t, err)
	}

	active, err := e.orders.ListForAdmin(ctx, false, ports.Page{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	delivered, err := e.orders.ListForAdmin(ctx, true, ports.Page{})
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, second.ID, delivered[0].ID)
}

func TestCartOperations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := e.user("buyer@example.com", entity.RoleCustomer)
	a := e.variant("A", "5.00", 10)
	b := e.variant("B", "2.50", 10)

	cart, err := e.carts.Get(ctx, buyer.ID)
	require.NoError(t, err)
	assert.True(t, cart.Empty())

	_, err = e.carts.Add(ctx, buyer.ID, a.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.carts.Add(ctx, buyer.ID, a.ID, 1)
	require.NoError(t, err)
	cart, err = e.carts.Add(ctx, buyer.ID, a.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	cart, err = e.carts.Add(ctx, buyer.ID, b.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "20.00", cart.Subtotal().StringFixed(2))

	cart, err = e.carts.SetQuantity(ctx, buyer.ID, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "10.00", cart.Subtotal().StringFixed(2))

	cart, err = e.carts.SetQuantity(ctx, buyer.ID, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, a.ID, cart.Items[0].VariantID)

	_, err = e.carts.Remove(ctx, buyer.ID, b.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.catalog.SetLifecycle(ctx, b.ID, "inactive")
	require.NoError(t, err)
	_, err = e.carts.Add(ctx, buyer.ID, b.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrItemUnavailable)

	cleared, err := e.carts.Clear(ctx, buyer.ID)
	require.NoError(t, err)
	assert.True(t, cleared.Empty())
	assert.Equal(t, cart.ID, cleared.ID)
}

func TestAddressesAreOwnerScoped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user("owner@example.com", entity.RoleCustomer)
	other := e.user("other@example.com", entity.RoleCustomer)

	_, err := e.addresses.Create(ctx, owner.ID, &entity.Address{Line1: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	a := e.address(owner.ID, "Cusco")

	_, err = e.addresses.Get(ctx, other.ID, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, e.addresses.Delete(ctx, other.ID, a.ID), apperr.ErrNotFound)

	list, err := e.addresses.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, e.addresses.Delete(ctx, owner.ID, a.ID))
	list, err = e.addresses.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCouponAdminAndPreview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := e.user("buyer@example.com", entity.RoleCustomer)
	v := e.variant("A", "20.00", 10)

	c, err := e.coupons.Create(ctx, &entity.Coupon{Code: " save10 ", Type: entity.CouponPercent, Value: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", c.Code)

	_, err = e.coupons.Create(ctx, &entity.Coupon{Code: "Save10", Type: entity.CouponFixed, Value: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = e.coupons.Create(ctx, &entity.Coupon{Code: "HUGE", Type: entity.CouponPercent, Value: decimal.NewFromInt(150)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.carts.Add(ctx, buyer.ID, v.ID, 2)
	require.NoError(t, err)

	preview, err := e.coupons.Preview(ctx, buyer.ID, "save10", nil)
	require.NoError(t, err)
	assert.Equal(t, "40.00", preview.Subtotal.StringFixed(2))
	assert.Equal(t, "4.00", preview.Discount.StringFixed(2))
	assert.Equal(t, "36.00", preview.Total.StringFixed(2))

	explicit := decimal.RequireFromString("15.55")
	preview, err = e.coupons.Preview(ctx, buyer.ID, "SAVE10", &explicit)
	require.NoError(t, err)
	assert.Equal(t, "1.56", preview.Discount.StringFixed(2))

	view, err := e.coupons.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, view.Used, "preview records nothing")

	require.NoError(t, e.coupons.Delete(ctx, c.ID))
	view, err = e.coupons.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LifecycleDeleted, view.Lifecycle)

	_, err = e.coupons.Preview(ctx, buyer.ID, "SAVE10", nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidCoupon)
}

func TestShippingQuoteAndZones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := e.user("buyer@example.com", entity.RoleCustomer)
	other := e.user("other@example.com", entity.RoleCustomer)

	zone, err := e.shipping.CreateZone(ctx, &entity.ShippingZone{City: "Arequipa", Fee: decimal.RequireFromString("7.50"), Label: "Express"})
	require.NoError(t, err)
	_, err = e.shipping.CreateZone(ctx, &entity.ShippingZone{City: "AREQUIPA", Fee: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	a := e.address(buyer.ID, "arequipa")
	q, err := e.shipping.Quote(ctx, buyer.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, zone.ID, q.ZoneID)
	assert.Equal(t, "7.50", q.Fee.StringFixed(2))
	assert.Equal(t, "Express", q.Label)

	_, err = e.shipping.Quote(ctx, other.ID, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	far := e.address(buyer.ID, "Iquitos")
	q, err = e.shipping.Quote(ctx, buyer.ID, far.ID)
	require.NoError(t, err)
	assert.True(t, q.Fee.IsZero())
	assert.Empty(t, q.Label)

	require.NoError(t, e.shipping.DeleteZone(ctx, zone.ID))
	zones, err := e.shipping.ListZones(ctx)
	require.NoError(t, err)
	assert.Empty(t, zones)
}

func TestCatalogRestock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := e.variant("A", "1.00", 0)

	got, err := e.catalog.Restock(ctx, v.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, got.StockQuantity)

	_, err = e.catalog.Restock(ctx, v.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.catalog.Restock(ctx, 9999, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	p, err := e.catalog.CreateProduct(ctx, &entity.Product{Name: "Other"})
	require.NoError(t, err)
	_, err = e.catalog.CreateVariant(ctx, &entity.Variant{ProductID: p.ID, SKU: "A", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrConflict, "duplicate sku")
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Register(ctx, "New@Example.com", "long-enough", "New User")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, u.Role)
	assert.Equal(t, "new@example.com", u.Email)

	_, err = e.users.Register(ctx, "new@example.com", "long-enough", "")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = e.users.Register(ctx, "short@example.com", "short", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.users.Login(ctx, "new@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = e.users.Login(ctx, "nobody@example.com", "long-enough")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	session, err := e.users.Login(ctx, "NEW@example.com", "long-enough")
	require.NoError(t, err)

	actor, err := e.users.Authenticate(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.Actor{ID: u.ID, Role: entity.RoleCustomer}, actor)

	stale, err := e.tokens.Issue(u.ID, string(entity.RoleCustomer), u.TokenVersion+1)
	require.NoError(t, err)
	_, err = e.users.Authenticate(ctx, stale)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = e.users.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAdminManagesUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.user("root@example.com", entity.RoleAdmin)

	emp, err := e.users.CreateEmployee(ctx, "Staff@Example.com", "long-enough", "Staff")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, emp.Role)
	_, err = e.users.CreateEmployee(ctx, "staff@example.com", "long-enough", "")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	employees, err := e.users.ListEmployees(ctx, ports.Page{})
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, emp.ID, employees[0].ID)

	session, err := e.users.Login(ctx, "staff@example.com", "long-enough")
	require.NoError(t, err)
	_, err = e.users.Authenticate(ctx, session.AccessToken)
	require.NoError(t, err)

	require.NoError(t, e.users.Disable(ctx, emp.ID))
	_, err = e.users.Authenticate(ctx, session.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized, "tokens issued before disable are revoked")
	_, err = e.users.Login(ctx, "staff@example.com", "long-enough")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	require.NoError(t, e.users.Enable(ctx, emp.ID))
	_, err = e.users.Authenticate(ctx, session.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized, "enabling does not revive old tokens")
	session, err = e.users.Login(ctx, "staff@example.com", "long-enough")
	require.NoError(t, err)

	changed, err := e.users.ChangeRole(ctx, emp.ID, "customer")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, changed.Role)
	_, err = e.users.Authenticate(ctx, session.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized, "role change revokes tokens")

	assert.ErrorIs(t, e.users.Disable(ctx, admin.ID), apperr.ErrValidation)
	_, err = e.users.ChangeRole(ctx, admin.ID, entity.RoleEmployee)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.users.ChangeRole(ctx, emp.ID, "OWNER")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.ErrorIs(t, e.users.Disable(ctx, 9999), apperr.ErrNotFound)
	assert.ErrorIs(t, e.users.Enable(ctx, 9999), apperr.ErrNotFound)
}

func TestAuthenticateRejectsNonNumericSubject(t *testing.T) {
	e := newEnv(t)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "abc",
		Issuer:    "storefront",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = e.users.Authenticate(context.Background(), raw)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCatalogBrowseShowsPurchasableVariants(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.catalog.CreateProduct(ctx, &entity.Product{Name: "Hoodie"})
	require.NoError(t, err)
	on, err := e.catalog.CreateVariant(ctx, &entity.Variant{ProductID: p.ID, SKU: "HD-M", Size: "M", Price: decimal.NewFromInt(30), StockQuantity: 2})
	require.NoError(t, err)
	off, err := e.catalog.CreateVariant(ctx, &entity.Variant{ProductID: p.ID, SKU: "HD-L", Size: "L", Price: decimal.NewFromInt(30)})
	require.NoError(t, err)
	_, err = e.catalog.SetLifecycle(ctx, off.ID, entity.LifecycleInactive)
	require.NoError(t, err)
	_, err = e.catalog.CreateProduct(ctx, &entity.Product{Name: "Cap"})
	require.NoError(t, err)

	got, err := e.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, on.ID, got.Variants[0].ID)

	list, err := e.catalog.ListProducts(ctx, ports.Page{Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	list, err = e.catalog.ListProducts(ctx, ports.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cap", list[0].Name)
	assert.Empty(t, list[0].Variants)

	_, err = e.catalog.GetProduct(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
