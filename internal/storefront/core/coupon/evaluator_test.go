package coupon_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/storefront/core/coupon"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/storage/sqlite"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "coupons.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name     string
		typ      entity.CouponType
		value    string
		subtotal string
		want     string
	}{
		{"percent", entity.CouponPercent, "10", "20.00", "2.00"},
		{"percent rounds half up", entity.CouponPercent, "15", "10.10", "1.52"},
		{"percent rounds down", entity.CouponPercent, "12.5", "0.99", "0.12"},
		{"percent over 100 capped", entity.CouponPercent, "150", "40.00", "40.00"},
		{"fixed", entity.CouponFixed, "5.00", "30.00", "5.00"},
		{"fixed capped at subtotal", entity.CouponFixed, "50.00", "30.00", "30.00"},
		{"zero subtotal", entity.CouponFixed, "5.00", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coupon.Amount(&entity.Coupon{Type: tt.typ, Value: dec(tt.value)}, dec(tt.subtotal))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestEvaluateWindowAndLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ev := coupon.NewEvaluator(coupon.WithClock(func() time.Time { return now }))

	past := now.Add(-48 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	for _, c := range []*entity.Coupon{
		{Code: "OPEN", Type: entity.CouponFixed, Value: dec("1"), Lifecycle: entity.LifecycleActive},
		{Code: "WINDOW", Type: entity.CouponFixed, Value: dec("1"), StartAt: &yesterday, EndAt: &tomorrow, Lifecycle: entity.LifecycleActive},
		{Code: "EXPIRED", Type: entity.CouponFixed, Value: dec("1"), StartAt: &past, EndAt: &yesterday, Lifecycle: entity.LifecycleActive},
		{Code: "LATER", Type: entity.CouponFixed, Value: dec("1"), StartAt: &tomorrow, Lifecycle: entity.LifecycleActive},
		{Code: "PAUSED", Type: entity.CouponFixed, Value: dec("1"), Lifecycle: entity.LifecycleInactive},
		{Code: "GONE", Type: entity.CouponFixed, Value: dec("1"), Lifecycle: entity.LifecycleDeleted},
	} {
		require.NoError(t, store.CreateCoupon(ctx, c))
	}

	for code, valid := range map[string]bool{
		"open": true, "Window": true, "EXPIRED": false, "LATER": false, "PAUSED": false, "GONE": false, "MISSING": false,
	} {
		_, err := ev.Evaluate(ctx, store, code, 1, dec("10"))
		if valid {
			assert.NoError(t, err, code)
		} else {
			assert.ErrorIs(t, err, apperr.ErrInvalidCoupon, code)
		}
	}

	_, err := ev.Evaluate(ctx, store, "   ", 1, dec("10"))
	assert.ErrorIs(t, err, apperr.ErrInvalidCoupon)
}

func TestEvaluateIsSideEffectFree(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	one := 1
	c := &entity.Coupon{Code: "SAVE10", Type: entity.CouponPercent, Value: dec("10"), PerUserLimit: &one, UsageLimit: &one, Lifecycle: entity.LifecycleActive}
	require.NoError(t, store.CreateCoupon(ctx, c))

	ev := coupon.NewEvaluator()
	first, err := ev.Evaluate(ctx, store, "SAVE10", 7, dec("20.00"))
	require.NoError(t, err)
	second, err := ev.Evaluate(ctx, store, "save10", 7, dec("20.00"))
	require.NoError(t, err)

	assert.True(t, first.Amount.Equal(dec("2.00")))
	assert.True(t, first.Amount.Equal(second.Amount))

	used, err := store.CountCouponUsage(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestEvaluateMinimumAndCaps(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	ev := coupon.NewEvaluator()

	minimum := &entity.Coupon{Code: "MIN50", Type: entity.CouponFixed, Value: dec("5"), MinOrderTotal: decimal.NewNullDecimal(dec("50")), Lifecycle: entity.LifecycleActive}
	require.NoError(t, store.CreateCoupon(ctx, minimum))

	_, err := ev.Evaluate(ctx, store, "MIN50", 1, dec("49.99"))
	assert.ErrorIs(t, err, apperr.ErrBelowMinimum)
	_, err = ev.Evaluate(ctx, store, "MIN50", 1, dec("50.00"))
	assert.NoError(t, err)

	two := 2
	one := 1
	capped := &entity.Coupon{Code: "CAPPED", Type: entity.CouponFixed, Value: dec("5"), UsageLimit: &two, PerUserLimit: &one, Lifecycle: entity.LifecycleActive}
	require.NoError(t, store.CreateCoupon(ctx, capped))

	// Usage rows need real orders behind them.
	n := 0
	orderFor := func() int64 {
		n++
		u := &entity.User{Email: fmt.Sprintf("buyer%d@example.com", n), PasswordHash: "x", Role: entity.RoleCustomer, Enabled: true}
		require.NoError(t, store.CreateUser(ctx, u))
		a := &entity.Address{CustomerID: u.ID, Line1: "x", City: "Lima"}
		require.NoError(t, store.CreateAddress(ctx, a))
		o := &entity.Order{Reference: "ORD-" + u.Email, CustomerID: u.ID, AddressID: a.ID, Status: entity.StatusNew, StockDeducted: true}
		require.NoError(t, store.CreateOrder(ctx, o))
		require.NoError(t, store.RecordCouponUsage(ctx, &entity.CouponUsage{CouponID: capped.ID, CustomerID: u.ID, OrderID: o.ID}))
		return u.ID
	}

	first := orderFor()
	_, err = ev.Evaluate(ctx, store, "CAPPED", first, dec("10"))
	assert.ErrorIs(t, err, apperr.ErrAlreadyUsedByCustomer)

	_ = orderFor()
	_, err = ev.Evaluate(ctx, store, "CAPPED", 999, dec("10"))
	assert.ErrorIs(t, err, apperr.ErrUsageLimitReached)
}

// editOnLock commits a coupon edit at the moment the lock is taken, the way
// a concurrent admin update would land while a checkout waits on the row.
type editOnLock struct {
	*sqlite.Store
	edit func(ctx context.Context)
}

func (e editOnLock) LockCoupon(ctx context.Context, id int64) error {
	e.edit(ctx)
	return e.Store.LockCoupon(ctx, id)
}

func TestClaimSeesEditsCommittedBeforeTheLock(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	c := &entity.Coupon{Code: "FLASH", Type: entity.CouponFixed, Value: dec("3"), Lifecycle: entity.LifecycleActive}
	require.NoError(t, store.CreateCoupon(ctx, c))

	repo := editOnLock{Store: store, edit: func(ctx context.Context) {
		disabled := *c
		disabled.Lifecycle = entity.LifecycleInactive
		require.NoError(t, store.UpdateCoupon(ctx, &disabled))
	}}

	ev := coupon.NewEvaluator()
	_, err := ev.Claim(ctx, repo, "FLASH", 1, dec("10"))
	assert.ErrorIs(t, err, apperr.ErrInvalidCoupon)
}

func TestClaimEnforcesPerCustomerCapAcrossConcurrentTransactions(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	ev := coupon.NewEvaluator()

	u := &entity.User{Email: "racer@example.com", PasswordHash: "x", Role: entity.RoleCustomer, Enabled: true}
	require.NoError(t, store.CreateUser(ctx, u))
	a := &entity.Address{CustomerID: u.ID, Line1: "x", City: "Lima"}
	require.NoError(t, store.CreateAddress(ctx, a))
	one := 1
	c := &entity.Coupon{Code: "ONCE", Type: entity.CouponPercent, Value: dec("50"), PerUserLimit: &one, Lifecycle: entity.LifecycleActive}
	require.NoError(t, store.CreateCoupon(ctx, c))

	const attempts = 6
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.InTx(ctx, func(q ports.Queries) error {
				d, err := ev.Claim(ctx, q, "ONCE", u.ID, dec("10"))
				if err != nil {
					return err
				}
				o := &entity.Order{Reference: fmt.Sprintf("ORD-RACE-%d", i), CustomerID: u.ID, AddressID: a.ID, Status: entity.StatusNew, StockDeducted: true}
				if err := q.CreateOrder(ctx, o); err != nil {
					return err
				}
				return q.RecordCouponUsage(ctx, &entity.CouponUsage{CouponID: d.Coupon.ID, CustomerID: u.ID, OrderID: o.ID})
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.Equal(t, apperr.KindAlreadyUsedByCustomer, apperr.KindOf(err))
	}
	assert.Equal(t, 1, wins)

	used, err := store.CountCouponUsageByCustomer(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}
