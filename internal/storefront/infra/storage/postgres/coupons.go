package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const couponColumns = `id, code, type, value::text, min_order_total::text, start_at, end_at, usage_limit, per_user_limit, lifecycle, created_at`

func (q *queries) CreateCoupon(ctx context.Context, c *entity.Coupon) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	const stmt = `
		INSERT INTO coupons (code, type, value, min_order_total, start_at, end_at, usage_limit, per_user_limit, lifecycle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := q.db.QueryRow(ctx, stmt,
		c.Code, string(c.Type), c.Value.String(), nullableMoney(c.MinOrderTotal), c.StartAt, c.EndAt,
		c.UsageLimit, c.PerUserLimit, string(c.Lifecycle), c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("coupon %s already exists", c.Code), "create coupon")
	}
	return nil
}

func (q *queries) UpdateCoupon(ctx context.Context, c *entity.Coupon) error {
	const stmt = `
		UPDATE coupons
		SET    code = $1, type = $2, value = $3, min_order_total = $4, start_at = $5, end_at = $6,
		       usage_limit = $7, per_user_limit = $8, lifecycle = $9
		WHERE  id = $10`
	tag, err := q.db.Exec(ctx, stmt,
		c.Code, string(c.Type), c.Value.String(), nullableMoney(c.MinOrderTotal), c.StartAt, c.EndAt,
		c.UsageLimit, c.PerUserLimit, string(c.Lifecycle), c.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("coupon %s already exists", c.Code), "update coupon")
	}
	return expectOneRow(tag, "coupon", c.ID)
}

func (q *queries) GetCoupon(ctx context.Context, id int64) (*entity.Coupon, error) {
	c, err := scanCoupon(q.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "coupon", id)
	}
	return c, nil
}

func (q *queries) ListCoupons(ctx context.Context) ([]entity.Coupon, error) {
	rows, err := q.db.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list coupons: %w", err)
	}
	defer rows.Close()

	var out []entity.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan coupon: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (q *queries) FindCouponByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	c, err := scanCoupon(q.db.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE upper(code) = $1`, code))
	if err != nil {
		return nil, notFound(err, "coupon", code)
	}
	return c, nil
}

// LockCoupon holds the coupon row until the transaction ends so two
// checkouts cannot both pass the same usage cap.
func (q *queries) LockCoupon(ctx context.Context, id int64) error {
	var locked int64
	err := q.db.QueryRow(ctx, `SELECT id FROM coupons WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		return notFound(err, "coupon", id)
	}
	return nil
}

func (q *queries) CountCouponUsage(ctx context.Context, couponID int64) (int, error) {
	var n int
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1`, couponID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count usage of coupon %d: %w", couponID, err)
	}
	return n, nil
}

func (q *queries) CountCouponUsageByCustomer(ctx context.Context, couponID, customerID int64) (int, error) {
	var n int
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND customer_id = $2`, couponID, customerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count usage of coupon %d by customer %d: %w", couponID, customerID, err)
	}
	return n, nil
}

func (q *queries) RecordCouponUsage(ctx context.Context, u *entity.CouponUsage) error {
	if u.UsedAt.IsZero() {
		u.UsedAt = time.Now().UTC()
	}
	err := q.db.QueryRow(ctx,
		`INSERT INTO coupon_usages (coupon_id, customer_id, order_id, used_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		u.CouponID, u.CustomerID, u.OrderID, u.UsedAt).Scan(&u.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("coupon %d is already recorded for order %d", u.CouponID, u.OrderID), "record coupon usage")
	}
	return nil
}

func scanCoupon(row rowScanner) (*entity.Coupon, error) {
	var c entity.Coupon
	var typ, value, lifecycle string
	var minTotal *string
	err := row.Scan(&c.ID, &c.Code, &typ, &value, &minTotal, &c.StartAt, &c.EndAt,
		&c.UsageLimit, &c.PerUserLimit, &lifecycle, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Type = entity.CouponType(typ)
	c.Lifecycle = entity.Lifecycle(lifecycle)
	if c.Value, err = parseMoney(value); err != nil {
		return nil, err
	}
	if c.MinOrderTotal, err = parseNullMoney(minTotal); err != nil {
		return nil, err
	}
	return &c, nil
}
