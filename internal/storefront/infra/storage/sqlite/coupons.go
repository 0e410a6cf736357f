package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const couponColumns = `id, code, type, value, min_order_total, start_at, end_at, usage_limit, per_user_limit, lifecycle, created_at`

func (q *queries) CreateCoupon(ctx context.Context, c *entity.Coupon) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	const stmt = `
		INSERT INTO coupons (code, type, value, min_order_total, start_at, end_at, usage_limit, per_user_limit, lifecycle, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, stmt,
		c.Code, string(c.Type), c.Value, c.MinOrderTotal, nullableTime(c.StartAt), nullableTime(c.EndAt),
		nullableInt(c.UsageLimit), nullableInt(c.PerUserLimit), string(c.Lifecycle), formatTime(c.CreatedAt))
	if err != nil {
		return wrap(err, fmt.Sprintf("coupon %s already exists", c.Code), "create coupon")
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (q *queries) UpdateCoupon(ctx context.Context, c *entity.Coupon) error {
	const stmt = `
		UPDATE coupons
		SET    code = ?, type = ?, value = ?, min_order_total = ?, start_at = ?, end_at = ?,
		       usage_limit = ?, per_user_limit = ?, lifecycle = ?
		WHERE  id = ?`
	res, err := q.db.ExecContext(ctx, stmt,
		c.Code, string(c.Type), c.Value, c.MinOrderTotal, nullableTime(c.StartAt), nullableTime(c.EndAt),
		nullableInt(c.UsageLimit), nullableInt(c.PerUserLimit), string(c.Lifecycle), c.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("coupon %s already exists", c.Code), "update coupon")
	}
	return expectOneRow(res, "coupon", c.ID)
}

func (q *queries) GetCoupon(ctx context.Context, id int64) (*entity.Coupon, error) {
	c, err := scanCoupon(q.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "coupon", id)
	}
	return c, nil
}

func (q *queries) ListCoupons(ctx context.Context) ([]entity.Coupon, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list coupons: %w", err)
	}
	defer rows.Close()

	var out []entity.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan coupon: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (q *queries) FindCouponByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	c, err := scanCoupon(q.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = ? COLLATE NOCASE`, code))
	if err != nil {
		return nil, notFound(err, "coupon", code)
	}
	return c, nil
}

// LockCoupon is a no-op: the single connection already serialises every
// transaction that could count or record usage.
func (q *queries) LockCoupon(context.Context, int64) error {
	return nil
}

func (q *queries) CountCouponUsage(ctx context.Context, couponID int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = ?`, couponID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count usage of coupon %d: %w", couponID, err)
	}
	return n, nil
}

func (q *queries) CountCouponUsageByCustomer(ctx context.Context, couponID, customerID int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = ? AND customer_id = ?`, couponID, customerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count usage of coupon %d by customer %d: %w", couponID, customerID, err)
	}
	return n, nil
}

func (q *queries) RecordCouponUsage(ctx context.Context, u *entity.CouponUsage) error {
	if u.UsedAt.IsZero() {
		u.UsedAt = time.Now().UTC()
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO coupon_usages (coupon_id, customer_id, order_id, used_at) VALUES (?, ?, ?, ?)`,
		u.CouponID, u.CustomerID, u.OrderID, formatTime(u.UsedAt))
	if err != nil {
		return wrap(err, fmt.Sprintf("coupon %d is already recorded for order %d", u.CouponID, u.OrderID), "record coupon usage")
	}
	u.ID, err = res.LastInsertId()
	return err
}

func scanCoupon(row rowScanner) (*entity.Coupon, error) {
	var c entity.Coupon
	var startAt, endAt sql.NullString
	var usageLimit, perUserLimit sql.NullInt64
	var createdAt string
	err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Value, &c.MinOrderTotal, &startAt, &endAt,
		&usageLimit, &perUserLimit, &c.Lifecycle, &createdAt)
	if err != nil {
		return nil, err
	}
	if c.StartAt, err = parseNullTime(startAt); err != nil {
		return nil, err
	}
	if c.EndAt, err = parseNullTime(endAt); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	c.UsageLimit = nullInt(usageLimit)
	c.PerUserLimit = nullInt(perUserLimit)
	return &c, nil
}
