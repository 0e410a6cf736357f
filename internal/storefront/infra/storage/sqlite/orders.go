package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const orderColumns = `id, reference, customer_id, address_id, employee_id, status, subtotal, discount_total,
	shipping_fee, total, coupon_code, shipping_label, stock_deducted, created_at, updated_at`

func (q *queries) CreateOrder(ctx context.Context, o *entity.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	const header = `
		INSERT INTO orders (reference, customer_id, address_id, employee_id, status, subtotal, discount_total,
		                    shipping_fee, total, coupon_code, shipping_label, stock_deducted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, header,
		o.Reference, o.CustomerID, o.AddressID, nullableInt64(o.EmployeeID), string(o.Status),
		o.Subtotal, o.DiscountTotal, o.ShippingFee, o.Total, o.CouponCode, o.ShippingLabel,
		o.StockDeducted, formatTime(o.CreatedAt), formatTime(o.UpdatedAt))
	if err != nil {
		return wrap(err, fmt.Sprintf("order %s conflicts with an existing order", o.Reference), "create order")
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	const item = `
		INSERT INTO order_items (order_id, product_name, sku, size, color, unit_price, quantity, line_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, it := range o.Items {
		if _, err := q.db.ExecContext(ctx, item,
			o.ID, it.ProductName, it.SKU, it.Size, it.Color, it.UnitPrice, it.Quantity, it.LineTotal); err != nil {
			return fmt.Errorf("sqlite: create order item %s: %w", it.SKU, err)
		}
	}
	return nil
}

func (q *queries) GetOrder(ctx context.Context, id int64) (*entity.Order, error) {
	o, err := scanOrder(q.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	if o.Items, err = q.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (q *queries) GetOrderByReference(ctx context.Context, ref string) (*entity.Order, error) {
	o, err := scanOrder(q.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE reference = ?`, ref))
	if err != nil {
		return nil, notFound(err, "order", ref)
	}
	if o.Items, err = q.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (q *queries) ListOrdersByCustomer(ctx context.Context, customerID int64, page ports.Page) ([]entity.Order, error) {
	page = page.Normalize()
	return q.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
		customerID, page.Limit, page.Offset)
}

func (q *queries) ListOrdersByEmployee(ctx context.Context, employeeID int64, page ports.Page) ([]entity.Order, error) {
	page = page.Normalize()
	return q.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE employee_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
		employeeID, page.Limit, page.Offset)
}

func (q *queries) ListOrdersByStatus(ctx context.Context, statuses []entity.OrderStatus, page ports.Page) ([]entity.Order, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	page = page.Normalize()

	args := make([]any, 0, len(statuses)+2)
	for _, s := range statuses {
		args = append(args, string(s))
	}
	args = append(args, page.Limit, page.Offset)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	return q.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status IN (`+placeholders+`) ORDER BY id DESC LIMIT ? OFFSET ?`,
		args...)
}

// CompareAndSetStatus updates the row only while it still holds from.
func (q *queries) CompareAndSetStatus(ctx context.Context, id int64, from, to entity.OrderStatus) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), formatTime(time.Now()), id, string(from))
	if err != nil {
		return false, fmt.Errorf("sqlite: update status of order %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return n == 1, nil
}

func (q *queries) SetOrderEmployee(ctx context.Context, id, employeeID int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE orders SET employee_id = ?, updated_at = ? WHERE id = ?`, employeeID, formatTime(time.Now()), id)
	if err != nil {
		return wrap(err, fmt.Sprintf("employee %d does not exist", employeeID), "assign employee")
	}
	return expectOneRow(res, "order", id)
}

func (q *queries) listOrders(ctx context.Context, stmt string, args ...any) ([]entity.Order, error) {
	rows, err := q.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}

	var out []entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	// Close before loading items: with one connection the item queries
	// would otherwise wait on this result set.
	_ = rows.Close()

	for i := range out {
		if out[i].Items, err = q.orderItems(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (q *queries) orderItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT product_name, sku, size, color, unit_price, quantity, line_total
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list items of order %d: %w", orderID, err)
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ProductName, &it.SKU, &it.Size, &it.Color, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("sqlite: scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	var employeeID sql.NullInt64
	var createdAt, updatedAt string
	err := row.Scan(&o.ID, &o.Reference, &o.CustomerID, &o.AddressID, &employeeID, &o.Status,
		&o.Subtotal, &o.DiscountTotal, &o.ShippingFee, &o.Total, &o.CouponCode, &o.ShippingLabel,
		&o.StockDeducted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	o.EmployeeID = nullInt64(employeeID)
	if o.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
