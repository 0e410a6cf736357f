package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const orderColumns = `id, reference, customer_id, address_id, employee_id, status, subtotal::text, discount_total::text,
	shipping_fee::text, total::text, coupon_code, shipping_label, stock_deducted, created_at, updated_at`

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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err := q.db.QueryRow(ctx, header,
		o.Reference, o.CustomerID, o.AddressID, o.EmployeeID, string(o.Status),
		o.Subtotal.String(), o.DiscountTotal.String(), o.ShippingFee.String(), o.Total.String(),
		o.CouponCode, o.ShippingLabel, o.StockDeducted, o.CreatedAt, o.UpdatedAt).Scan(&o.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("order %s conflicts with an existing order", o.Reference), "create order")
	}

	const item = `
		INSERT INTO order_items (order_id, product_name, sku, size, color, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, it := range o.Items {
		if _, err := q.db.Exec(ctx, item,
			o.ID, it.ProductName, it.SKU, it.Size, it.Color, it.UnitPrice.String(), it.Quantity, it.LineTotal.String()); err != nil {
			return fmt.Errorf("postgres: create order item %s: %w", it.SKU, err)
		}
	}
	return nil
}

func (q *queries) GetOrder(ctx context.Context, id int64) (*entity.Order, error) {
	o, err := scanOrder(q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	if o.Items, err = q.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (q *queries) GetOrderByReference(ctx context.Context, ref string) (*entity.Order, error) {
	o, err := scanOrder(q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE reference = $1`, ref))
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
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		customerID, page.Limit, page.Offset)
}

func (q *queries) ListOrdersByEmployee(ctx context.Context, employeeID int64, page ports.Page) ([]entity.Order, error) {
	page = page.Normalize()
	return q.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE employee_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		employeeID, page.Limit, page.Offset)
}

func (q *queries) ListOrdersByStatus(ctx context.Context, statuses []entity.OrderStatus, page ports.Page) ([]entity.Order, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	page = page.Normalize()

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return q.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = ANY($1) ORDER BY id DESC LIMIT $2 OFFSET $3`,
		names, page.Limit, page.Offset)
}

// CompareAndSetStatus updates the row only while it still holds from.
func (q *queries) CompareAndSetStatus(ctx context.Context, id int64, from, to entity.OrderStatus) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("postgres: update status of order %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *queries) SetOrderEmployee(ctx context.Context, id, employeeID int64) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE orders SET employee_id = $1, updated_at = now() WHERE id = $2`, employeeID, id)
	if err != nil {
		return wrap(err, fmt.Sprintf("employee %d does not exist", employeeID), "assign employee")
	}
	return expectOneRow(tag, "order", id)
}

func (q *queries) listOrders(ctx context.Context, stmt string, args ...any) ([]entity.Order, error) {
	rows, err := q.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}

	var out []entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("postgres: scan order: %w", err)
		}
		out = append(out, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}

	// A pgx.Tx cannot run a second query while rows are open.
	for i := range out {
		if out[i].Items, err = q.orderItems(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (q *queries) orderItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT product_name, sku, size, color, unit_price::text, quantity, line_total::text
		FROM   order_items
		WHERE  order_id = $1
		ORDER  BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list items of order %d: %w", orderID, err)
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		var unit, line string
		if err := rows.Scan(&it.ProductName, &it.SKU, &it.Size, &it.Color, &unit, &it.Quantity, &line); err != nil {
			return nil, fmt.Errorf("postgres: scan order item: %w", err)
		}
		if it.UnitPrice, err = parseMoney(unit); err != nil {
			return nil, err
		}
		if it.LineTotal, err = parseMoney(line); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	var status, subtotal, discount, fee, total string
	err := row.Scan(&o.ID, &o.Reference, &o.CustomerID, &o.AddressID, &o.EmployeeID, &status,
		&subtotal, &discount, &fee, &total, &o.CouponCode, &o.ShippingLabel,
		&o.StockDeducted, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	if o.Subtotal, err = parseMoney(subtotal); err != nil {
		return nil, err
	}
	if o.DiscountTotal, err = parseMoney(discount); err != nil {
		return nil, err
	}
	if o.ShippingFee, err = parseMoney(fee); err != nil {
		return nil, err
	}
	if o.Total, err = parseMoney(total); err != nil {
		return nil, err
	}
	return &o, nil
}
