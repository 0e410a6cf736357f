package sqlite

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func (q *queries) GetOrCreateCart(ctx context.Context, customerID int64) (*entity.Cart, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO carts (customer_id) VALUES (?) ON CONFLICT (customer_id) DO NOTHING`, customerID)
	if err != nil {
		return nil, wrap(err, fmt.Sprintf("customer %d does not exist", customerID), "create cart")
	}

	cart := &entity.Cart{CustomerID: customerID}
	if err := q.db.QueryRowContext(ctx, `SELECT id FROM carts WHERE customer_id = ?`, customerID).Scan(&cart.ID); err != nil {
		return nil, fmt.Errorf("sqlite: get cart for customer %d: %w", customerID, err)
	}

	const stmt = `
		SELECT ci.id, ci.cart_id, ci.variant_id, ci.quantity, ` + variantColumns + `
		FROM   cart_items ci
		JOIN   product_variants v ON v.id = ci.variant_id
		JOIN   products p ON p.id = v.product_id
		WHERE  ci.cart_id = ?
		ORDER  BY ci.variant_id`
	rows, err := q.db.QueryContext(ctx, stmt, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.CartItem
		var createdAt string
		v := &it.Variant
		if err := rows.Scan(&it.ID, &it.CartID, &it.VariantID, &it.Quantity,
			&v.ID, &v.ProductID, &v.ProductName, &v.SKU, &v.Size, &v.Color,
			&v.Price, &v.StockQuantity, &v.Lifecycle, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan cart item: %w", err)
		}
		if v.CreatedAt, err = parseRFC3339(createdAt); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list cart items: %w", err)
	}
	return cart, nil
}

// LockCart is a no-op for the same reason as LockCoupon.
func (q *queries) LockCart(context.Context, int64) error {
	return nil
}

// AddCartItem inserts the line or adds quantity to the existing one.
func (q *queries) AddCartItem(ctx context.Context, cartID, variantID int64, quantity int) error {
	const stmt = `
		INSERT INTO cart_items (cart_id, variant_id, quantity) VALUES (?, ?, ?)
		ON CONFLICT (cart_id, variant_id) DO UPDATE SET quantity = quantity + excluded.quantity`
	if _, err := q.db.ExecContext(ctx, stmt, cartID, variantID, quantity); err != nil {
		return wrap(err, fmt.Sprintf("variant %d cannot be added to the cart", variantID), "add cart item")
	}
	return nil
}

func (q *queries) SetCartItemQuantity(ctx context.Context, cartID, variantID int64, quantity int) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND variant_id = ?`, quantity, cartID, variantID)
	if err != nil {
		return fmt.Errorf("sqlite: set cart item quantity: %w", err)
	}
	return expectOneRow(res, "cart item for variant", variantID)
}

func (q *queries) RemoveCartItem(ctx context.Context, cartID, variantID int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ? AND variant_id = ?`, cartID, variantID)
	if err != nil {
		return fmt.Errorf("sqlite: remove cart item: %w", err)
	}
	return expectOneRow(res, "cart item for variant", variantID)
}

func (q *queries) ClearCart(ctx context.Context, cartID int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return fmt.Errorf("sqlite: clear cart %d: %w", cartID, err)
	}
	return nil
}
