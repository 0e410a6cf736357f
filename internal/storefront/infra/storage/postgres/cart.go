package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func (q *queries) GetOrCreateCart(ctx context.Context, customerID int64) (*entity.Cart, error) {
	_, err := q.db.Exec(ctx,
		`INSERT INTO carts (customer_id) VALUES ($1) ON CONFLICT (customer_id) DO NOTHING`, customerID)
	if err != nil {
		return nil, wrap(err, fmt.Sprintf("customer %d does not exist", customerID), "create cart")
	}

	cart := &entity.Cart{CustomerID: customerID}
	if err := q.db.QueryRow(ctx, `SELECT id FROM carts WHERE customer_id = $1`, customerID).Scan(&cart.ID); err != nil {
		return nil, fmt.Errorf("postgres: get cart for customer %d: %w", customerID, err)
	}

	const stmt = `
		SELECT ci.id, ci.cart_id, ci.variant_id, ci.quantity, ` + variantColumns + `
		FROM   cart_items ci
		JOIN   product_variants v ON v.id = ci.variant_id
		JOIN   products p ON p.id = v.product_id
		WHERE  ci.cart_id = $1
		ORDER  BY ci.variant_id`
	rows, err := q.db.Query(ctx, stmt, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.CartItem
		var price, lifecycle string
		v := &it.Variant
		if err := rows.Scan(&it.ID, &it.CartID, &it.VariantID, &it.Quantity,
			&v.ID, &v.ProductID, &v.ProductName, &v.SKU, &v.Size, &v.Color,
			&price, &v.StockQuantity, &lifecycle, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan cart item: %w", err)
		}
		if v.Price, err = parseMoney(price); err != nil {
			return nil, err
		}
		v.Lifecycle = entity.Lifecycle(lifecycle)
		cart.Items = append(cart.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list cart items: %w", err)
	}
	return cart, nil
}

// LockCart holds the cart row until the transaction ends. A checkout that
// waits here reads the items only after the first one has cleared them.
func (q *queries) LockCart(ctx context.Context, customerID int64) error {
	var id int64
	err := q.db.QueryRow(ctx, `SELECT id FROM carts WHERE customer_id = $1 FOR UPDATE`, customerID).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("postgres: lock cart of customer %d: %w", customerID, err)
	}
	return nil
}

// AddCartItem inserts the line or adds quantity to the existing one.
func (q *queries) AddCartItem(ctx context.Context, cartID, variantID int64, quantity int) error {
	const stmt = `
		INSERT INTO cart_items (cart_id, variant_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, variant_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`
	if _, err := q.db.Exec(ctx, stmt, cartID, variantID, quantity); err != nil {
		return wrap(err, fmt.Sprintf("variant %d cannot be added to the cart", variantID), "add cart item")
	}
	return nil
}

func (q *queries) SetCartItemQuantity(ctx context.Context, cartID, variantID int64, quantity int) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND variant_id = $3`, quantity, cartID, variantID)
	if err != nil {
		return fmt.Errorf("postgres: set cart item quantity: %w", err)
	}
	return expectOneRow(tag, "cart item for variant", variantID)
}

func (q *queries) RemoveCartItem(ctx context.Context, cartID, variantID int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND variant_id = $2`, cartID, variantID)
	if err != nil {
		return fmt.Errorf("postgres: remove cart item: %w", err)
	}
	return expectOneRow(tag, "cart item for variant", variantID)
}

func (q *queries) ClearCart(ctx context.Context, cartID int64) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("postgres: clear cart %d: %w", cartID, err)
	}
	return nil
}
