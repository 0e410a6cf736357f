package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const variantColumns = `v.id, v.product_id, p.name, v.sku, v.size, v.color, v.price::text, v.stock_quantity, v.lifecycle, v.created_at`

func (q *queries) CreateProduct(ctx context.Context, p *entity.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	err := q.db.QueryRow(ctx,
		`INSERT INTO products (name, description, created_at) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, p.Description, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("postgres: create product: %w", err)
	}
	return nil
}

func (q *queries) CreateVariant(ctx context.Context, v *entity.Variant) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if v.Lifecycle == "" {
		v.Lifecycle = entity.LifecycleActive
	}

	const stmt = `
		INSERT INTO product_variants (product_id, sku, size, color, price, stock_quantity, lifecycle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := q.db.QueryRow(ctx, stmt,
		v.ProductID, v.SKU, v.Size, v.Color, v.Price.String(), v.StockQuantity, string(v.Lifecycle), v.CreatedAt).Scan(&v.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("variant %s conflicts with an existing sku or size/color", v.SKU), "create variant")
	}
	return nil
}

func (q *queries) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	var p entity.Product
	err := q.db.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

func (q *queries) ListProducts(ctx context.Context, page ports.Page) ([]entity.Product, error) {
	page = page.Normalize()
	rows, err := q.db.Query(ctx,
		`SELECT id, name, description, created_at FROM products ORDER BY id LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list products: %w", err)
	}
	defer rows.Close()

	var out []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *queries) ListVariantsByProduct(ctx context.Context, productID int64) ([]entity.Variant, error) {
	const stmt = `
		SELECT ` + variantColumns + `
		FROM   product_variants v
		JOIN   products p ON p.id = v.product_id
		WHERE  v.product_id = $1
		ORDER  BY v.id`
	rows, err := q.db.Query(ctx, stmt, productID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list variants of product %d: %w", productID, err)
	}
	defer rows.Close()

	var out []entity.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan variant: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (q *queries) GetVariant(ctx context.Context, id int64) (*entity.Variant, error) {
	const stmt = `
		SELECT ` + variantColumns + `
		FROM   product_variants v
		JOIN   products p ON p.id = v.product_id
		WHERE  v.id = $1`
	v, err := scanVariant(q.db.QueryRow(ctx, stmt, id))
	if err != nil {
		return nil, notFound(err, "variant", id)
	}
	return v, nil
}

func (q *queries) SetVariantLifecycle(ctx context.Context, id int64, l entity.Lifecycle) error {
	tag, err := q.db.Exec(ctx, `UPDATE product_variants SET lifecycle = $1 WHERE id = $2`, string(l), id)
	if err != nil {
		return fmt.Errorf("postgres: set variant %d lifecycle: %w", id, err)
	}
	return expectOneRow(tag, "variant", id)
}

// DecrementStockIfAvailable is the only statement that lowers stock.
func (q *queries) DecrementStockIfAvailable(ctx context.Context, variantID int64, quantity int) (bool, error) {
	const stmt = `
		UPDATE product_variants
		SET    stock_quantity = stock_quantity - $1
		WHERE  id = $2 AND stock_quantity >= $1`
	tag, err := q.db.Exec(ctx, stmt, quantity, variantID)
	if err != nil {
		return false, fmt.Errorf("postgres: decrement stock of variant %d: %w", variantID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *queries) IncrementStock(ctx context.Context, variantID int64, quantity int) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE product_variants SET stock_quantity = stock_quantity + $1 WHERE id = $2`, quantity, variantID)
	if err != nil {
		return fmt.Errorf("postgres: increment stock of variant %d: %w", variantID, err)
	}
	return expectOneRow(tag, "variant", variantID)
}

func scanVariant(row rowScanner) (*entity.Variant, error) {
	var v entity.Variant
	var price, lifecycle string
	err := row.Scan(&v.ID, &v.ProductID, &v.ProductName, &v.SKU, &v.Size, &v.Color,
		&price, &v.StockQuantity, &lifecycle, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	if v.Price, err = parseMoney(price); err != nil {
		return nil, err
	}
	v.Lifecycle = entity.Lifecycle(lifecycle)
	return &v, nil
}
