package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const variantColumns = `v.id, v.product_id, p.name, v.sku, v.size, v.color, v.price, v.stock_quantity, v.lifecycle, v.created_at`

func (q *queries) CreateProduct(ctx context.Context, p *entity.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO products (name, description, created_at) VALUES (?, ?, ?)`,
		p.Name, p.Description, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create product: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, stmt,
		v.ProductID, v.SKU, v.Size, v.Color, v.Price, v.StockQuantity, string(v.Lifecycle), formatTime(v.CreatedAt))
	if err != nil {
		return wrap(err, fmt.Sprintf("variant %s conflicts with an existing sku or size/color", v.SKU), "create variant")
	}
	v.ID, err = res.LastInsertId()
	return err
}

func (q *queries) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(q.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM products WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return p, nil
}

func (q *queries) ListProducts(ctx context.Context, page ports.Page) ([]entity.Product, error) {
	page = page.Normalize()
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM products ORDER BY id LIMIT ? OFFSET ?`,
		page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	var out []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (q *queries) ListVariantsByProduct(ctx context.Context, productID int64) ([]entity.Variant, error) {
	const stmt = `
		SELECT ` + variantColumns + `
		FROM   product_variants v
		JOIN   products p ON p.id = v.product_id
		WHERE  v.product_id = ?
		ORDER  BY v.id`
	rows, err := q.db.QueryContext(ctx, stmt, productID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list variants of product %d: %w", productID, err)
	}
	defer rows.Close()

	var out []entity.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan variant: %w", err)
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
		WHERE  v.id = ?`
	v, err := scanVariant(q.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		return nil, notFound(err, "variant", id)
	}
	return v, nil
}

func (q *queries) SetVariantLifecycle(ctx context.Context, id int64, l entity.Lifecycle) error {
	res, err := q.db.ExecContext(ctx, `UPDATE product_variants SET lifecycle = ? WHERE id = ?`, string(l), id)
	if err != nil {
		return fmt.Errorf("sqlite: set variant %d lifecycle: %w", id, err)
	}
	return expectOneRow(res, "variant", id)
}

// DecrementStockIfAvailable is the only statement that lowers stock.
func (q *queries) DecrementStockIfAvailable(ctx context.Context, variantID int64, quantity int) (bool, error) {
	const stmt = `
		UPDATE product_variants
		SET    stock_quantity = stock_quantity - ?
		WHERE  id = ? AND stock_quantity >= ?`
	res, err := q.db.ExecContext(ctx, stmt, quantity, variantID, quantity)
	if err != nil {
		return false, fmt.Errorf("sqlite: decrement stock of variant %d: %w", variantID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return n == 1, nil
}

func (q *queries) IncrementStock(ctx context.Context, variantID int64, quantity int) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE product_variants SET stock_quantity = stock_quantity + ? WHERE id = ?`, quantity, variantID)
	if err != nil {
		return fmt.Errorf("sqlite: increment stock of variant %d: %w", variantID, err)
	}
	return expectOneRow(res, "variant", variantID)
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseRFC3339(createdAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = t
	return &p, nil
}

func scanVariant(row rowScanner) (*entity.Variant, error) {
	var v entity.Variant
	var createdAt string
	err := row.Scan(&v.ID, &v.ProductID, &v.ProductName, &v.SKU, &v.Size, &v.Color,
		&v.Price, &v.StockQuantity, &v.Lifecycle, &createdAt)
	if err != nil {
		return nil, err
	}
	if v.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	return &v, nil
}
