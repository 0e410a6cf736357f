package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const addressColumns = `id, customer_id, full_name, phone, line1, line2, city, region, postal_code, created_at`

func (q *queries) CreateAddress(ctx context.Context, a *entity.Address) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const stmt = `
		INSERT INTO addresses (customer_id, full_name, phone, line1, line2, city, region, postal_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, stmt,
		a.CustomerID, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.Region, a.PostalCode, formatTime(a.CreatedAt))
	if err != nil {
		return wrap(err, fmt.Sprintf("customer %d does not exist", a.CustomerID), "create address")
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (q *queries) GetAddress(ctx context.Context, id int64) (*entity.Address, error) {
	a, err := scanAddress(q.db.QueryRowContext(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "address", id)
	}
	return a, nil
}

func (q *queries) ListAddresses(ctx context.Context, customerID int64) ([]entity.Address, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE customer_id = ? ORDER BY id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list addresses: %w", err)
	}
	defer rows.Close()

	var out []entity.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan address: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (q *queries) DeleteAddress(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = ?`, id)
	if err != nil {
		return wrap(err, fmt.Sprintf("address %d is referenced by an order", id), "delete address")
	}
	return expectOneRow(res, "address", id)
}

func scanAddress(row rowScanner) (*entity.Address, error) {
	var a entity.Address
	var createdAt string
	err := row.Scan(&a.ID, &a.CustomerID, &a.FullName, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.Region, &a.PostalCode, &createdAt)
	if err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}
