package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const zoneColumns = `id, city, fee, label`

func (q *queries) FindZoneByCity(ctx context.Context, city string) (*entity.ShippingZone, error) {
	city = strings.TrimSpace(city)
	z, err := scanZone(q.db.QueryRowContext(ctx,
		`SELECT `+zoneColumns+` FROM shipping_zones WHERE city = ? COLLATE NOCASE`, city))
	if err != nil {
		return nil, notFound(err, "shipping zone", city)
	}
	return z, nil
}

func (q *queries) CreateZone(ctx context.Context, z *entity.ShippingZone) error {
	z.City = strings.TrimSpace(z.City)
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO shipping_zones (city, fee, label) VALUES (?, ?, ?)`, z.City, z.Fee, z.Label)
	if err != nil {
		return wrap(err, fmt.Sprintf("shipping zone for %s already exists", z.City), "create zone")
	}
	z.ID, err = res.LastInsertId()
	return err
}

func (q *queries) UpdateZone(ctx context.Context, z *entity.ShippingZone) error {
	z.City = strings.TrimSpace(z.City)
	res, err := q.db.ExecContext(ctx,
		`UPDATE shipping_zones SET city = ?, fee = ?, label = ? WHERE id = ?`, z.City, z.Fee, z.Label, z.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("shipping zone for %s already exists", z.City), "update zone")
	}
	return expectOneRow(res, "shipping zone", z.ID)
}

func (q *queries) GetZone(ctx context.Context, id int64) (*entity.ShippingZone, error) {
	z, err := scanZone(q.db.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM shipping_zones WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "shipping zone", id)
	}
	return z, nil
}

func (q *queries) ListZones(ctx context.Context) ([]entity.ShippingZone, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+zoneColumns+` FROM shipping_zones ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list zones: %w", err)
	}
	defer rows.Close()

	var out []entity.ShippingZone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan zone: %w", err)
		}
		out = append(out, *z)
	}
	return out, rows.Err()
}

func (q *queries) DeleteZone(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM shipping_zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete zone %d: %w", id, err)
	}
	return expectOneRow(res, "shipping zone", id)
}

func scanZone(row rowScanner) (*entity.ShippingZone, error) {
	var z entity.ShippingZone
	if err := row.Scan(&z.ID, &z.City, &z.Fee, &z.Label); err != nil {
		return nil, err
	}
	return &z, nil
}
