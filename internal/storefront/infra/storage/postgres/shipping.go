package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const zoneColumns = `id, city, fee::text, label`

func (q *queries) FindZoneByCity(ctx context.Context, city string) (*entity.ShippingZone, error) {
	city = strings.TrimSpace(city)
	z, err := scanZone(q.db.QueryRow(ctx,
		`SELECT `+zoneColumns+` FROM shipping_zones WHERE lower(city) = lower($1)`, city))
	if err != nil {
		return nil, notFound(err, "shipping zone", city)
	}
	return z, nil
}

func (q *queries) CreateZone(ctx context.Context, z *entity.ShippingZone) error {
	z.City = strings.TrimSpace(z.City)
	err := q.db.QueryRow(ctx,
		`INSERT INTO shipping_zones (city, fee, label) VALUES ($1, $2, $3) RETURNING id`,
		z.City, z.Fee.String(), z.Label).Scan(&z.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("shipping zone for %s already exists", z.City), "create zone")
	}
	return nil
}

func (q *queries) UpdateZone(ctx context.Context, z *entity.ShippingZone) error {
	z.City = strings.TrimSpace(z.City)
	tag, err := q.db.Exec(ctx,
		`UPDATE shipping_zones SET city = $1, fee = $2, label = $3 WHERE id = $4`, z.City, z.Fee.String(), z.Label, z.ID)
	if err != nil {
		return wrap(err, fmt.Sprintf("shipping zone for %s already exists", z.City), "update zone")
	}
	return expectOneRow(tag, "shipping zone", z.ID)
}

func (q *queries) GetZone(ctx context.Context, id int64) (*entity.ShippingZone, error) {
	z, err := scanZone(q.db.QueryRow(ctx, `SELECT `+zoneColumns+` FROM shipping_zones WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "shipping zone", id)
	}
	return z, nil
}

func (q *queries) ListZones(ctx context.Context) ([]entity.ShippingZone, error) {
	rows, err := q.db.Query(ctx, `SELECT `+zoneColumns+` FROM shipping_zones ORDER BY lower(city)`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list zones: %w", err)
	}
	defer rows.Close()

	var out []entity.ShippingZone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan zone: %w", err)
		}
		out = append(out, *z)
	}
	return out, rows.Err()
}

func (q *queries) DeleteZone(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM shipping_zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete zone %d: %w", id, err)
	}
	return expectOneRow(tag, "shipping zone", id)
}

func scanZone(row rowScanner) (*entity.ShippingZone, error) {
	var z entity.ShippingZone
	var fee string
	if err := row.Scan(&z.ID, &z.City, &fee, &z.Label); err != nil {
		return nil, err
	}
	var err error
	if z.Fee, err = parseMoney(fee); err != nil {
		return nil, err
	}
	return &z, nil
}
