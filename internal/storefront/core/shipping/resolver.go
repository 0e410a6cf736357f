package shipping

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// Quote is the fee for one destination city. A zero ZoneID means no zone
// matched and the free default applies.
type Quote struct {
	ZoneID int64
	City   string
	Fee    decimal.Decimal
	Label  string
}

type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveByCity never fails for an unknown or blank city; it returns the
// zero-fee default. Storage errors are still returned.
func (r *Resolver) ResolveByCity(ctx context.Context, q ports.ShippingRepository, city string) (Quote, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Quote{Fee: decimal.Zero}, nil
	}

	zone, err := q.FindZoneByCity(ctx, city)
	if errors.Is(err, apperr.ErrNotFound) {
		return Quote{City: city, Fee: decimal.Zero}, nil
	}
	if err != nil {
		return Quote{}, err
	}

	return Quote{ZoneID: zone.ID, City: zone.City, Fee: zone.Fee, Label: zone.Label}, nil
}
