package app

import (
	"context"
	"strings"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/shipping"
)

type ShippingService struct {
	store    ports.Store
	resolver *shipping.Resolver
}

func NewShippingService(store ports.Store) *ShippingService {
	return &ShippingService{store: store, resolver: shipping.NewResolver()}
}

// Quote resolves the fee for one of the customer's addresses.
func (s *ShippingService) Quote(ctx context.Context, customerID, addressID int64) (shipping.Quote, error) {
	a, err := s.store.GetAddress(ctx, addressID)
	if err != nil {
		return shipping.Quote{}, err
	}
	if a.CustomerID != customerID {
		return shipping.Quote{}, apperr.NotFound("address %d not found", addressID)
	}
	return s.resolver.ResolveByCity(ctx, s.store, a.City)
}

func (s *ShippingService) ListZones(ctx context.Context) ([]entity.ShippingZone, error) {
	return s.store.ListZones(ctx)
}

func (s *ShippingService) CreateZone(ctx context.Context, z *entity.ShippingZone) (*entity.ShippingZone, error) {
	z.ID = 0
	if err := validateZone(z); err != nil {
		return nil, err
	}
	if err := s.store.CreateZone(ctx, z); err != nil {
		return nil, err
	}
	return z, nil
}

func (s *ShippingService) UpdateZone(ctx context.Context, id int64, z *entity.ShippingZone) (*entity.ShippingZone, error) {
	z.ID = id
	if err := validateZone(z); err != nil {
		return nil, err
	}
	if err := s.store.UpdateZone(ctx, z); err != nil {
		return nil, err
	}
	return z, nil
}

func (s *ShippingService) DeleteZone(ctx context.Context, id int64) error {
	return s.store.DeleteZone(ctx, id)
}

func validateZone(z *entity.ShippingZone) error {
	z.City = strings.TrimSpace(z.City)
	if z.City == "" {
		return apperr.Validation("city is required")
	}
	if z.Fee.IsNegative() {
		return apperr.Validation("fee must not be negative")
	}
	return nil
}
