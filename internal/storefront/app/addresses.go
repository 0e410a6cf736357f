package app

import (
	"context"
	"strings"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// AddressService is scoped to the owner: another customer's address looks
// exactly like a missing one.
type AddressService struct {
	store ports.Store
}

func NewAddressService(store ports.Store) *AddressService {
	return &AddressService{store: store}
}

func (s *AddressService) Create(ctx context.Context, customerID int64, a *entity.Address) (*entity.Address, error) {
	a.ID = 0
	a.CustomerID = customerID
	a.Line1 = strings.TrimSpace(a.Line1)
	a.City = strings.TrimSpace(a.City)
	if a.Line1 == "" {
		return nil, apperr.Validation("line1 is required")
	}
	if a.City == "" {
		return nil, apperr.Validation("city is required")
	}
	if err := s.store.CreateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) List(ctx context.Context, customerID int64) ([]entity.Address, error) {
	return s.store.ListAddresses(ctx, customerID)
}

func (s *AddressService) Get(ctx context.Context, customerID, addressID int64) (*entity.Address, error) {
	a, err := s.store.GetAddress(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if a.CustomerID != customerID {
		return nil, apperr.NotFound("address %d not found", addressID)
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, customerID, addressID int64) error {
	return s.store.InTx(ctx, func(q ports.Queries) error {
		a, err := q.GetAddress(ctx, addressID)
		if err != nil {
			return err
		}
		if a.CustomerID != customerID {
			return apperr.NotFound("address %d not found", addressID)
		}
		return q.DeleteAddress(ctx, addressID)
	})
}
