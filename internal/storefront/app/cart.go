package app

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// CartService edits the single cart each customer owns. The cart row is
// created lazily and survives clearing.
type CartService struct {
	store ports.Store
}

func NewCartService(store ports.Store) *CartService {
	return &CartService{store: store}
}

func (s *CartService) Get(ctx context.Context, customerID int64) (*entity.Cart, error) {
	return s.store.GetOrCreateCart(ctx, customerID)
}

// Add puts quantity units of an active variant in the cart, on top of what
// is already there. Stock is not checked until checkout.
func (s *CartService) Add(ctx context.Context, customerID, variantID int64, quantity int) (*entity.Cart, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}

	var cart *entity.Cart
	err := s.store.InTx(ctx, func(q ports.Queries) error {
		v, err := q.GetVariant(ctx, variantID)
		if err != nil {
			return err
		}
		if !v.Purchasable() {
			return apperr.New(apperr.KindItemUnavailable, "%s (%s) is not available", v.ProductName, v.SKU)
		}
		c, err := q.GetOrCreateCart(ctx, customerID)
		if err != nil {
			return err
		}
		if err := q.AddCartItem(ctx, c.ID, variantID, quantity); err != nil {
			return err
		}
		cart, err = q.GetOrCreateCart(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity replaces the quantity of a line. Zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, customerID, variantID int64, quantity int) (*entity.Cart, error) {
	var cart *entity.Cart
	err := s.store.InTx(ctx, func(q ports.Queries) error {
		c, err := q.GetOrCreateCart(ctx, customerID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			err = q.RemoveCartItem(ctx, c.ID, variantID)
		} else {
			err = q.SetCartItemQuantity(ctx, c.ID, variantID, quantity)
		}
		if err != nil {
			return err
		}
		cart, err = q.GetOrCreateCart(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) Remove(ctx context.Context, customerID, variantID int64) (*entity.Cart, error) {
	return s.SetQuantity(ctx, customerID, variantID, 0)
}

func (s *CartService) Clear(ctx context.Context, customerID int64) (*entity.Cart, error) {
	var cart *entity.Cart
	err := s.store.InTx(ctx, func(q ports.Queries) error {
		c, err := q.GetOrCreateCart(ctx, customerID)
		if err != nil {
			return err
		}
		if err := q.ClearCart(ctx, c.ID); err != nil {
			return err
		}
		c.Items = nil
		cart = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}
