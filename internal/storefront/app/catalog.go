package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/inventory"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

type CatalogService struct {
	store  ports.Store
	ledger *inventory.Ledger
}

func NewCatalogService(store ports.Store) *CatalogService {
	return &CatalogService{store: store, ledger: inventory.NewLedger()}
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	p.ID = 0
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateVariant returns Conflict when the SKU, or the size and color of the
// same product, already exist.
func (s *CatalogService) CreateVariant(ctx context.Context, v *entity.Variant) (*entity.Variant, error) {
	v.ID = 0
	v.SKU = strings.TrimSpace(v.SKU)
	if v.SKU == "" {
		return nil, apperr.Validation("sku is required")
	}
	if v.Price.IsNegative() {
		return nil, apperr.Validation("price must not be negative")
	}
	if v.StockQuantity < 0 {
		return nil, apperr.Validation("stock must not be negative")
	}
	if v.Lifecycle == "" {
		v.Lifecycle = entity.LifecycleActive
	}
	if !v.Lifecycle.Valid() {
		return nil, apperr.Validation("unknown lifecycle %q", v.Lifecycle)
	}

	err := s.store.InTx(ctx, func(q ports.Queries) error {
		if err := q.CreateVariant(ctx, v); err != nil {
			return err
		}
		created, err := q.GetVariant(ctx, v.ID)
		if err != nil {
			return err
		}
		*v = *created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListProducts pages through the catalog. Each product carries only its
// purchasable variants.
func (s *CatalogService) ListProducts(ctx context.Context, page ports.Page) ([]entity.Product, error) {
	products, err := s.store.ListProducts(ctx, page)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Variants, err = s.purchasable(ctx, products[i].ID); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Variants, err = s.purchasable(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) purchasable(ctx context.Context, productID int64) ([]entity.Variant, error) {
	all, err := s.store.ListVariantsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Variant, 0, len(all))
	for _, v := range all {
		if v.Purchasable() {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *CatalogService) GetVariant(ctx context.Context, id int64) (*entity.Variant, error) {
	return s.store.GetVariant(ctx, id)
}

func (s *CatalogService) SetLifecycle(ctx context.Context, id int64, l entity.Lifecycle) (*entity.Variant, error) {
	l = entity.Lifecycle(strings.ToUpper(strings.TrimSpace(string(l))))
	if !l.Valid() {
		return nil, apperr.Validation("unknown lifecycle %q", l)
	}
	if err := s.store.SetVariantLifecycle(ctx, id, l); err != nil {
		return nil, err
	}
	return s.store.GetVariant(ctx, id)
}

// Restock adds quantity units with a single increment statement.
func (s *CatalogService) Restock(ctx context.Context, id int64, quantity int) (*entity.Variant, error) {
	if err := s.ledger.Restock(ctx, s.store, id, quantity); err != nil {
		return nil, err
	}
	v, err := s.store.GetVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "variant restocked", "variant_id", id, "added", quantity, "stock", v.StockQuantity)
	return v, nil
}
