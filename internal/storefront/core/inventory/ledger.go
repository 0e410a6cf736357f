// Package inventory owns every change to variant stock.
//
// Stock leaves only through Reserve, a single conditional decrement executed
// by the storage layer. A reservation is undone by rolling back the
// transaction it ran in; there is no separate release call.
package inventory

import (
	"context"
	"log/slog"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve decrements variantID's stock by quantity if enough is available.
// reserved is false, with a nil error, when stock is short or the variant
// does not exist.
func (l *Ledger) Reserve(ctx context.Context, q ports.StockRepository, variantID int64, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, apperr.Validation("quantity must be positive, got %d", quantity)
	}

	ok, err := q.DecrementStockIfAvailable(ctx, variantID, quantity)
	if err != nil {
		return false, err
	}
	if !ok {
		slog.InfoContext(ctx, "stock reservation rejected", "variant_id", variantID, "quantity", quantity)
	}
	return ok, nil
}

// Restock adds quantity units to variantID.
func (l *Ledger) Restock(ctx context.Context, q ports.StockRepository, variantID int64, quantity int) error {
	if quantity <= 0 {
		return apperr.Validation("restock quantity must be positive, got %d", quantity)
	}
	return q.IncrementStock(ctx, variantID, quantity)
}
