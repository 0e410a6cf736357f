package entity

import "github.com/shopspring/decimal"

type Cart struct {
	ID         int64
	CustomerID int64
	Items      []CartItem
}

// CartItem carries the live variant so prices and availability are read at
// the time the cart is loaded.
type CartItem struct {
	ID        int64
	CartID    int64
	VariantID int64
	Quantity  int
	Variant   Variant
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Variant.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}
