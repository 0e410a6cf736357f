package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lifecycle replaces separate active/deleted flags on catalog rows and coupons.
type Lifecycle string

const (
	LifecycleActive   Lifecycle = "ACTIVE"
	LifecycleInactive Lifecycle = "INACTIVE"
	LifecycleDeleted  Lifecycle = "DELETED"
)

func (l Lifecycle) Valid() bool {
	switch l {
	case LifecycleActive, LifecycleInactive, LifecycleDeleted:
		return true
	}
	return false
}

type Product struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	// Variants is only filled by reads that ask for them.
	Variants []Variant
}

// Variant is the sellable unit. StockQuantity only moves through the
// inventory ledger's conditional decrement or a restock increment.
type Variant struct {
	ID            int64
	ProductID     int64
	ProductName   string
	SKU           string
	Size          string
	Color         string
	Price         decimal.Decimal
	StockQuantity int
	Lifecycle     Lifecycle
	CreatedAt     time.Time
}

func (v Variant) Purchasable() bool {
	return v.Lifecycle == LifecycleActive
}
