package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponPercent CouponType = "PERCENT"
	CouponFixed   CouponType = "FIXED"
)

func (t CouponType) Valid() bool {
	return t == CouponPercent || t == CouponFixed
}

type Coupon struct {
	ID            int64
	Code          string
	Type          CouponType
	Value         decimal.Decimal
	MinOrderTotal decimal.NullDecimal
	StartAt       *time.Time
	EndAt         *time.Time
	UsageLimit    *int
	PerUserLimit  *int
	Lifecycle     Lifecycle
	CreatedAt     time.Time
}

// NormalizeCouponCode is the canonical stored form of a coupon code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidAt reports whether the coupon is active and now falls inside its
// window. Nil bounds are open.
func (c *Coupon) ValidAt(now time.Time) bool {
	if c.Lifecycle != LifecycleActive {
		return false
	}
	if c.StartAt != nil && now.Before(*c.StartAt) {
		return false
	}
	if c.EndAt != nil && now.After(*c.EndAt) {
		return false
	}
	return true
}

type CouponUsage struct {
	ID         int64
	CouponID   int64
	CustomerID int64
	OrderID    int64
	UsedAt     time.Time
}
