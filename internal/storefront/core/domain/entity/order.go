package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusNew          OrderStatus = "NEW"
	StatusProcessing   OrderStatus = "PROCESSING"
	StatusShipped      OrderStatus = "SHIPPED"
	StatusDelivered    OrderStatus = "DELIVERED"
	StatusFailedPickup OrderStatus = "FAILED_PICKUP"
)

// ActiveStatuses are the statuses an order can still move out of.
var ActiveStatuses = []OrderStatus{StatusNew, StatusProcessing, StatusShipped}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusProcessing, StatusShipped, StatusDelivered, StatusFailedPickup:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusFailedPickup
}

// Order is the aggregate written once per successful checkout. Only Status
// and EmployeeID change after creation.
type Order struct {
	ID            int64
	Reference     string
	CustomerID    int64
	AddressID     int64
	EmployeeID    *int64
	Status        OrderStatus
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	ShippingFee   decimal.Decimal
	Total         decimal.Decimal
	CouponCode    string
	ShippingLabel string
	StockDeducted bool
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AssignedTo reports whether the order is assigned to the given employee.
func (o *Order) AssignedTo(employeeID int64) bool {
	return o.EmployeeID != nil && *o.EmployeeID == employeeID
}

// OrderItem is a value copy of the purchased variant. It keeps no link to
// the live catalog row.
type OrderItem struct {
	ProductName string
	SKU         string
	Size        string
	Color       string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

func NewOrderItem(v Variant, quantity int) OrderItem {
	return OrderItem{
		ProductName: v.ProductName,
		SKU:         v.SKU,
		Size:        v.Size,
		Color:       v.Color,
		UnitPrice:   v.Price,
		Quantity:    quantity,
		LineTotal:   v.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// OrderEvent is published after an order is placed or changes status.
type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    int64       `json:"order_id"`
	Reference  string      `json:"reference"`
	CustomerID int64       `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	From       OrderStatus `json:"from,omitempty"`
	Total      string      `json:"total"`
	OccurredAt time.Time   `json:"occurred_at"`
}

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)
