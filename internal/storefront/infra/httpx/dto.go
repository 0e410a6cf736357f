package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/storefront/app"
	"github.com/jcmexdev/storefront/internal/storefront/core/checkoutlog"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/shipping"
)

// Money is always rendered with two decimals, as a string.

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role"`
	Enabled  bool   `json:"enabled"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type CheckoutRequest struct {
	AddressID  int64  `json:"addressId"`
	CouponCode string `json:"couponCode,omitempty"`
}

type OrderResponse struct {
	ID            int64               `json:"id"`
	Reference     string              `json:"reference"`
	CustomerID    int64               `json:"customerId"`
	AddressID     int64               `json:"addressId"`
	EmployeeID    *int64              `json:"employeeId,omitempty"`
	Status        string              `json:"status"`
	Subtotal      string              `json:"subtotal"`
	DiscountTotal string              `json:"discountTotal"`
	ShippingFee   string              `json:"shippingFee"`
	Total         string              `json:"total"`
	CouponCode    string              `json:"couponCode,omitempty"`
	ShippingLabel string              `json:"shippingLabel,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"createdAt"`
	UpdatedAt     string              `json:"updatedAt"`
}

type OrderItemResponse struct {
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AssignEmployeeRequest struct {
	EmployeeID int64 `json:"employeeId"`
}

type CartItemRequest struct {
	VariantID int64 `json:"variantId"`
	Quantity  int   `json:"quantity"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	ID       int64              `json:"id"`
	Items    []CartItemResponse `json:"items"`
	Subtotal string             `json:"subtotal"`
}

type CartItemResponse struct {
	VariantID   int64  `json:"variantId"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
	Available   bool   `json:"available"`
}

type AddressRequest struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
}

type AddressResponse struct {
	ID int64 `json:"id"`
	AddressRequest
}

type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ProductResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Variants    []VariantResponse `json:"variants,omitempty"`
}

type VariantRequest struct {
	SKU           string          `json:"sku"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

type VariantResponse struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"productId"`
	ProductName   string `json:"productName"`
	SKU           string `json:"sku"`
	Size          string `json:"size,omitempty"`
	Color         string `json:"color,omitempty"`
	Price         string `json:"price"`
	StockQuantity int    `json:"stockQuantity"`
	Lifecycle     string `json:"lifecycle"`
}

type LifecycleRequest struct {
	Lifecycle string `json:"lifecycle"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code     string           `json:"code"`
	Subtotal *decimal.Decimal `json:"subtotal,omitempty"`
}

type CouponPreviewResponse struct {
	Code     string `json:"code"`
	Type     string `json:"type"`
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

type CouponRequest struct {
	Code          string           `json:"code"`
	Type          string           `json:"type"`
	Value         decimal.Decimal  `json:"value"`
	MinOrderTotal *decimal.Decimal `json:"minOrderTotal,omitempty"`
	StartAt       *time.Time       `json:"startAt,omitempty"`
	EndAt         *time.Time       `json:"endAt,omitempty"`
	UsageLimit    *int             `json:"usageLimit,omitempty"`
	PerUserLimit  *int             `json:"perUserLimit,omitempty"`
	Lifecycle     string           `json:"lifecycle,omitempty"`
}

type CouponResponse struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	Type          string     `json:"type"`
	Value         string     `json:"value"`
	MinOrderTotal *string    `json:"minOrderTotal,omitempty"`
	StartAt       *time.Time `json:"startAt,omitempty"`
	EndAt         *time.Time `json:"endAt,omitempty"`
	UsageLimit    *int       `json:"usageLimit,omitempty"`
	PerUserLimit  *int       `json:"perUserLimit,omitempty"`
	Lifecycle     string     `json:"lifecycle"`
	Used          *int       `json:"used,omitempty"`
}

type ZoneRequest struct {
	City  string          `json:"city"`
	Fee   decimal.Decimal `json:"fee"`
	Label string          `json:"label"`
}

type ZoneResponse struct {
	ID    int64  `json:"id"`
	City  string `json:"city"`
	Fee   string `json:"fee"`
	Label string `json:"label,omitempty"`
}

type QuoteResponse struct {
	ZoneID *int64 `json:"zoneId,omitempty"`
	City   string `json:"city,omitempty"`
	Fee    string `json:"fee"`
	Label  string `json:"label,omitempty"`
}

type CheckoutLogResponse struct {
	AttemptID      string `json:"attemptId"`
	CustomerID     int64  `json:"customerId"`
	Status         string `json:"status"`
	Step           string `json:"step,omitempty"`
	ErrorKind      string `json:"errorKind,omitempty"`
	Message        string `json:"message,omitempty"`
	OrderReference string `json:"orderReference,omitempty"`
	TraceID        string `json:"traceId,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func mapOrderToResponse(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Size:        it.Size,
			Color:       it.Color,
			UnitPrice:   money(it.UnitPrice),
			Quantity:    it.Quantity,
			LineTotal:   money(it.LineTotal),
		}
	}
	return OrderResponse{
		ID:            o.ID,
		Reference:     o.Reference,
		CustomerID:    o.CustomerID,
		AddressID:     o.AddressID,
		EmployeeID:    o.EmployeeID,
		Status:        string(o.Status),
		Subtotal:      money(o.Subtotal),
		DiscountTotal: money(o.DiscountTotal),
		ShippingFee:   money(o.ShippingFee),
		Total:         money(o.Total),
		CouponCode:    o.CouponCode,
		ShippingLabel: o.ShippingLabel,
		Items:         items,
		CreatedAt:     timestamp(o.CreatedAt),
		UpdatedAt:     timestamp(o.UpdatedAt),
	}
}

func mapOrders(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = mapOrderToResponse(&orders[i])
	}
	return out
}

func mapCart(c *entity.Cart) CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = CartItemResponse{
			VariantID:   it.VariantID,
			ProductName: it.Variant.ProductName,
			SKU:         it.Variant.SKU,
			Size:        it.Variant.Size,
			Color:       it.Variant.Color,
			UnitPrice:   money(it.Variant.Price),
			Quantity:    it.Quantity,
			LineTotal:   money(it.LineTotal()),
			Available:   it.Variant.Purchasable(),
		}
	}
	return CartResponse{ID: c.ID, Items: items, Subtotal: money(c.Subtotal())}
}

func mapAddress(a *entity.Address) AddressResponse {
	return AddressResponse{
		ID: a.ID,
		AddressRequest: AddressRequest{
			FullName:   a.FullName,
			Phone:      a.Phone,
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			Region:     a.Region,
			PostalCode: a.PostalCode,
		},
	}
}

func (r AddressRequest) toEntity() *entity.Address {
	return &entity.Address{
		FullName:   r.FullName,
		Phone:      r.Phone,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		Region:     r.Region,
		PostalCode: r.PostalCode,
	}
}

func mapVariant(v *entity.Variant) VariantResponse {
	return VariantResponse{
		ID:            v.ID,
		ProductID:     v.ProductID,
		ProductName:   v.ProductName,
		SKU:           v.SKU,
		Size:          v.Size,
		Color:         v.Color,
		Price:         money(v.Price),
		StockQuantity: v.StockQuantity,
		Lifecycle:     string(v.Lifecycle),
	}
}

func (r CouponRequest) toEntity() *entity.Coupon {
	c := &entity.Coupon{
		Code:         r.Code,
		Type:         entity.CouponType(r.Type),
		Value:        r.Value,
		StartAt:      r.StartAt,
		EndAt:        r.EndAt,
		UsageLimit:   r.UsageLimit,
		PerUserLimit: r.PerUserLimit,
		Lifecycle:    entity.Lifecycle(r.Lifecycle),
	}
	if r.MinOrderTotal != nil {
		c.MinOrderTotal = decimal.NewNullDecimal(*r.MinOrderTotal)
	}
	return c
}

func mapCoupon(c *entity.Coupon) CouponResponse {
	resp := CouponResponse{
		ID:           c.ID,
		Code:         c.Code,
		Type:         string(c.Type),
		Value:        money(c.Value),
		StartAt:      c.StartAt,
		EndAt:        c.EndAt,
		UsageLimit:   c.UsageLimit,
		PerUserLimit: c.PerUserLimit,
		Lifecycle:    string(c.Lifecycle),
	}
	if c.MinOrderTotal.Valid {
		m := money(c.MinOrderTotal.Decimal)
		resp.MinOrderTotal = &m
	}
	return resp
}

func mapCouponView(v *app.CouponView) CouponResponse {
	resp := mapCoupon(&v.Coupon)
	used := v.Used
	resp.Used = &used
	return resp
}

func mapZone(z *entity.ShippingZone) ZoneResponse {
	return ZoneResponse{ID: z.ID, City: z.City, Fee: money(z.Fee), Label: z.Label}
}

func mapQuote(q shipping.Quote) QuoteResponse {
	resp := QuoteResponse{City: q.City, Fee: money(q.Fee), Label: q.Label}
	if q.ZoneID != 0 {
		id := q.ZoneID
		resp.ZoneID = &id
	}
	return resp
}

func mapCheckoutLog(e checkoutlog.Entry) CheckoutLogResponse {
	return CheckoutLogResponse{
		AttemptID:      e.AttemptID,
		CustomerID:     e.CustomerID,
		Status:         string(e.Status),
		Step:           e.Step,
		ErrorKind:      e.ErrorKind,
		Message:        e.Message,
		OrderReference: e.OrderReference,
		TraceID:        e.TraceID,
		CreatedAt:      timestamp(e.CreatedAt),
	}
}

func mapUser(u *entity.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: string(u.Role), Enabled: u.Enabled}
}

func mapProduct(p *entity.Product) ProductResponse {
	out := ProductResponse{ID: p.ID, Name: p.Name, Description: p.Description}
	for i := range p.Variants {
		out.Variants = append(out.Variants, mapVariant(&p.Variants[i]))
	}
	return out
}
