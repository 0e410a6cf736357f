package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// Repositories return apperr.ErrNotFound when a lookup by key misses and
// apperr.ErrConflict when a uniqueness invariant is violated.

type UserRepository interface {
	CreateUser(ctx context.Context, u *entity.User) error
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	ListUsersByRole(ctx context.Context, role entity.Role, page Page) ([]entity.User, error)
	// SetUserEnabled bumps token_version when disabling so issued tokens
	// stop authenticating.
	SetUserEnabled(ctx context.Context, id int64, enabled bool) error
	// SetUserRole always bumps token_version.
	SetUserRole(ctx context.Context, id int64, role entity.Role) error
}

type CatalogRepository interface {
	CreateProduct(ctx context.Context, p *entity.Product) error
	CreateVariant(ctx context.Context, v *entity.Variant) error
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	ListProducts(ctx context.Context, page Page) ([]entity.Product, error)
	// ListVariantsByProduct returns variants in ascending id order.
	ListVariantsByProduct(ctx context.Context, productID int64) ([]entity.Variant, error)
	GetVariant(ctx context.Context, id int64) (*entity.Variant, error)
	SetVariantLifecycle(ctx context.Context, id int64, l entity.Lifecycle) error
}

// StockRepository exposes stock mutations only as single conditional
// statements. There is no read-then-write pair.
type StockRepository interface {
	// DecrementStockIfAvailable subtracts quantity when at least quantity
	// units remain and reports whether it did.
	DecrementStockIfAvailable(ctx context.Context, variantID int64, quantity int) (bool, error)
	IncrementStock(ctx context.Context, variantID int64, quantity int) error
}

type CartRepository interface {
	// GetOrCreateCart returns the customer's cart with items ordered by
	// ascending variant id.
	GetOrCreateCart(ctx context.Context, customerID int64) (*entity.Cart, error)
	// LockCart serialises checkouts of one customer's cart until the
	// enclosing transaction ends. A missing cart is not an error.
	LockCart(ctx context.Context, customerID int64) error
	AddCartItem(ctx context.Context, cartID, variantID int64, quantity int) error
	SetCartItemQuantity(ctx context.Context, cartID, variantID int64, quantity int) error
	RemoveCartItem(ctx context.Context, cartID, variantID int64) error
	ClearCart(ctx context.Context, cartID int64) error
}

type AddressRepository interface {
	CreateAddress(ctx context.Context, a *entity.Address) error
	GetAddress(ctx context.Context, id int64) (*entity.Address, error)
	ListAddresses(ctx context.Context, customerID int64) ([]entity.Address, error)
	DeleteAddress(ctx context.Context, id int64) error
}

type CouponRepository interface {
	CreateCoupon(ctx context.Context, c *entity.Coupon) error
	UpdateCoupon(ctx context.Context, c *entity.Coupon) error
	GetCoupon(ctx context.Context, id int64) (*entity.Coupon, error)
	ListCoupons(ctx context.Context) ([]entity.Coupon, error)
	// FindCouponByCode matches case-insensitively regardless of lifecycle.
	FindCouponByCode(ctx context.Context, code string) (*entity.Coupon, error)
	// LockCoupon serialises usage-cap checks for one coupon until the
	// enclosing transaction ends.
	LockCoupon(ctx context.Context, id int64) error
	CountCouponUsage(ctx context.Context, couponID int64) (int, error)
	CountCouponUsageByCustomer(ctx context.Context, couponID, customerID int64) (int, error)
	RecordCouponUsage(ctx context.Context, u *entity.CouponUsage) error
}

type ShippingRepository interface {
	// FindZoneByCity matches case-insensitively.
	FindZoneByCity(ctx context.Context, city string) (*entity.ShippingZone, error)
	CreateZone(ctx context.Context, z *entity.ShippingZone) error
	UpdateZone(ctx context.Context, z *entity.ShippingZone) error
	GetZone(ctx context.Context, id int64) (*entity.ShippingZone, error)
	ListZones(ctx context.Context) ([]entity.ShippingZone, error)
	DeleteZone(ctx context.Context, id int64) error
}

type OrderRepository interface {
	// CreateOrder inserts the header and its item snapshots and sets o.ID.
	CreateOrder(ctx context.Context, o *entity.Order) error
	GetOrder(ctx context.Context, id int64) (*entity.Order, error)
	GetOrderByReference(ctx context.Context, ref string) (*entity.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64, page Page) ([]entity.Order, error)
	ListOrdersByEmployee(ctx context.Context, employeeID int64, page Page) ([]entity.Order, error)
	ListOrdersByStatus(ctx context.Context, statuses []entity.OrderStatus, page Page) ([]entity.Order, error)
	// CompareAndSetStatus moves the order from one status to another and
	// reports false when the current status no longer equals from.
	CompareAndSetStatus(ctx context.Context, id int64, from, to entity.OrderStatus) (bool, error)
	SetOrderEmployee(ctx context.Context, id, employeeID int64) error
}

// Queries is everything a unit of work can read or write.
type Queries interface {
	UserRepository
	CatalogRepository
	StockRepository
	CartRepository
	AddressRepository
	CouponRepository
	ShippingRepository
	OrderRepository
}

// Store runs Queries either directly or inside one transaction.
type Store interface {
	Queries
	// InTx commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
	Close() error
}

type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
