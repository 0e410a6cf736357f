// Package app holds the application services behind the HTTP handlers. They
// own transactions, authorization by ownership, idempotency and the events
// published after commit. Business rules live in the core packages.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jcmexdev/storefront/internal/pkg/metrics"
	"github.com/jcmexdev/storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/orderstatus"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const placeOrderOperation = "place_order"

type OrderService struct {
	store    ports.Store
	checkout *checkout.Orchestrator
	cache    ports.Cache
	events   ports.EventPublisher
	metrics  *metrics.ServerMetrics
	idemTTL  time.Duration
	now      func() time.Time
}

type OrderOption func(*OrderService)

// WithIdempotencyCache enables X-Idempotency-Key replay of PlaceOrder.
func WithIdempotencyCache(c ports.Cache, ttl time.Duration) OrderOption {
	return func(s *OrderService) {
		s.cache = c
		s.idemTTL = ttl
	}
}

func WithEvents(p ports.EventPublisher) OrderOption {
	return func(s *OrderService) { s.events = p }
}

func WithMetrics(m *metrics.ServerMetrics) OrderOption {
	return func(s *OrderService) { s.metrics = m }
}

func NewOrderService(store ports.Store, orch *checkout.Orchestrator, opts ...OrderOption) *OrderService {
	s := &OrderService{
		store:    store,
		checkout: orch,
		idemTTL:  24 * time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder checks out the customer's cart. When idempotencyKey is set and
// an earlier call with the same key succeeded, that order is returned
// instead of running checkout again.
func (s *OrderService) PlaceOrder(ctx context.Context, req checkout.Request, idempotencyKey string) (*entity.Order, error) {
	idemKey := ""
	if s.cache != nil && idempotencyKey != "" {
		idemKey = s.cache.GenerateKey(placeOrderOperation, fmt.Sprintf("%d:%s", req.CustomerID, idempotencyKey))
		if order, ok := s.replay(ctx, idemKey, req.CustomerID); ok {
			return order, nil
		}
	}

	order, err := s.checkout.PlaceOrder(ctx, req)
	if err != nil {
		s.metrics.ObserveCheckout(string(apperr.KindOf(err)))
		return nil, err
	}
	s.metrics.ObserveCheckout("ok")

	if idemKey != "" {
		if err := s.cache.Set(ctx, idemKey, strconv.FormatInt(order.ID, 10), s.idemTTL); err != nil {
			slog.WarnContext(ctx, "failed to store idempotency key", "key", idemKey, "error", err)
		}
	}

	s.publish(ctx, entity.OrderEvent{
		Type:       entity.EventOrderPlaced,
		OrderID:    order.ID,
		Reference:  order.Reference,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		Total:      order.Total.StringFixed(2),
		OccurredAt: s.now().UTC(),
	})
	return order, nil
}

func (s *OrderService) replay(ctx context.Context, key string, customerID int64) (*entity.Order, bool) {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "idempotency lookup failed", "key", key, "error", err)
		return nil, false
	}
	if cached == "" {
		return nil, false
	}
	id, err := strconv.ParseInt(cached, 10, 64)
	if err != nil {
		s.forget(ctx, key)
		return nil, false
	}
	order, err := s.store.GetOrder(ctx, id)
	if errIsNotFound(err) || (err == nil && order.CustomerID != customerID) {
		s.forget(ctx, key)
		return nil, false
	}
	if err != nil {
		slog.WarnContext(ctx, "idempotent replay lookup failed", "key", key, "order_id", id, "error", err)
		return nil, false
	}
	slog.InfoContext(ctx, "idempotent replay", "order_id", order.ID, "reference", order.Reference)
	return order, true
}

// forget drops a key that no longer points at a replayable order so the
// next call checks out normally and stores a fresh one.
func (s *OrderService) forget(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to drop idempotency key", "key", key, "error", err)
	}
}

// ParseStatus accepts any case.
func ParseStatus(raw string) entity.OrderStatus {
	return entity.OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

// UpdateStatus applies the state machine for actor and writes the change
// with a compare-and-set, so two concurrent writers cannot both move the
// order out of the same status.
func (s *OrderService) UpdateStatus(ctx context.Context, actor entity.Actor, orderID int64, to entity.OrderStatus) (*entity.Order, error) {
	var (
		order   *entity.Order
		from    entity.OrderStatus
		changed bool
	)
	err := s.store.InTx(ctx, func(q ports.Queries) error {
		var err error
		order, err = q.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		from = order.Status

		changed, err = orderstatus.Check(actor, order, to)
		if err != nil || !changed {
			return err
		}

		ok, err := q.CompareAndSetStatus(ctx, orderID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("order %d changed status concurrently", orderID)
		}
		order.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return order, nil
	}

	s.metrics.ObserveStatusChange(string(to))
	slog.InfoContext(ctx, "order status changed",
		"order_id", order.ID, "from", from, "to", to, "actor_id", actor.ID, "role", actor.Role)
	s.publish(ctx, entity.OrderEvent{
		Type:       entity.EventOrderStatusChanged,
		OrderID:    order.ID,
		Reference:  order.Reference,
		CustomerID: order.CustomerID,
		Status:     to,
		From:       from,
		Total:      order.Total.StringFixed(2),
		OccurredAt: s.now().UTC(),
	})
	return order, nil
}

// AssignEmployee sets the employee responsible for an order. The target
// user must have role EMPLOYEE.
func (s *OrderService) AssignEmployee(ctx context.Context, orderID, employeeID int64) (*entity.Order, error) {
	var order *entity.Order
	err := s.store.InTx(ctx, func(q ports.Queries) error {
		user, err := q.GetUser(ctx, employeeID)
		if err != nil {
			return err
		}
		if user.Role != entity.RoleEmployee {
			return apperr.Validation("user %d is not an employee", employeeID)
		}
		if err := q.SetOrderEmployee(ctx, orderID, employeeID); err != nil {
			return err
		}
		order, err = q.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "order assigned", "order_id", orderID, "employee_id", employeeID)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID int64) (*entity.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// GetForCustomer returns Forbidden when the order belongs to someone else.
func (s *OrderService) GetForCustomer(ctx context.Context, customerID, orderID int64) (*entity.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, apperr.Forbidden("order %d does not belong to you", orderID)
	}
	return order, nil
}

func (s *OrderService) GetForEmployee(ctx context.Context, employeeID, orderID int64) (*entity.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.AssignedTo(employeeID) {
		return nil, apperr.Forbidden("order %d is not assigned to you", orderID)
	}
	return order, nil
}

func (s *OrderService) ListForCustomer(ctx context.Context, customerID int64, page ports.Page) ([]entity.Order, error) {
	return s.store.ListOrdersByCustomer(ctx, customerID, page.Normalize())
}

func (s *OrderService) ListForEmployee(ctx context.Context, employeeID int64, page ports.Page) ([]entity.Order, error) {
	return s.store.ListOrdersByEmployee(ctx, employeeID, page.Normalize())
}

// ListForAdmin lists delivered orders, or the active ones when delivered is false.
func (s *OrderService) ListForAdmin(ctx context.Context, delivered bool, page ports.Page) ([]entity.Order, error) {
	statuses := entity.ActiveStatuses
	if delivered {
		statuses = []entity.OrderStatus{entity.StatusDelivered}
	}
	return s.store.ListOrdersByStatus(ctx, statuses, page.Normalize())
}

func (s *OrderService) publish(ctx context.Context, event entity.OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "order event not published",
			"type", event.Type, "order_id", event.OrderID, "error", err)
	}
}

// errIsNotFound is shared by the services that translate a missing row
// into a different business error.
func errIsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
