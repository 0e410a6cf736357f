// Package orderstatus decides which order status changes an actor may make.
//
//	NEW -> PROCESSING -> SHIPPED -> DELIVERED
//	NEW -> SHIPPED, PROCESSING -> DELIVERED, SHIPPED -> FAILED_PICKUP
//
// DELIVERED and FAILED_PICKUP are terminal. Asking for the current status is
// always a successful no-op.
package orderstatus

import (
	"slices"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

var adminEdges = map[entity.OrderStatus][]entity.OrderStatus{
	entity.StatusNew:        {entity.StatusProcessing, entity.StatusShipped},
	entity.StatusProcessing: {entity.StatusShipped, entity.StatusDelivered},
	entity.StatusShipped:    {entity.StatusDelivered, entity.StatusFailedPickup},
}

var employeeEdges = map[entity.OrderStatus][]entity.OrderStatus{
	entity.StatusProcessing: {entity.StatusShipped},
	entity.StatusShipped:    {entity.StatusDelivered},
}

// Allowed reports whether from -> to is an edge of the machine.
func Allowed(from, to entity.OrderStatus) bool {
	return slices.Contains(adminEdges[from], to)
}

// Check validates that actor may move order to status to. changed is false
// for a self-transition, which callers treat as success without writing.
func Check(actor entity.Actor, order *entity.Order, to entity.OrderStatus) (changed bool, err error) {
	if !to.Valid() {
		return false, apperr.New(apperr.KindInvalidTransition, "unknown order status %q", to)
	}

	var edges map[entity.OrderStatus][]entity.OrderStatus
	switch actor.Role {
	case entity.RoleAdmin:
		edges = adminEdges
	case entity.RoleEmployee:
		if !order.AssignedTo(actor.ID) {
			return false, apperr.Forbidden("order %d is not assigned to you", order.ID)
		}
		edges = employeeEdges
	default:
		return false, apperr.Forbidden("role %s cannot change order status", actor.Role)
	}

	from := order.Status
	if from == to {
		return false, nil
	}
	if !slices.Contains(edges[from], to) {
		return false, apperr.New(apperr.KindInvalidTransition, "cannot change order status from %s to %s", from, to)
	}
	return true, nil
}
