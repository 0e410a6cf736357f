package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jcmexdev/storefront/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront/internal/storefront/app"
	"github.com/jcmexdev/storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
)

// PlaceOrder checks out the caller's cart.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AddressID <= 0 {
		writeError(w, http.StatusBadRequest, string(apperr.KindValidation), "addressId is required")
		return
	}

	customer := actor(r)
	slog.InfoContext(r.Context(), "placing order",
		"request_id", interceptors.RequestIDFromContext(r.Context()), "customer_id", customer.ID)

	order, err := h.Orders.PlaceOrder(r.Context(), checkout.Request{
		CustomerID: customer.ID,
		AddressID:  req.AddressID,
		CouponCode: req.CouponCode,
	}, interceptors.IdempotencyKeyFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrderToResponse(order))
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListForCustomer(r.Context(), actor(r).ID, page(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(orders))
}

func (h *Handler) MyOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.Orders.GetForCustomer(r.Context(), actor(r).ID, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// AdminOrders lists active orders, or delivered ones with ?delivered=true.
func (h *Handler) AdminOrders(w http.ResponseWriter, r *http.Request) {
	delivered, _ := strconv.ParseBool(r.URL.Query().Get("delivered"))
	orders, err := h.Orders.ListForAdmin(r.Context(), delivered, page(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(orders))
}

func (h *Handler) AdminOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// UpdateOrderStatus serves both the admin and the employee route. The state
// machine decides what the caller's role allows.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Orders.UpdateStatus(r.Context(), actor(r), id, app.ParseStatus(req.Status))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func (h *Handler) AssignEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req AssignEmployeeRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Orders.AssignEmployee(r.Context(), id, req.EmployeeID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func (h *Handler) EmployeeOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListForEmployee(r.Context(), actor(r).ID, page(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(orders))
}

func (h *Handler) EmployeeOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.Orders.GetForEmployee(r.Context(), actor(r).ID, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ListCheckoutLogs returns the newest checkout attempts of ?customerId=.
func (h *Handler) ListCheckoutLogs(w http.ResponseWriter, r *http.Request) {
	if h.CheckoutLogs == nil {
		writeJSON(w, http.StatusOK, []CheckoutLogResponse{})
		return
	}
	customerID, err := strconv.ParseInt(r.URL.Query().Get("customerId"), 10, 64)
	if err != nil || customerID <= 0 {
		writeError(w, http.StatusBadRequest, string(apperr.KindValidation), "customerId is required")
		return
	}
	entries, err := h.CheckoutLogs.ListByCustomer(r.Context(), customerID, page(r).Limit)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]CheckoutLogResponse, len(entries))
	for i, e := range entries {
		out[i] = mapCheckoutLog(e)
	}
	writeJSON(w, http.StatusOK, out)
}
