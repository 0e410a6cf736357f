package httpx

import (
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Carts.Get(r.Context(), actor(r).ID)
	h.respondCart(w, r, cart, err)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if !decode(w, r, &req) {
		return
	}
	if req.VariantID <= 0 {
		writeError(w, http.StatusBadRequest, string(apperr.KindValidation), "variantId is required")
		return
	}
	cart, err := h.Carts.Add(r.Context(), actor(r).ID, req.VariantID, req.Quantity)
	h.respondCart(w, r, cart, err)
}

// UpdateCartItem sets the quantity of a line; zero or less removes it.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	variantID, ok := pathID(w, r, "variantId")
	if !ok {
		return
	}
	var req CartQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	cart, err := h.Carts.SetQuantity(r.Context(), actor(r).ID, variantID, req.Quantity)
	h.respondCart(w, r, cart, err)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	variantID, ok := pathID(w, r, "variantId")
	if !ok {
		return
	}
	cart, err := h.Carts.Remove(r.Context(), actor(r).ID, variantID)
	h.respondCart(w, r, cart, err)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Carts.Clear(r.Context(), actor(r).ID)
	h.respondCart(w, r, cart, err)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, cart *entity.Cart, err error) {
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.Addresses.Create(r.Context(), actor(r).ID, req.toEntity())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapAddress(a))
}

func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	list, err := h.Addresses.List(r.Context(), actor(r).ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]AddressResponse, len(list))
	for i := range list {
		out[i] = mapAddress(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.Addresses.Get(r.Context(), actor(r).ID, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAddress(a))
}

func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Addresses.Delete(r.Context(), actor(r).ID, id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
