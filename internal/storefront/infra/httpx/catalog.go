package httpx

import (
	"net/http"
	"strconv"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Catalog.CreateProduct(r.Context(), &entity.Product{Name: req.Name, Description: req.Description})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(p))
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.ListProducts(r.Context(), page(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = mapProduct(&products[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (h *Handler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req VariantRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.Catalog.CreateVariant(r.Context(), &entity.Variant{
		ProductID:     productID,
		SKU:           req.SKU,
		Size:          req.Size,
		Color:         req.Color,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapVariant(v))
}

func (h *Handler) GetVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	v, err := h.Catalog.GetVariant(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapVariant(v))
}

func (h *Handler) SetVariantLifecycle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req LifecycleRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.Catalog.SetLifecycle(r.Context(), id, entity.Lifecycle(req.Lifecycle))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapVariant(v))
}

func (h *Handler) RestockVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req RestockRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.Catalog.Restock(r.Context(), id, req.Quantity)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapVariant(v))
}

func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req ApplyCouponRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Coupons.Preview(r.Context(), actor(r).ID, req.Code, req.Subtotal)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CouponPreviewResponse{
		Code:     p.Code,
		Type:     string(p.Type),
		Subtotal: money(p.Subtotal),
		Discount: money(p.Discount),
		Total:    money(p.Total),
	})
}

func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.Coupons.Create(r.Context(), req.toEntity())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCoupon(c))
}

func (h *Handler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CouponRequest
	if !decode(w, r, &req) {
		return
	}
	c := req.toEntity()
	if c.Lifecycle == "" {
		c.Lifecycle = entity.LifecycleActive
	}
	updated, err := h.Coupons.Update(r.Context(), id, c)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCoupon(updated))
}

func (h *Handler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	v, err := h.Coupons.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCouponView(v))
}

func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	list, err := h.Coupons.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]CouponResponse, len(list))
	for i := range list {
		out[i] = mapCoupon(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Coupons.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShippingQuote resolves the fee for ?addressId=.
func (h *Handler) ShippingQuote(w http.ResponseWriter, r *http.Request) {
	addressID, err := strconv.ParseInt(r.URL.Query().Get("addressId"), 10, 64)
	if err != nil || addressID <= 0 {
		writeError(w, http.StatusBadRequest, string(apperr.KindValidation), "addressId is required")
		return
	}
	q, err := h.Shipping.Quote(r.Context(), actor(r).ID, addressID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapQuote(q))
}

func (h *Handler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.Shipping.ListZones(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]ZoneResponse, len(zones))
	for i := range zones {
		out[i] = mapZone(&zones[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var req ZoneRequest
	if !decode(w, r, &req) {
		return
	}
	z, err := h.Shipping.CreateZone(r.Context(), &entity.ShippingZone{City: req.City, Fee: req.Fee, Label: req.Label})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapZone(z))
}

func (h *Handler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ZoneRequest
	if !decode(w, r, &req) {
		return
	}
	z, err := h.Shipping.UpdateZone(r.Context(), id, &entity.ShippingZone{City: req.City, Fee: req.Fee, Label: req.Label})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapZone(z))
}

func (h *Handler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Shipping.DeleteZone(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
