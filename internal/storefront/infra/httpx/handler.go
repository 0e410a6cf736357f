package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/storefront/internal/storefront/app"
	"github.com/jcmexdev/storefront/internal/storefront/core/checkoutlog"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

const maxBodyBytes = 1 << 20

type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the collaborators the handlers call. CheckoutLogs and DB may
// be nil.
type Services struct {
	Orders       *app.OrderService
	Carts        *app.CartService
	Addresses    *app.AddressService
	Coupons      *app.CouponService
	Shipping     *app.ShippingService
	Catalog      *app.CatalogService
	Users        *app.UserService
	CheckoutLogs checkoutlog.Repository
	DB           Pinger
}

// Handler handles incoming HTTP requests for the storefront.
type Handler struct {
	Services
}

func NewHandler(s Services) *Handler {
	return &Handler{Services: s}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// decode reads a JSON body into v and writes a 400 when it cannot.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, string(apperr.KindValidation), fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func page(r *http.Request) ports.Page {
	return ports.Page{Limit: queryInt(r, "limit"), Offset: queryInt(r, "offset")}.Normalize()
}

// actor is set by middlewares.Authenticate on every route that calls this.
func actor(r *http.Request) entity.Actor {
	a, _ := middlewares.ActorFrom(r.Context())
	return a
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", DB: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", DB: "ok"})
}
