package middlewares

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/jcmexdev/storefront/internal/pkg/interceptors/constants"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// Authenticator resolves a bearer token to an actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (entity.Actor, error)
}

// Authenticate rejects requests without a valid bearer token and stores
// the resolved actor in the context.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				deny(w, http.StatusUnauthorized, apperr.KindUnauthorized, "missing bearer token")
				return
			}
			actor, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindUnauthorized {
					deny(w, http.StatusUnauthorized, apperr.KindUnauthorized, apperr.MessageOf(err))
					return
				}
				slog.ErrorContext(r.Context(), "authentication failed", "error", err)
				deny(w, http.StatusInternalServerError, apperr.KindInternal, "internal error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole lets the request through only for the given roles. It must run
// after Authenticate.
func RequireRole(roles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok || !slices.Contains(roles, actor.Role) {
				deny(w, http.StatusForbidden, apperr.KindForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithActor(ctx context.Context, a entity.Actor) context.Context {
	return context.WithValue(ctx, constants.ContextKeyActor, a)
}

func ActorFrom(ctx context.Context) (entity.Actor, bool) {
	a, ok := ctx.Value(constants.ContextKeyActor).(entity.Actor)
	return a, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(constants.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func deny(w http.ResponseWriter, status int, kind apperr.Kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": string(kind), "message": msg})
}
