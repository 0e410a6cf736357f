package httpx

import (
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Users.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapUser(u))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		User:        mapUser(s.User),
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), actor(r).ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(u))
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Users.CreateEmployee(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapUser(u))
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListEmployees(r.Context(), page(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = mapUser(&users[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DisableUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Users.Disable(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) EnableUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Users.Enable(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req RoleRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Users.ChangeRole(r.Context(), id, entity.Role(req.Role))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(u))
}
