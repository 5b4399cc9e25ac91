package api

import (
	"net/http"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, loginSchema, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	resp, err := s.deps.Auth.Login(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	staff, err := s.deps.Auth.Me(r.Context(), s.actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

type permissionsResponse struct {
	Role        models.Role         `json:"role"`
	Permissions []models.Permission `json:"permissions"`
}

// myPermissions lists what the caller's own role may do.
func (s *Server) myPermissions(w http.ResponseWriter, r *http.Request) {
	actor := s.actor(r)
	writeJSON(w, http.StatusOK, permissionsResponse{
		Role:        actor.Role,
		Permissions: s.deps.Resolver.PermissionsForRole(actor.Role),
	})
}

func (s *Server) rolePermissions(w http.ResponseWriter, r *http.Request) {
	role := models.Role(chi.URLParam(r, "role"))
	if !role.Valid() {
		s.fail(w, r, apperrors.NewResourceNotFoundError("role", string(role)))
		return
	}
	writeJSON(w, http.StatusOK, permissionsResponse{
		Role:        role,
		Permissions: s.deps.Resolver.PermissionsForRole(role),
	})
}
