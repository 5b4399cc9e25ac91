package api

import (
	"net/http"

	"loandesk/internal/service"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := s.deps.Staff.List(r.Context(), s.actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"staff": staff, "count": len(staff)})
}

func (s *Server) getStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := s.deps.Staff.Get(r.Context(), s.actor(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

func (s *Server) createStaff(w http.ResponseWriter, r *http.Request) {
	var in service.StaffInput
	if err := decodeBody(r, staffSchema, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	staff, err := s.deps.Staff.Create(r.Context(), s.actor(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, staff)
}

func (s *Server) updateStaff(w http.ResponseWriter, r *http.Request) {
	var in service.StaffInput
	if err := decodeBody(r, staffSchema, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	staff, err := s.deps.Staff.Update(r.Context(), s.actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

func (s *Server) deleteStaff(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Staff.Delete(r.Context(), s.actor(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
