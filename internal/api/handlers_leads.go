package api

import (
	"net/http"
	"strconv"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/models"
	"loandesk/internal/service"

	"github.com/go-chi/chi/v5"
)

const maxPageSize = 500

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.LeadFilter{
		BranchID:        q.Get("branchId"),
		AssignedStaffID: q.Get("assignedStaffId"),
		Status:          models.LeadStatus(q.Get("status")),
		LeadSource:      q.Get("leadSource"),
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit"), 0, maxPageSize); err != nil {
		s.fail(w, r, apperrors.NewValidationError("limit: "+err.Error()))
		return
	}
	if filter.Offset, err = intParam(q.Get("offset"), 0, -1); err != nil {
		s.fail(w, r, apperrors.NewValidationError("offset: "+err.Error()))
		return
	}

	leads, err := s.deps.Leads.List(r.Context(), s.actor(r), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leads": leads, "count": len(leads)})
}

func (s *Server) searchLeads(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r.URL.Query().Get("size"), 0, 100)
	if err != nil {
		s.fail(w, r, apperrors.NewValidationError("size: "+err.Error()))
		return
	}
	leads, err := s.deps.Leads.Search(r.Context(), s.actor(r), r.URL.Query().Get("q"), size)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leads": leads, "count": len(leads)})
}

func (s *Server) getLead(w http.ResponseWriter, r *http.Request) {
	lead, err := s.deps.Leads.Get(r.Context(), s.actor(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) createLead(w http.ResponseWriter, r *http.Request) {
	var in service.LeadInput
	if err := decodeBody(r, leadSchema, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	lead, err := s.deps.Leads.CreateFor(r.Context(), s.actor(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) updateLead(w http.ResponseWriter, r *http.Request) {
	var in service.LeadInput
	if err := decodeBody(r, leadSchema, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	lead, err := s.deps.Leads.Update(r.Context(), s.actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type statusRequest struct {
	Status models.LeadStatus `json:"status"`
}

func (s *Server) updateLeadStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeBody(r, statusSchema, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	lead, err := s.deps.Leads.UpdateStatus(r.Context(), s.actor(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) assignLead(w http.ResponseWriter, r *http.Request) {
	var req models.LeadAssignment
	if err := decodeBody(r, assignSchema, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	lead, err := s.deps.Leads.Assign(r.Context(), s.actor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) deleteLead(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Leads.Delete(r.Context(), s.actor(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// intParam parses an optional non-negative integer. max < 0 means unbounded.
func intParam(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	if max >= 0 && n > max {
		return max, nil
	}
	return n, nil
}
