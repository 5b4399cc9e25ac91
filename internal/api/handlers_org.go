package api

import (
	"net/http"

	"loandesk/internal/service"

	"github.com/go-chi/chi/v5"
)

// Branches

func (s *Server) listBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := s.deps.Branches.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"branches": branches, "count": len(branches)})
}

func (s *Server) getBranch(w http.ResponseWriter, r *http.Request) {
	branch, err := s.deps.Branches.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, branch)
}

func (s *Server) createBranch(w http.ResponseWriter, r *http.Request) {
	var in service.BranchInput
	if err := decodeBody(r, branchSchema, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	branch, err := s.deps.Branches.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, branch)
}

func (s *Server) updateBranch(w http.ResponseWriter, r *http.Request) {
	var in service.BranchInput
	if err := decodeBody(r, branchSchema, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	branch, err := s.deps.Branches.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, branch)
}

func (s *Server) deleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Branches.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Banks

func (s *Server) listBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.deps.Banks.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"banks": banks, "count": len(banks)})
}

func (s *Server) getBank(w http.ResponseWriter, r *http.Request) {
	bank, err := s.deps.Banks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bank)
}

func (s *Server) createBank(w http.ResponseWriter, r *http.Request) {
	var in service.BankInput
	if err := decodeBody(r, bankSchema, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	bank, err := s.deps.Banks.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bank)
}

func (s *Server) updateBank(w http.ResponseWriter, r *http.Request) {
	var in service.BankInput
	if err := decodeBody(r, bankSchema, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	bank, err := s.deps.Banks.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bank)
}

func (s *Server) deleteBank(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Banks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
