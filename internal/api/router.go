// Package api exposes the staff-facing JSON API and mounts the lead intake
// webhook.
package api

import (
	"context"
	"net/http"
	"time"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/common/logger"
	"loandesk/internal/models"
	"loandesk/internal/permissions"
	"loandesk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Me(ctx context.Context, actor models.Actor) (*models.Staff, error)
}

type LeadService interface {
	List(ctx context.Context, actor models.Actor, filter models.LeadFilter) ([]models.Lead, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Lead, error)
	CreateFor(ctx context.Context, actor models.Actor, in service.LeadInput) (*models.Lead, error)
	Update(ctx context.Context, actor models.Actor, id string, in service.LeadInput) (*models.Lead, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id string, status models.LeadStatus) (*models.Lead, error)
	Assign(ctx context.Context, actor models.Actor, id string, assignment models.LeadAssignment) (*models.Lead, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Search(ctx context.Context, actor models.Actor, text string, size int) ([]models.Lead, error)
}

type StaffService interface {
	List(ctx context.Context, actor models.Actor) ([]models.Staff, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Staff, error)
	Create(ctx context.Context, actor models.Actor, in service.StaffInput) (*models.Staff, error)
	Update(ctx context.Context, actor models.Actor, id string, in service.StaffInput) (*models.Staff, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

type BranchService interface {
	List(ctx context.Context) ([]models.Branch, error)
	Get(ctx context.Context, id string) (*models.Branch, error)
	Create(ctx context.Context, in service.BranchInput) (*models.Branch, error)
	Update(ctx context.Context, id string, in service.BranchInput) (*models.Branch, error)
	Delete(ctx context.Context, id string) error
}

type BankService interface {
	List(ctx context.Context) ([]models.Bank, error)
	Get(ctx context.Context, id string) (*models.Bank, error)
	Create(ctx context.Context, in service.BankInput) (*models.Bank, error)
	Update(ctx context.Context, id string, in service.BankInput) (*models.Bank, error)
	Delete(ctx context.Context, id string) error
}

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Webhook mounts provider endpoints under /webhooks/<provider>.
type Webhook interface {
	Routes(r chi.Router)
}

type Dependencies struct {
	Logger         logger.Logger
	Tokens         TokenVerifier
	Resolver       *permissions.Resolver
	Auth           AuthService
	Leads          LeadService
	Staff          StaffService
	Branches       BranchService
	Banks          BankService
	FacebookHook   Webhook
	Readiness      map[string]Pinger
	RequestTimeout time.Duration
	Version        string
}

type Server struct {
	deps Dependencies
	errs *apperrors.ErrorHandler
	log  logger.Logger
}

// NewRouter builds the complete HTTP handler.
func NewRouter(deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if deps.Resolver == nil {
		deps.Resolver = permissions.NewResolver()
	}
	s := &Server{deps: deps, errs: apperrors.NewErrorHandler(log), log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(instrument)
	r.Use(middleware.Recoverer)
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle("/metrics", promhttp.Handler())

	if deps.FacebookHook != nil {
		r.Route("/webhooks/facebook", deps.FacebookHook.Routes)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(deps.Tokens, s.errs))

			r.Get("/auth/me", s.me)
			r.Get("/permissions", s.myPermissions)
			r.With(s.require(permissions.SettingsView)).Get("/roles/{role}/permissions", s.rolePermissions)

			r.Route("/leads", func(r chi.Router) {
				r.With(s.require(permissions.LeadsView)).Get("/", s.listLeads)
				r.With(s.require(permissions.LeadsView)).Get("/search", s.searchLeads)
				r.With(s.require(permissions.LeadsCreate)).Post("/", s.createLead)
				r.Route("/{id}", func(r chi.Router) {
					r.With(s.require(permissions.LeadsView)).Get("/", s.getLead)
					r.With(s.require(permissions.LeadsEdit)).Put("/", s.updateLead)
					r.With(s.require(permissions.LeadsEdit)).Patch("/status", s.updateLeadStatus)
					r.With(s.require(permissions.LeadsAssign)).Patch("/assign", s.assignLead)
					r.With(s.require(permissions.LeadsDelete)).Delete("/", s.deleteLead)
				})
			})

			r.Route("/staff", func(r chi.Router) {
				r.With(s.require(permissions.StaffView)).Get("/", s.listStaff)
				r.With(s.require(permissions.StaffCreate)).Post("/", s.createStaff)
				r.With(s.require(permissions.StaffView)).Get("/{id}", s.getStaff)
				r.With(s.require(permissions.StaffEdit)).Put("/{id}", s.updateStaff)
				r.With(s.require(permissions.StaffDelete)).Delete("/{id}", s.deleteStaff)
			})

			r.Route("/branches", func(r chi.Router) {
				r.With(s.require(permissions.BranchesView)).Get("/", s.listBranches)
				r.With(s.require(permissions.BranchesCreate)).Post("/", s.createBranch)
				r.With(s.require(permissions.BranchesView)).Get("/{id}", s.getBranch)
				r.With(s.require(permissions.BranchesEdit)).Put("/{id}", s.updateBranch)
				r.With(s.require(permissions.BranchesDelete)).Delete("/{id}", s.deleteBranch)
			})

			r.Route("/banks", func(r chi.Router) {
				r.With(s.require(permissions.SettingsView)).Get("/", s.listBanks)
				r.With(s.require(permissions.SettingsEdit)).Post("/", s.createBank)
				r.With(s.require(permissions.SettingsView)).Get("/{id}", s.getBank)
				r.With(s.require(permissions.SettingsEdit)).Put("/{id}", s.updateBank)
				r.With(s.require(permissions.SettingsEdit)).Delete("/{id}", s.deleteBank)
			})
		})
	})

	return r
}

func (s *Server) require(permissionID string) func(http.Handler) http.Handler {
	return requirePermission(s.deps.Resolver, s.errs, permissionID)
}

// actor is only called behind authenticate.
func (s *Server) actor(r *http.Request) models.Actor {
	actor, _ := ActorFromContext(r.Context())
	return actor
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.errs.WriteError(w, r, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	apperrors.WriteJSON(w, status, v)
}
