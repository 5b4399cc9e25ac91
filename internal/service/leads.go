package service

import (
	"context"
	"strings"
	"time"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/common/logger"
	"loandesk/internal/common/validation"
	"loandesk/internal/models"
	"loandesk/internal/search"
	"loandesk/internal/store"

	"github.com/google/uuid"
)

type LeadCache interface {
	Get(ctx context.Context, id string) (*models.Lead, bool, error)
	Set(ctx context.Context, lead *models.Lead) error
	Invalidate(ctx context.Context, id string) error
}

type LeadIndex interface {
	Index(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q search.Query) ([]models.Lead, error)
}

// LeadInput carries the staff-editable lead fields.
type LeadInput struct {
	LeadName       string   `json:"leadName"`
	ClientName     string   `json:"clientName"`
	ContactNumber  string   `json:"contactNumber"`
	Email          string   `json:"email"`
	Address        string   `json:"address"`
	LoanType       string   `json:"loanType"`
	LeadType       string   `json:"leadType"`
	LeadSource     string   `json:"leadSource"`
	BranchID       string   `json:"branchId"`
	LoanAmount     *float64 `json:"loanAmount"`
	ProcessingCost *float64 `json:"processingCost"`
	CreditScore    *int     `json:"creditScore"`
	AdditionalInfo string   `json:"additionalInfo"`
	Notes          string   `json:"notes"`
}

// LeadService owns lead persistence. Cache and index are optional and only
// ever best-effort; the database is the source of truth.
type LeadService struct {
	repo   store.LeadRepository
	cache  LeadCache
	index  LeadIndex
	logger logger.Logger
}

func NewLeadService(repo store.LeadRepository, cache LeadCache, index LeadIndex, log logger.Logger) *LeadService {
	return &LeadService{repo: repo, cache: cache, index: index, logger: log}
}

// Create persists a fully built lead. Missing id, status and timestamps are
// filled in. It is the storage collaborator of the intake pipeline.
func (s *LeadService) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	if lead == nil {
		return nil, apperrors.NewValidationError("lead is required")
	}
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.ApplicationStatus == "" {
		lead.ApplicationStatus = models.LeadStatusLogin
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	if lead.UpdatedAt.IsZero() {
		lead.UpdatedAt = lead.CreatedAt
	}
	if err := validateLead(lead); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		mapped := fromStore("lead", lead.ID, "insert lead", err)
		if apperrors.CodeOf(mapped) == apperrors.ErrCodeDatabaseQueryFailed {
			return nil, apperrors.NewDatabaseInsertFailedError(err)
		}
		return nil, mapped
	}

	s.afterWrite(ctx, lead)
	return lead, nil
}

// CreateFor creates a lead on behalf of a staff member. Branch-scoped actors
// always create into their own branch.
func (s *LeadService) CreateFor(ctx context.Context, actor models.Actor, in LeadInput) (*models.Lead, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	lead := &models.Lead{ApplicationStatus: models.LeadStatusLogin}
	applyInput(lead, in)
	if !actor.SeesAllBranches() {
		lead.BranchID = models.StringPtr(actor.BranchID)
	}
	if lead.LeadSource == "" {
		lead.LeadSource = "Walk-in"
	}
	if lead.LeadName == "" {
		lead.LeadName = lead.ClientName
	}
	return s.Create(ctx, lead)
}

// Get returns a lead visible to actor; leads in other branches read as not found.
func (s *LeadService) Get(ctx context.Context, actor models.Actor, id string) (*models.Lead, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(actor, lead) {
		return nil, apperrors.NewResourceNotFoundError("lead", id)
	}
	return lead, nil
}

func (s *LeadService) List(ctx context.Context, actor models.Actor, filter models.LeadFilter) ([]models.Lead, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown status " + string(filter.Status))
	}
	if !actor.SeesAllBranches() {
		filter.BranchID = actor.BranchID
	}
	leads, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fromStore("lead", "", "list leads", err)
	}
	return leads, nil
}

func (s *LeadService) Update(ctx context.Context, actor models.Actor, id string, in LeadInput) (*models.Lead, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	lead, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyInput(lead, in)
	if !actor.SeesAllBranches() {
		lead.BranchID = models.StringPtr(actor.BranchID)
	}
	if err := validateLead(lead); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, fromStore("lead", id, "update lead", err)
	}
	s.afterWrite(ctx, lead)
	return lead, nil
}

func (s *LeadService) UpdateStatus(ctx context.Context, actor models.Actor, id string, status models.LeadStatus) (*models.Lead, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown status " + string(status))
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fromStore("lead", id, "update lead status", err)
	}
	return s.reload(ctx, id)
}

func (s *LeadService) Assign(ctx context.Context, actor models.Actor, id string, assignment models.LeadAssignment) (*models.Lead, error) {
	if assignment.AssignedStaffID == nil && assignment.BankID == nil {
		return nil, apperrors.NewValidationError("assignedStaffId or bankId is required")
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.repo.Assign(ctx, id, assignment); err != nil {
		return nil, fromStore("lead", id, "assign lead", err)
	}
	return s.reload(ctx, id)
}

func (s *LeadService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fromStore("lead", id, "delete lead", err)
	}
	s.invalidate(ctx, id)
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			s.logger.Warn("lead index delete failed", map[string]interface{}{"leadId": id, "error": err})
		}
	}
	return nil
}

// Search runs a full-text query, scoped to the actor's branch when needed.
func (s *LeadService) Search(ctx context.Context, actor models.Actor, text string, size int) ([]models.Lead, error) {
	if s.index == nil {
		return nil, apperrors.NewFeatureDisabledError("lead search")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("query parameter q is required")
	}
	q := search.Query{Text: text, Size: size}
	if !actor.SeesAllBranches() {
		q.BranchID = actor.BranchID
	}
	leads, err := s.index.Search(ctx, q)
	if err != nil {
		return nil, apperrors.NewSearchFailedError(err)
	}
	return leads, nil
}

func (s *LeadService) load(ctx context.Context, id string) (*models.Lead, error) {
	if s.cache != nil {
		lead, found, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("lead cache read failed", map[string]interface{}{"leadId": id, "error": err})
		} else if found {
			return lead, nil
		}
	}

	lead, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fromStore("lead", id, "get lead", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, lead); err != nil {
			s.logger.Warn("lead cache write failed", map[string]interface{}{"leadId": id, "error": err})
		}
	}
	return lead, nil
}

func (s *LeadService) reload(ctx context.Context, id string) (*models.Lead, error) {
	s.invalidate(ctx, id)
	lead, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fromStore("lead", id, "get lead", err)
	}
	s.afterWrite(ctx, lead)
	return lead, nil
}

func (s *LeadService) afterWrite(ctx context.Context, lead *models.Lead) {
	s.invalidate(ctx, lead.ID)
	if s.index != nil {
		if err := s.index.Index(ctx, lead); err != nil {
			s.logger.Warn("lead indexing failed", map[string]interface{}{"leadId": lead.ID, "error": err})
		}
	}
}

func (s *LeadService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("lead cache invalidation failed", map[string]interface{}{"leadId": id, "error": err})
	}
}

func visible(actor models.Actor, lead *models.Lead) bool {
	return actor.SeesAllBranches() || models.Deref(lead.BranchID) == actor.BranchID
}

func applyInput(lead *models.Lead, in LeadInput) {
	lead.LeadName = strings.TrimSpace(in.LeadName)
	lead.ClientName = strings.TrimSpace(in.ClientName)
	lead.ContactNumber = strings.TrimSpace(in.ContactNumber)
	lead.Email = strings.TrimSpace(in.Email)
	lead.Address = in.Address
	lead.LoanType = strings.TrimSpace(in.LoanType)
	lead.LeadType = in.LeadType
	if in.LeadSource != "" {
		lead.LeadSource = in.LeadSource
	}
	lead.BranchID = models.StringPtr(in.BranchID)
	lead.LoanAmount = in.LoanAmount
	lead.ProcessingCost = in.ProcessingCost
	lead.CreditScore = in.CreditScore
	lead.AdditionalInfo = in.AdditionalInfo
	lead.Notes = in.Notes
}

func validateLead(lead *models.Lead) error {
	var problems []string
	if lead.ClientName == "" {
		problems = append(problems, "clientName is required")
	}
	if lead.ContactNumber == "" {
		problems = append(problems, "contactNumber is required")
	}
	if lead.LoanType == "" {
		problems = append(problems, "loanType is required")
	}
	if !lead.ApplicationStatus.Valid() {
		problems = append(problems, "unknown status "+string(lead.ApplicationStatus))
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}

// validateInput applies the format checks staff-entered data must pass.
func validateInput(in LeadInput) error {
	var problems []string
	if email := strings.TrimSpace(in.Email); email != "" && !validation.ValidateEmail(email) {
		problems = append(problems, "email is not a valid address")
	}
	if phone := strings.TrimSpace(in.ContactNumber); phone != "" && !validation.ValidatePhone(phone) {
		problems = append(problems, "contactNumber is not a valid phone number")
	}
	if in.CreditScore != nil && (*in.CreditScore < 300 || *in.CreditScore > 900) {
		problems = append(problems, "creditScore must be between 300 and 900")
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}
