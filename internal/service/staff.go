package service

import (
	"context"
	"strings"
	"time"

	"loandesk/internal/common/auth"
	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/common/logger"
	"loandesk/internal/common/validation"
	"loandesk/internal/models"
	"loandesk/internal/permissions"
	"loandesk/internal/store"

	"github.com/google/uuid"
)

// StaffInput creates or updates a staff member. On update an empty Password
// keeps the current one and a nil Active keeps the current flag.
type StaffInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Role     models.Role `json:"role"`
	BranchID string      `json:"branchId"`
	Password string      `json:"password"`
	Active   *bool       `json:"active"`
}

type StaffService struct {
	repo     store.StaffRepository
	resolver *permissions.Resolver
	logger   logger.Logger
}

// NewStaffService uses the built-in role table when resolver is nil.
func NewStaffService(repo store.StaffRepository, resolver *permissions.Resolver, log logger.Logger) *StaffService {
	if resolver == nil {
		resolver = permissions.NewResolver()
	}
	return &StaffService{repo: repo, resolver: resolver, logger: log}
}

func (s *StaffService) List(ctx context.Context, actor models.Actor) ([]models.Staff, error) {
	branchID := ""
	if !actor.SeesAllBranches() {
		branchID = actor.BranchID
	}
	staff, err := s.repo.List(ctx, branchID)
	if err != nil {
		return nil, fromStore("staff", "", "list staff", err)
	}
	return staff, nil
}

func (s *StaffService) Get(ctx context.Context, actor models.Actor, id string) (*models.Staff, error) {
	staff, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fromStore("staff", id, "get staff", err)
	}
	if !actor.SeesAllBranches() && models.Deref(staff.BranchID) != actor.BranchID && staff.ID != actor.StaffID {
		return nil, apperrors.NewResourceNotFoundError("staff", id)
	}
	return staff, nil
}

func (s *StaffService) Create(ctx context.Context, actor models.Actor, in StaffInput) (*models.Staff, error) {
	if err := s.checkInput(actor, in, true); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	now := time.Now().UTC()
	staff := &models.Staff{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         in.Role,
		BranchID:     models.StringPtr(in.BranchID),
		PasswordHash: hash,
		Active:       in.Active == nil || *in.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !actor.SeesAllBranches() {
		staff.BranchID = models.StringPtr(actor.BranchID)
	}

	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, fromStore("staff", staff.Email, "insert staff", err)
	}

	s.logger.Info("staff member created", map[string]interface{}{
		"staffId":   staff.ID,
		"role":      string(staff.Role),
		"createdBy": actor.StaffID,
	})
	return staff, nil
}

func (s *StaffService) Update(ctx context.Context, actor models.Actor, id string, in StaffInput) (*models.Staff, error) {
	staff, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.canAssign(actor, staff.Role) {
		return nil, apperrors.NewPermissionDeniedError("staff member holds access beyond the caller's own")
	}
	if staff.ID == actor.StaffID && in.Role != staff.Role {
		return nil, apperrors.NewPermissionDeniedError("staff members cannot change their own role")
	}
	if err := s.checkInput(actor, in, false); err != nil {
		return nil, err
	}

	staff.Name = strings.TrimSpace(in.Name)
	staff.Email = normalizeEmail(in.Email)
	staff.Phone = strings.TrimSpace(in.Phone)
	staff.Role = in.Role
	if actor.SeesAllBranches() {
		staff.BranchID = models.StringPtr(in.BranchID)
	}
	if in.Active != nil {
		staff.Active = *in.Active
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		staff.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, fromStore("staff", id, "update staff", err)
	}
	return staff, nil
}

func (s *StaffService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if id == actor.StaffID {
		return apperrors.NewValidationError("staff members cannot delete themselves")
	}
	staff, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !s.canAssign(actor, staff.Role) {
		return apperrors.NewPermissionDeniedError("staff member holds access beyond the caller's own")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fromStore("staff", id, "delete staff", err)
	}
	return nil
}

// checkInput validates fields and stops callers from granting a role wider
// than their own.
func (s *StaffService) checkInput(actor models.Actor, in StaffInput, creating bool) error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !validation.ValidateEmail(strings.TrimSpace(in.Email)) {
		problems = append(problems, "email is not a valid address")
	}
	if !in.Role.Valid() {
		problems = append(problems, "unknown role "+string(in.Role))
	}
	if creating && in.Password == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError(strings.Join(problems, "; "))
	}
	if !s.canAssign(actor, in.Role) {
		return apperrors.NewPermissionDeniedError("role " + string(in.Role) + " exceeds the caller's own permissions")
	}
	return nil
}

// canAssign reports whether every permission held by role is also held by
// actor. Branch-scoped actors never hand out a role that sees every branch.
func (s *StaffService) canAssign(actor models.Actor, role models.Role) bool {
	if s.resolver.Unconditional(actor.Role) {
		return true
	}
	if s.resolver.Unconditional(role) {
		return false
	}
	if (models.Actor{Role: role}).SeesAllBranches() && !actor.SeesAllBranches() {
		return false
	}
	for _, p := range s.resolver.PermissionsForRole(role) {
		if !s.resolver.HasPermission(actor, p.ID) {
			return false
		}
	}
	return true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
