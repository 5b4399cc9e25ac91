package service

import (
	"context"
	"errors"
	"time"

	"loandesk/internal/common/auth"
	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/common/logger"
	"loandesk/internal/models"
	"loandesk/internal/store"

	"github.com/google/uuid"
)

type TokenIssuer interface {
	Issue(actor models.Actor) (string, time.Time, error)
}

type AuthService struct {
	staff  store.StaffRepository
	tokens TokenIssuer
	logger logger.Logger
}

func NewAuthService(staff store.StaffRepository, tokens TokenIssuer, log logger.Logger) *AuthService {
	return &AuthService{staff: staff, tokens: tokens, logger: log}
}

// Login checks credentials and issues a session token. Unknown emails,
// wrong passwords and inactive accounts are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	staff, err := s.staff.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewInvalidCredentialsError()
	}
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("get staff by email", err)
	}
	if !staff.Active || !auth.CheckPassword(staff.PasswordHash, req.Password) {
		s.logger.Warn("login rejected", map[string]interface{}{"staffId": staff.ID, "active": staff.Active})
		return nil, apperrors.NewInvalidCredentialsError()
	}

	token, expiresAt, err := s.tokens.Issue(staff.Actor())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("staff logged in", map[string]interface{}{"staffId": staff.ID, "role": string(staff.Role)})
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, Staff: staff}, nil
}

// Me returns the staff record behind an authenticated actor.
func (s *AuthService) Me(ctx context.Context, actor models.Actor) (*models.Staff, error) {
	staff, err := s.staff.Get(ctx, actor.StaffID)
	if err != nil {
		return nil, fromStore("staff", actor.StaffID, "get staff", err)
	}
	return staff, nil
}

// EnsureOwner creates the first owner account when the staff table is empty.
// It reports whether an account was created.
func (s *AuthService) EnsureOwner(ctx context.Context, name, email, password, branchID string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.staff.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	if name == "" {
		name = "Owner"
	}
	now := time.Now().UTC()
	owner := &models.Staff{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        normalizeEmail(email),
		Role:         models.RoleOwner,
		BranchID:     models.StringPtr(branchID),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.staff.Create(ctx, owner); err != nil {
		return false, err
	}
	s.logger.Info("bootstrap owner created", map[string]interface{}{"staffId": owner.ID, "email": owner.Email})
	return true, nil
}
