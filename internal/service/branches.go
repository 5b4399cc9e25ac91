package service

import (
	"context"
	"strings"
	"time"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/models"
	"loandesk/internal/store"

	"github.com/google/uuid"
)

type BranchInput struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type BranchService struct {
	repo store.BranchRepository
}

func NewBranchService(repo store.BranchRepository) *BranchService {
	return &BranchService{repo: repo}
}

func (s *BranchService) List(ctx context.Context) ([]models.Branch, error) {
	branches, err := s.repo.List(ctx)
	if err != nil {
		return nil, fromStore("branch", "", "list branches", err)
	}
	return branches, nil
}

func (s *BranchService) Get(ctx context.Context, id string) (*models.Branch, error) {
	branch, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fromStore("branch", id, "get branch", err)
	}
	return branch, nil
}

func (s *BranchService) Create(ctx context.Context, in BranchInput) (*models.Branch, error) {
	if err := validateBranch(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	branch := &models.Branch{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Code:      strings.ToUpper(strings.TrimSpace(in.Code)),
		Address:   in.Address,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, branch); err != nil {
		return nil, fromStore("branch", branch.Code, "insert branch", err)
	}
	return branch, nil
}

func (s *BranchService) Update(ctx context.Context, id string, in BranchInput) (*models.Branch, error) {
	if err := validateBranch(in); err != nil {
		return nil, err
	}
	branch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	branch.Name = strings.TrimSpace(in.Name)
	branch.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	branch.Address = in.Address
	branch.Phone = in.Phone
	if err := s.repo.Update(ctx, branch); err != nil {
		return nil, fromStore("branch", id, "update branch", err)
	}
	return branch, nil
}

func (s *BranchService) Delete(ctx context.Context, id string) error {
	return fromStore("branch", id, "delete branch", s.repo.Delete(ctx, id))
}

func validateBranch(in BranchInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Code) == "" {
		return apperrors.NewValidationError("name and code are required")
	}
	return nil
}
