package service

import (
	"context"
	"strings"
	"time"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/common/validation"
	"loandesk/internal/models"
	"loandesk/internal/store"

	"github.com/google/uuid"
)

type BankInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
}

type BankService struct {
	repo store.BankRepository
}

func NewBankService(repo store.BankRepository) *BankService {
	return &BankService{repo: repo}
}

func (s *BankService) List(ctx context.Context) ([]models.Bank, error) {
	banks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fromStore("bank", "", "list banks", err)
	}
	return banks, nil
}

func (s *BankService) Get(ctx context.Context, id string) (*models.Bank, error) {
	bank, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fromStore("bank", id, "get bank", err)
	}
	return bank, nil
}

func (s *BankService) Create(ctx context.Context, in BankInput) (*models.Bank, error) {
	if err := validateBank(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	bank := &models.Bank{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: in.ContactPerson,
		ContactNumber: in.ContactNumber,
		Email:         strings.TrimSpace(in.Email),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, bank); err != nil {
		return nil, fromStore("bank", bank.Name, "insert bank", err)
	}
	return bank, nil
}

func (s *BankService) Update(ctx context.Context, id string, in BankInput) (*models.Bank, error) {
	if err := validateBank(in); err != nil {
		return nil, err
	}
	bank, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bank.Name = strings.TrimSpace(in.Name)
	bank.ContactPerson = in.ContactPerson
	bank.ContactNumber = in.ContactNumber
	bank.Email = strings.TrimSpace(in.Email)
	if err := s.repo.Update(ctx, bank); err != nil {
		return nil, fromStore("bank", id, "update bank", err)
	}
	return bank, nil
}

func (s *BankService) Delete(ctx context.Context, id string) error {
	return fromStore("bank", id, "delete bank", s.repo.Delete(ctx, id))
}

func validateBank(in BankInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.NewValidationError("name is required")
	}
	if email := strings.TrimSpace(in.Email); email != "" && !validation.ValidateEmail(email) {
		return apperrors.NewValidationError("email is not a valid address")
	}
	return nil
}
