package service

import (
	"context"
	"strings"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"

	"github.com/google/uuid"
)

type ExpenseService interface {
	Create(ctx context.Context, actor tenant.Actor, req dto.ExpenseRequest) (*model.Expense, error)
	List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.ExpenseFilter) ([]model.Expense, error)
	Update(ctx context.Context, actor tenant.Actor, id uuid.UUID, req dto.ExpenseRequest) (*model.Expense, error)
	Delete(ctx context.Context, actor tenant.Actor, id uuid.UUID) error
}

type expenseService struct {
	repo repository.ExpenseRepository
}

func NewExpenseService(repo repository.ExpenseRepository) ExpenseService {
	return &expenseService{repo: repo}
}

func validCategory(c string) bool {
	for _, v := range model.ExpenseCategories {
		if v == c {
			return true
		}
	}
	return false
}

func validateExpense(req dto.ExpenseRequest) error {
	if !validCategory(req.Category) {
		return apierror.Validationf("unknown expense category %q", req.Category)
	}
	if !req.Amount.IsPositive() {
		return apierror.Validationf("amount must be positive")
	}
	if req.ExpenseDate.IsZero() {
		return apierror.Validationf("expenseDate is required")
	}
	return nil
}

func (s *expenseService) Create(ctx context.Context, actor tenant.Actor, req dto.ExpenseRequest) (*model.Expense, error) {
	if err := validateExpense(req); err != nil {
		return nil, err
	}
	reqCompany, err := parseOptionalUUID(req.CompanyID, "companyId")
	if err != nil {
		return nil, err
	}
	companyID, err := actor.ScopeCompany(reqCompany)
	if err != nil {
		return nil, err
	}
	e := &model.Expense{
		CompanyID:   companyID,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		ExpenseDate: req.ExpenseDate.UTC(),
		Notes:       req.Notes,
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *expenseService) List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.ExpenseFilter) ([]model.Expense, error) {
	scoped, err := actor.ScopeCompany(companyID)
	if err != nil {
		return nil, err
	}
	filter.CompanyID = scoped
	return s.repo.List(ctx, filter)
}

func (s *expenseService) find(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.Expense, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "expense")
	}
	if err := actor.Owns(e.CompanyID, "expense"); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *expenseService) Update(ctx context.Context, actor tenant.Actor, id uuid.UUID, req dto.ExpenseRequest) (*model.Expense, error) {
	if err := validateExpense(req); err != nil {
		return nil, err
	}
	e, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	e.Category = req.Category
	e.Description = strings.TrimSpace(req.Description)
	e.Amount = req.Amount
	e.ExpenseDate = req.ExpenseDate.UTC()
	e.Notes = req.Notes
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *expenseService) Delete(ctx context.Context, actor tenant.Actor, id uuid.UUID) error {
	if _, err := s.find(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
