package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

var (
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrExpenseValidation = errors.New("expense validation error")
)

type ExpenseRequest struct {
	Description string     `json:"description" binding:"required"`
	Amount      float64    `json:"amount" binding:"required"`
	Category    string     `json:"category"`
	ExpenseDate *time.Time `json:"expense_date"`
}

type ExpenseService interface {
	CreateExpense(ctx context.Context, req ExpenseRequest, staffID *int64) (*models.Expense, error)
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	ListExpenses(ctx context.Context, filters models.ExpenseFilters) ([]models.Expense, int, error)
	UpdateExpense(ctx context.Context, id int64, req ExpenseRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
}

type expenseService struct {
	repo repositories.ExpenseRepository
	db   repositories.SQLExecutor
	now  func() time.Time
}

func NewExpenseService(repo repositories.ExpenseRepository, db repositories.SQLExecutor) ExpenseService {
	return &expenseService{repo: repo, db: db, now: time.Now}
}

func (s *expenseService) build(e *models.Expense, req ExpenseRequest) error {
	desc := strings.TrimSpace(utils.SanitizeInput(req.Description))
	if desc == "" {
		return fmt.Errorf("%w: description is required", ErrExpenseValidation)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrExpenseValidation)
	}
	category := req.Category
	if category == "" {
		category = models.ExpenseOther
	}
	if !models.IsValidExpenseCategory(category) {
		return fmt.Errorf("%w: unknown category %q", ErrExpenseValidation, category)
	}
	e.Description = desc
	e.Amount = utils.RoundMoney(req.Amount)
	e.Category = category
	if req.ExpenseDate != nil {
		e.ExpenseDate = startOfDay(*req.ExpenseDate)
	} else if e.ExpenseDate.IsZero() {
		e.ExpenseDate = startOfDay(s.now())
	}
	return nil
}

func (s *expenseService) CreateExpense(ctx context.Context, req ExpenseRequest, staffID *int64) (*models.Expense, error) {
	e := &models.Expense{StaffID: staffID}
	if err := s.build(e, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.CreateExpense(ctx, s.db, e); err != nil {
		return nil, err
	}
	return s.repo.GetExpenseByID(ctx, e.ID)
}

func (s *expenseService) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	e, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrExpenseNotFound)
	}
	return e, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, filters models.ExpenseFilters) ([]models.Expense, int, error) {
	if filters.Category != nil && !models.IsValidExpenseCategory(*filters.Category) {
		return nil, 0, fmt.Errorf("%w: unknown category %q", ErrExpenseValidation, *filters.Category)
	}
	filters.Page, filters.PageSize = normalizePage(filters.Page, filters.PageSize)
	return s.repo.GetExpenses(ctx, filters)
}

func (s *expenseService) UpdateExpense(ctx context.Context, id int64, req ExpenseRequest) (*models.Expense, error) {
	e, err := s.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.build(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateExpense(ctx, s.db, e); err != nil {
		return nil, wrapNotFound(err, ErrExpenseNotFound)
	}
	return s.repo.GetExpenseByID(ctx, id)
}

func (s *expenseService) DeleteExpense(ctx context.Context, id int64) error {
	return wrapNotFound(s.repo.DeleteExpense(ctx, s.db, id), ErrExpenseNotFound)
}
