package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"game_store_backend/internal/models"
)

// ExpenseRepository stores owner-recorded costs.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, executor SQLExecutor, e *models.Expense) (int64, error)
	GetExpenseByID(ctx context.Context, id int64) (*models.Expense, error)
	GetExpenses(ctx context.Context, filters models.ExpenseFilters) ([]models.Expense, int, error)
	UpdateExpense(ctx context.Context, executor SQLExecutor, e *models.Expense) error
	DeleteExpense(ctx context.Context, executor SQLExecutor, id int64) error
	SumByCategory(ctx context.Context, from, to time.Time) (map[string]float64, error)
}

type expenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

const expenseColumns = `id, description, amount, category, expense_date, staff_id, created_at, updated_at`

func scanExpense(row scanner, extra ...interface{}) (*models.Expense, error) {
	e := &models.Expense{}
	dest := []interface{}{&e.ID, &e.Description, &e.Amount, &e.Category, &e.ExpenseDate, &e.StaffID, &e.CreatedAt, &e.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *expenseRepository) CreateExpense(ctx context.Context, executor SQLExecutor, e *models.Expense) (int64, error) {
	query := `INSERT INTO expenses (description, amount, category, expense_date, staff_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query, e.Description, e.Amount, e.Category, e.ExpenseDate, e.StaffID).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating expense")
	}
	return e.ID, nil
}

func (r *expenseRepository) GetExpenseByID(ctx context.Context, id int64) (*models.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting expense ID %d", id))
	}
	return e, nil
}

func (r *expenseRepository) GetExpenses(ctx context.Context, filters models.ExpenseFilters) ([]models.Expense, int, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT ` + expenseColumns + `, COUNT(*) OVER() AS total_count FROM expenses`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filters.Category)
		argCount++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("expense_date >= $%d", argCount))
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("expense_date < $%d", argCount))
		args = append(args, *filters.To)
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY expense_date DESC, id DESC")
	if filters.PageSize > 0 {
		qb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, offsetFor(filters.Page, filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying expenses: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	list := []models.Expense{}
	total := 0
	for rows.Next() {
		e, err := scanExpense(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning expense: %v", ErrDatabaseError, err)
		}
		list = append(list, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating expenses: %v", ErrDatabaseError, err)
	}
	return list, total, nil
}

func (r *expenseRepository) UpdateExpense(ctx context.Context, executor SQLExecutor, e *models.Expense) error {
	result, err := executor.ExecContext(ctx,
		`UPDATE expenses SET description = $1, amount = $2, category = $3, expense_date = $4, updated_at = NOW()
		 WHERE id = $5`,
		e.Description, e.Amount, e.Category, e.ExpenseDate, e.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating expense ID %d", e.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating expense ID %d", e.ID))
}

func (r *expenseRepository) DeleteExpense(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting expense ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting expense ID %d", id))
}

func (r *expenseRepository) SumByCategory(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COALESCE(SUM(amount), 0) FROM expenses
		 WHERE expense_date >= $1::DATE AND expense_date < $2::DATE
		 GROUP BY category`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: summing expenses: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	sums := map[string]float64{}
	for rows.Next() {
		var category string
		var amount float64
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("%w: scanning expense sum: %v", ErrDatabaseError, err)
		}
		sums[category] = amount
	}
	return sums, rows.Err()
}
