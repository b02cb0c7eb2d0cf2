package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
)

// SaleRepository stores point-of-sale lines.
type SaleRepository interface {
	CreateSale(ctx context.Context, executor SQLExecutor, sale *models.Sale) (int64, error)
	GetSaleByID(ctx context.Context, id int64) (*models.Sale, error)
	GetSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, int, error)
	DeleteSale(ctx context.Context, executor SQLExecutor, id int64) error
}

type saleRepository struct {
	db *sql.DB
}

func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

const saleSelect = `SELECT s.id, s.client_id, c.name, s.product_id, p.name, s.quantity, s.unit_price, s.total_amount,
	s.payment_method, s.points_used, s.points_earned, s.staff_id, s.session_id, s.notes, s.created_at`

const saleFrom = ` FROM sales s
	JOIN products p ON p.id = s.product_id
	LEFT JOIN clients c ON c.id = s.client_id`

func scanSale(row scanner, extra ...interface{}) (*models.Sale, error) {
	s := &models.Sale{}
	dest := []interface{}{&s.ID, &s.ClientID, &s.ClientName, &s.ProductID, &s.ProductName, &s.Quantity, &s.UnitPrice,
		&s.TotalAmount, &s.PaymentMethod, &s.PointsUsed, &s.PointsEarned, &s.StaffID, &s.SessionID, &s.Notes, &s.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *saleRepository) CreateSale(ctx context.Context, executor SQLExecutor, sale *models.Sale) (int64, error) {
	query := `INSERT INTO sales (client_id, product_id, quantity, unit_price, total_amount, payment_method,
	                             points_used, points_earned, staff_id, session_id, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		sale.ClientID, sale.ProductID, sale.Quantity, sale.UnitPrice, sale.TotalAmount, sale.PaymentMethod,
		sale.PointsUsed, sale.PointsEarned, sale.StaffID, sale.SessionID, sale.Notes,
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating sale")
	}
	return sale.ID, nil
}

func (r *saleRepository) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	s, err := scanSale(r.db.QueryRowContext(ctx, saleSelect+saleFrom+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting sale ID %d", id))
	}
	return s, nil
}

func (r *saleRepository) GetSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, int, error) {
	var qb strings.Builder
	qb.WriteString(saleSelect + `, COUNT(*) OVER() AS total_count` + saleFrom)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("s.client_id = $%d", argCount))
		args = append(args, *filters.ClientID)
		argCount++
	}
	if filters.ProductID != nil {
		conditions = append(conditions, fmt.Sprintf("s.product_id = $%d", argCount))
		args = append(args, *filters.ProductID)
		argCount++
	}
	if filters.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("s.staff_id = $%d", argCount))
		args = append(args, *filters.StaffID)
		argCount++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at >= $%d", argCount))
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at < $%d", argCount))
		args = append(args, *filters.To)
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY s.created_at DESC, s.id DESC")
	if filters.PageSize > 0 {
		qb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, offsetFor(filters.Page, filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	total := 0
	for rows.Next() {
		s, err := scanSale(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
		}
		sales = append(sales, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sales: %v", ErrDatabaseError, err)
	}
	return sales, total, nil
}

func (r *saleRepository) DeleteSale(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting sale ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting sale ID %d", id))
}
