package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
)

// StockMovementRepository records every stock change.
type StockMovementRepository interface {
	CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(ctx context.Context, productID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error)
	NetChange(ctx context.Context, executor SQLExecutor, referenceType string, referenceID, productID int64) (int, error)
}

type stockMovementRepository struct {
	db *sql.DB
}

func NewStockMovementRepository(db *sql.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movements
	          (product_id, movement_type, quantity_changed, stock_after, reason, reference_type, reference_id, staff_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		movement.ProductID, movement.MovementType, movement.QuantityChanged, movement.StockAfter,
		movement.Reason, movement.ReferenceType, movement.ReferenceID, movement.StaffID,
	).Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating stock movement")
	}
	return movement.ID, nil
}

func (r *stockMovementRepository) GetMovements(ctx context.Context, productID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT sm.id, sm.product_id, p.name, sm.movement_type, sm.quantity_changed, sm.stock_after,
	                       sm.reason, sm.reference_type, sm.reference_id, sm.staff_id, sm.created_at,
	                       COUNT(*) OVER() AS total_count
	                FROM stock_movements sm
	                JOIN products p ON p.id = sm.product_id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if productID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.product_id = $%d", argCount))
		args = append(args, *productID)
		argCount++
	}
	if movementType != nil {
		conditions = append(conditions, fmt.Sprintf("sm.movement_type = $%d", argCount))
		args = append(args, *movementType)
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(fmt.Sprintf(" ORDER BY sm.created_at DESC, sm.id DESC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, offsetFor(page, pageSize))

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	total := 0
	for rows.Next() {
		var m models.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.MovementType, &m.QuantityChanged, &m.StockAfter,
			&m.Reason, &m.ReferenceType, &m.ReferenceID, &m.StaffID, &m.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}
	return movements, total, nil
}

// NetChange sums the stock moved for one product on behalf of a sale or order.
func (r *stockMovementRepository) NetChange(ctx context.Context, executor SQLExecutor, referenceType string, referenceID, productID int64) (int, error) {
	query := `SELECT COALESCE(SUM(quantity_changed), 0)
	          FROM stock_movements
	          WHERE reference_type = $1 AND reference_id = $2 AND product_id = $3`
	var net int
	if err := executor.QueryRowContext(ctx, query, referenceType, referenceID, productID).Scan(&net); err != nil {
		return 0, fmt.Errorf("%w: summing stock movements of %s %d: %v", ErrDatabaseError, referenceType, referenceID, err)
	}
	return net, nil
}
