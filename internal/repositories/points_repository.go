package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
)

// PointsRepository is the append-only loyalty ledger.
type PointsRepository interface {
	// SumAmounts returns the ledger balance of a client.
	SumAmounts(ctx context.Context, executor SQLExecutor, clientID int64) (int, error)
	CreateTransaction(ctx context.Context, executor SQLExecutor, tx *models.PointsTransaction) (int64, error)
	GetTransactions(ctx context.Context, clientID *int64, limit int) ([]models.PointsTransaction, error)
}

type pointsRepository struct {
	db *sql.DB
}

func NewPointsRepository(db *sql.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) SumAmounts(ctx context.Context, executor SQLExecutor, clientID int64) (int, error) {
	var sum int
	err := executor.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM points_transactions WHERE client_id = $1`, clientID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("%w: summing points for client %d: %v", ErrDatabaseError, clientID, err)
	}
	return sum, nil
}

func (r *pointsRepository) CreateTransaction(ctx context.Context, executor SQLExecutor, t *models.PointsTransaction) (int64, error) {
	query := `INSERT INTO points_transactions
	            (client_id, transaction_type, amount, balance_after, description, reference_type, reference_id,
	             staff_id, confirmed_by_staff, confirmed_by_client)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.ClientID, t.TransactionType, t.Amount, t.BalanceAfter, t.Description, t.ReferenceType, t.ReferenceID,
		t.StaffID, t.ConfirmedByStaff, t.ConfirmedByClient,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating points transaction")
	}
	return t.ID, nil
}

func (r *pointsRepository) GetTransactions(ctx context.Context, clientID *int64, limit int) ([]models.PointsTransaction, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT id, client_id, transaction_type, amount, balance_after, description, reference_type,
	                       reference_id, staff_id, confirmed_by_staff, confirmed_by_client, created_at
	                FROM points_transactions`)
	var args []interface{}
	argCount := 1
	if clientID != nil {
		qb.WriteString(fmt.Sprintf(" WHERE client_id = $%d", argCount))
		args = append(args, *clientID)
		argCount++
	}
	qb.WriteString(" ORDER BY created_at DESC, id DESC")
	if limit > 0 {
		qb.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying points transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	txs := []models.PointsTransaction{}
	for rows.Next() {
		var t models.PointsTransaction
		if err := rows.Scan(&t.ID, &t.ClientID, &t.TransactionType, &t.Amount, &t.BalanceAfter, &t.Description,
			&t.ReferenceType, &t.ReferenceID, &t.StaffID, &t.ConfirmedByStaff, &t.ConfirmedByClient, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning points transaction: %v", ErrDatabaseError, err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating points transactions: %v", ErrDatabaseError, err)
	}
	return txs, nil
}
