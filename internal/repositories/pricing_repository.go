package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
)

// PricingRepository stores console tariffs.
type PricingRepository interface {
	CreatePricing(ctx context.Context, executor SQLExecutor, p *models.Pricing) (int64, error)
	GetPricingByID(ctx context.Context, id int64) (*models.Pricing, error)
	GetPricings(ctx context.Context, consoleType *string, activeOnly bool) ([]models.Pricing, error)
	GetFirstActive(ctx context.Context, consoleType, priceType string) (*models.Pricing, error)
	UpdatePricing(ctx context.Context, executor SQLExecutor, p *models.Pricing) error
	DeletePricing(ctx context.Context, executor SQLExecutor, id int64) error
}

type pricingRepository struct {
	db *sql.DB
}

func NewPricingRepository(db *sql.DB) PricingRepository {
	return &pricingRepository{db: db}
}

const pricingColumns = `id, name, name_fr, name_ar, console_type, price_type, price, game_duration_minutes,
	extra_time_price, points_earned, is_active, sort_order, created_at, updated_at`

func scanPricing(row scanner) (*models.Pricing, error) {
	p := &models.Pricing{}
	err := row.Scan(&p.ID, &p.Name, &p.NameFr, &p.NameAr, &p.ConsoleType, &p.PriceType, &p.Price,
		&p.GameDurationMinutes, &p.ExtraTimePrice, &p.PointsEarned, &p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pricingRepository) CreatePricing(ctx context.Context, executor SQLExecutor, p *models.Pricing) (int64, error) {
	query := `INSERT INTO pricing (name, name_fr, name_ar, console_type, price_type, price, game_duration_minutes,
	                               extra_time_price, points_earned, is_active, sort_order)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		p.Name, p.NameFr, p.NameAr, p.ConsoleType, p.PriceType, p.Price, p.GameDurationMinutes,
		p.ExtraTimePrice, p.PointsEarned, p.IsActive, p.SortOrder,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating pricing")
	}
	return p.ID, nil
}

func (r *pricingRepository) GetPricingByID(ctx context.Context, id int64) (*models.Pricing, error) {
	p, err := scanPricing(r.db.QueryRowContext(ctx, `SELECT `+pricingColumns+` FROM pricing WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting pricing ID %d", id))
	}
	return p, nil
}

func (r *pricingRepository) GetPricings(ctx context.Context, consoleType *string, activeOnly bool) ([]models.Pricing, error) {
	var conditions []string
	var args []interface{}
	if consoleType != nil {
		args = append(args, *consoleType)
		conditions = append(conditions, fmt.Sprintf("console_type = $%d", len(args)))
	}
	if activeOnly {
		conditions = append(conditions, "is_active")
	}
	query := `SELECT ` + pricingColumns + ` FROM pricing`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY console_type ASC, sort_order ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying pricing: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	list := []models.Pricing{}
	for rows.Next() {
		p, err := scanPricing(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning pricing: %v", ErrDatabaseError, err)
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating pricing: %v", ErrDatabaseError, err)
	}
	return list, nil
}

// GetFirstActive returns the lowest sort_order active tariff of the given kind.
func (r *pricingRepository) GetFirstActive(ctx context.Context, consoleType, priceType string) (*models.Pricing, error) {
	query := `SELECT ` + pricingColumns + ` FROM pricing
	          WHERE console_type = $1 AND price_type = $2 AND is_active
	          ORDER BY sort_order ASC, id ASC LIMIT 1`
	p, err := scanPricing(r.db.QueryRowContext(ctx, query, consoleType, priceType))
	if err != nil {
		return nil, mapReadError(err, "getting first active pricing")
	}
	return p, nil
}

func (r *pricingRepository) UpdatePricing(ctx context.Context, executor SQLExecutor, p *models.Pricing) error {
	query := `UPDATE pricing
	          SET name = $1, name_fr = $2, name_ar = $3, console_type = $4, price_type = $5, price = $6,
	              game_duration_minutes = $7, extra_time_price = $8, points_earned = $9, is_active = $10,
	              sort_order = $11, updated_at = NOW()
	          WHERE id = $12`
	result, err := executor.ExecContext(ctx, query,
		p.Name, p.NameFr, p.NameAr, p.ConsoleType, p.PriceType, p.Price, p.GameDurationMinutes,
		p.ExtraTimePrice, p.PointsEarned, p.IsActive, p.SortOrder, p.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating pricing ID %d", p.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating pricing ID %d", p.ID))
}

func (r *pricingRepository) DeletePricing(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM pricing WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting pricing ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting pricing ID %d", id))
}
