package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"game_store_backend/internal/models"
)

// StatsRepository runs the aggregate queries behind the dashboards.
type StatsRepository interface {
	RevenueBetween(ctx context.Context, from, to time.Time) (models.RevenueBreakdown, error)
	CostOfGoodsBetween(ctx context.Context, from, to time.Time) (float64, error)
	OperationalCounts(ctx context.Context) (activeSessions, pendingRequests, pendingOrders, lowStock int, err error)
}

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) RevenueBetween(ctx context.Context, from, to time.Time) (models.RevenueBreakdown, error) {
	query := `SELECT
	    (SELECT COALESCE(SUM(total_amount), 0) FROM gaming_sessions
	      WHERE status = 'completed' AND end_time >= $1 AND end_time < $2),
	    (SELECT COUNT(*) FROM gaming_sessions
	      WHERE status = 'completed' AND end_time >= $1 AND end_time < $2),
	    (SELECT COALESCE(SUM(total_amount), 0) FROM sales WHERE created_at >= $1 AND created_at < $2),
	    (SELECT COUNT(*) FROM sales WHERE created_at >= $1 AND created_at < $2),
	    (SELECT COALESCE(SUM(final_cost), 0) FROM service_requests
	      WHERE status = 'completed' AND completed_at >= $1 AND completed_at < $2),
	    (SELECT COUNT(*) FROM service_requests
	      WHERE status = 'completed' AND completed_at >= $1 AND completed_at < $2),
	    (SELECT COALESCE(SUM(total_amount), 0) FROM orders
	      WHERE status <> 'cancelled' AND created_at >= $1 AND created_at < $2),
	    (SELECT COUNT(*) FROM orders
	      WHERE status <> 'cancelled' AND created_at >= $1 AND created_at < $2)`
	var b models.RevenueBreakdown
	err := r.db.QueryRowContext(ctx, query, from, to).Scan(
		&b.GamingRevenue, &b.GamingSessions,
		&b.SalesRevenue, &b.SalesCount,
		&b.ServicesRevenue, &b.ServicesCount,
		&b.OrdersRevenue, &b.OrdersCount,
	)
	if err != nil {
		return models.RevenueBreakdown{}, fmt.Errorf("%w: aggregating revenue: %v", ErrDatabaseError, err)
	}
	return b, nil
}

// CostOfGoodsBetween sums quantity × cost price of products sold in the range.
// Products without a cost price count as zero.
func (r *statsRepository) CostOfGoodsBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var cost float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(s.quantity * COALESCE(p.cost_price, 0)), 0)
		 FROM sales s JOIN products p ON p.id = s.product_id
		 WHERE s.created_at >= $1 AND s.created_at < $2`, from, to).Scan(&cost)
	if err != nil {
		return 0, fmt.Errorf("%w: aggregating cost of goods: %v", ErrDatabaseError, err)
	}
	return cost, nil
}

func (r *statsRepository) OperationalCounts(ctx context.Context) (int, int, int, int, error) {
	query := `SELECT
	    (SELECT COUNT(*) FROM gaming_sessions WHERE status = 'active'),
	    (SELECT COUNT(*) FROM service_requests WHERE status IN ('pending', 'in_progress', 'waiting_parts')),
	    (SELECT COUNT(*) FROM orders WHERE status = 'pending'),
	    (SELECT COUNT(*) FROM products
	      WHERE is_active AND product_type <> 'digital' AND stock_quantity <= low_stock_threshold)`
	var active, requests, orders, lowStock int
	if err := r.db.QueryRowContext(ctx, query).Scan(&active, &requests, &orders, &lowStock); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: counting open work: %v", ErrDatabaseError, err)
	}
	return active, requests, orders, lowStock, nil
}
