package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
)

type fakeStats struct {
	rev  models.RevenueBreakdown
	cogs float64
	from time.Time
	to   time.Time
}

func (f *fakeStats) RevenueBetween(_ context.Context, from, to time.Time) (models.RevenueBreakdown, error) {
	f.from, f.to = from, to
	return f.rev, nil
}

func (f *fakeStats) CostOfGoodsBetween(context.Context, time.Time, time.Time) (float64, error) {
	return f.cogs, nil
}

func (f *fakeStats) OperationalCounts(context.Context) (int, int, int, int, error) {
	return 2, 3, 1, 4, nil
}

type fakeExpenses struct {
	rows   map[int64]*models.Expense
	next   int64
	byCats map[string]float64
}

func (f *fakeExpenses) CreateExpense(_ context.Context, _ repositories.SQLExecutor, e *models.Expense) (int64, error) {
	f.next++
	e.ID = f.next
	cp := *e
	f.rows[e.ID] = &cp
	return e.ID, nil
}

func (f *fakeExpenses) GetExpenseByID(_ context.Context, id int64) (*models.Expense, error) {
	e, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExpenses) GetExpenses(context.Context, models.ExpenseFilters) ([]models.Expense, int, error) {
	out := []models.Expense{}
	for _, e := range f.rows {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f *fakeExpenses) UpdateExpense(_ context.Context, _ repositories.SQLExecutor, e *models.Expense) error {
	if _, ok := f.rows[e.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *e
	f.rows[e.ID] = &cp
	return nil
}

func (f *fakeExpenses) DeleteExpense(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeExpenses) SumByCategory(context.Context, time.Time, time.Time) (map[string]float64, error) {
	return f.byCats, nil
}

func TestStats_TodayWindowAndTotal(t *testing.T) {
	repo := &fakeStats{rev: models.RevenueBreakdown{GamingRevenue: 40, SalesRevenue: 12.5, ServicesRevenue: 30, OrdersRevenue: 99}}
	svc := NewStatsService(repo, &fakeExpenses{}).(*statsService)
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 17, 45, 0, 0, time.UTC) }

	stats, err := svc.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), repo.to)
	assert.InDelta(t, 82.5, stats.TotalRevenue, 0.0001, "online orders are reported apart")
	assert.Equal(t, 2, stats.ActiveSessions)
	assert.Equal(t, 4, stats.LowStockProducts)

	_, err = svc.Monthly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), repo.to)
}

func TestStats_AnalyticsProfit(t *testing.T) {
	repo := &fakeStats{rev: models.RevenueBreakdown{GamingRevenue: 600, SalesRevenue: 300, ServicesRevenue: 100}, cogs: 150}
	expenses := &fakeExpenses{byCats: map[string]float64{models.ExpenseMonthly: 250, models.ExpenseDaily: 100}}
	svc := NewStatsService(repo, expenses)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	out, err := svc.Analytics(context.Background(), from, from.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, out.TotalRevenue, 0.0001)
	assert.InDelta(t, 350.0, out.TotalExpenses, 0.0001)
	assert.InDelta(t, 850.0, out.GrossProfit, 0.0001)
	assert.InDelta(t, 500.0, out.NetProfit, 0.0001)
	assert.InDelta(t, 50.0, out.ProfitMargin, 0.0001)

	_, err = svc.Analytics(context.Background(), from, from)
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = svc.Analytics(context.Background(), from, from.AddDate(3, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidRange)
}
