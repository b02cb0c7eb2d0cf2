package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

var ErrInvalidRange = errors.New("invalid date range")

// maxAnalyticsRange caps Analytics to roughly two years.
const maxAnalyticsRange = 731 * 24 * time.Hour

type StatsService interface {
	Today(ctx context.Context) (*models.PeriodStats, error)
	Monthly(ctx context.Context) (*models.PeriodStats, error)
	Analytics(ctx context.Context, from, to time.Time) (*models.AnalyticsSummary, error)
}

type statsService struct {
	repo     repositories.StatsRepository
	expenses repositories.ExpenseRepository
	now      func() time.Time
}

func NewStatsService(repo repositories.StatsRepository, expenses repositories.ExpenseRepository) StatsService {
	return &statsService{repo: repo, expenses: expenses, now: time.Now}
}

func (s *statsService) Today(ctx context.Context) (*models.PeriodStats, error) {
	from := startOfDay(s.now())
	return s.period(ctx, from, from.AddDate(0, 0, 1))
}

func (s *statsService) Monthly(ctx context.Context) (*models.PeriodStats, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.period(ctx, from, from.AddDate(0, 1, 0))
}

func (s *statsService) period(ctx context.Context, from, to time.Time) (*models.PeriodStats, error) {
	stats := &models.PeriodStats{From: from, To: to}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rev, err := s.repo.RevenueBetween(gctx, from, to)
		stats.Revenue = rev
		return err
	})
	g.Go(func() error {
		var err error
		stats.ActiveSessions, stats.PendingRequests, stats.PendingOrders, stats.LowStockProducts, err = s.repo.OperationalCounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.TotalRevenue = utils.RoundMoney(stats.Revenue.Total())
	return stats, nil
}

// Analytics covers [from, to); to is exclusive.
func (s *statsService) Analytics(ctx context.Context, from, to time.Time) (*models.AnalyticsSummary, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: 'to' must be after 'from'", ErrInvalidRange)
	}
	if to.Sub(from) > maxAnalyticsRange {
		return nil, fmt.Errorf("%w: range is limited to two years", ErrInvalidRange)
	}

	out := &models.AnalyticsSummary{From: from, To: to}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rev, err := s.repo.RevenueBetween(gctx, from, to)
		out.Revenue = rev
		return err
	})
	g.Go(func() error {
		cogs, err := s.repo.CostOfGoodsBetween(gctx, from, to)
		out.CostOfGoods = cogs
		return err
	})
	g.Go(func() error {
		byCat, err := s.expenses.SumByCategory(gctx, from, to)
		out.ExpensesByCategory = byCat
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.ExpensesByCategory == nil {
		out.ExpensesByCategory = map[string]float64{}
	}
	for _, v := range out.ExpensesByCategory {
		out.TotalExpenses += v
	}
	out.TotalExpenses = utils.RoundMoney(out.TotalExpenses)
	out.TotalRevenue = utils.RoundMoney(out.Revenue.Total())
	out.GrossProfit = utils.RoundMoney(out.TotalRevenue - out.CostOfGoods)
	out.NetProfit = utils.RoundMoney(out.GrossProfit - out.TotalExpenses)
	if out.TotalRevenue > 0 {
		out.ProfitMargin = math.Round(out.NetProfit/out.TotalRevenue*10000) / 100
	}
	return out, nil
}
