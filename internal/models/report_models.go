package models

import "time"

// RevenueBreakdown aggregates revenue sources over a period.
type RevenueBreakdown struct {
	GamingRevenue   float64 `json:"gaming_revenue"`
	GamingSessions  int     `json:"gaming_sessions"`
	SalesRevenue    float64 `json:"sales_revenue"`
	SalesCount      int     `json:"sales_count"`
	ServicesRevenue float64 `json:"services_revenue"`
	ServicesCount   int     `json:"services_count"`
	OrdersRevenue   float64 `json:"orders_revenue"`
	OrdersCount     int     `json:"orders_count"`
}

// Total is gaming + sales + services; online orders are reported apart.
func (r RevenueBreakdown) Total() float64 {
	return r.GamingRevenue + r.SalesRevenue + r.ServicesRevenue
}

// PeriodStats is the dashboard summary for today or the current month.
type PeriodStats struct {
	From             time.Time        `json:"from"`
	To               time.Time        `json:"to"`
	Revenue          RevenueBreakdown `json:"revenue"`
	TotalRevenue     float64          `json:"total_revenue"`
	ActiveSessions   int              `json:"active_sessions"`
	PendingRequests  int              `json:"pending_requests"`
	PendingOrders    int              `json:"pending_orders"`
	LowStockProducts int              `json:"low_stock_products"`
}

// AnalyticsSummary compares revenue and expenses over a range.
type AnalyticsSummary struct {
	From               time.Time          `json:"from"`
	To                 time.Time          `json:"to"`
	Revenue            RevenueBreakdown   `json:"revenue"`
	TotalRevenue       float64            `json:"total_revenue"`
	CostOfGoods        float64            `json:"cost_of_goods"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	TotalExpenses      float64            `json:"total_expenses"`
	GrossProfit        float64            `json:"gross_profit"`
	NetProfit          float64            `json:"net_profit"`
	ProfitMargin       float64            `json:"profit_margin"`
}

// ChangeEvent is one row-level change broadcast to realtime subscribers.
type ChangeEvent struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    int64  `json:"id"`
	TsMs  int64  `json:"ts,omitempty"`
}
