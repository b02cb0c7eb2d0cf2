package handlers

import (
	"net/http"
	"time"

	"game_store_backend/internal/models"
	"game_store_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// defaultAnalyticsWindow applies when the caller sends no "from".
const defaultAnalyticsWindow = 30 * 24 * time.Hour

// ReportHandler serves dashboard statistics and the expense ledger.
type ReportHandler struct {
	stats    services.StatsService
	expenses services.ExpenseService
	now      func() time.Time
}

func NewReportHandler(ss services.StatsService, es services.ExpenseService) *ReportHandler {
	return &ReportHandler{stats: ss, expenses: es, now: time.Now}
}

// reportRange reads from/to. A bare date for "to" covers that whole day.
func (h *ReportHandler) reportRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := optTime(c, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := optTime(c, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end := h.now()
	if to != nil {
		end = *to
		if len(c.Query("to")) == len("2006-01-02") {
			end = end.AddDate(0, 0, 1)
		}
	}
	start := end.Add(-defaultAnalyticsWindow)
	if from != nil {
		start = *from
	}
	return start, end, true
}

func (h *ReportHandler) TodayStats(c *gin.Context) {
	stats, err := h.stats.Today(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "TodayStats: statsService.Today failed", "Failed to compute today's statistics.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReportHandler) MonthlyStats(c *gin.Context) {
	stats, err := h.stats.Monthly(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "MonthlyStats: statsService.Monthly failed", "Failed to compute monthly statistics.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Analytics godoc
// @Summary  Revenue, expenses and profit over a date range
// @Tags     stats
// @Security BearerAuth
// @Param    from query string false "RFC 3339 or YYYY-MM-DD"
// @Param    to   query string false "RFC 3339 or YYYY-MM-DD"
// @Success  200 {object} models.AnalyticsSummary
// @Failure  400 {object} utils.APIError
// @Router   /api/v1/stats/analytics [get]
func (h *ReportHandler) Analytics(c *gin.Context) {
	from, to, ok := h.reportRange(c)
	if !ok {
		return
	}
	summary, err := h.stats.Analytics(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, err, "Analytics: statsService.Analytics failed", "Failed to compute analytics.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) CreateExpense(c *gin.Context) {
	var req services.ExpenseRequest
	if !bindJSON(c, &req, "CreateExpense") {
		return
	}
	e, err := h.expenses.CreateExpense(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "CreateExpense: expenseService.CreateExpense failed", "Failed to create expense.")
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *ReportHandler) ListExpenses(c *gin.Context) {
	from, ok := optTime(c, "from")
	if !ok {
		return
	}
	to, ok := optTime(c, "to")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	rows, total, err := h.expenses.ListExpenses(c.Request.Context(), models.ExpenseFilters{
		Category: optString(c, "category"),
		From:     from,
		To:       to,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "ListExpenses: expenseService.ListExpenses failed", "Failed to fetch expenses.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total, Page: page, PageSize: pageSize})
}

func (h *ReportHandler) GetExpense(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	e, err := h.expenses.GetExpense(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetExpense: expenseService.GetExpense failed", "Failed to fetch expense.")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *ReportHandler) UpdateExpense(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.ExpenseRequest
	if !bindJSON(c, &req, "UpdateExpense") {
		return
	}
	e, err := h.expenses.UpdateExpense(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateExpense: expenseService.UpdateExpense failed", "Failed to update expense.")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *ReportHandler) DeleteExpense(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.expenses.DeleteExpense(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteExpense: expenseService.DeleteExpense failed", "Failed to delete expense.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
