package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"

	"golang.org/x/sync/errgroup"
)

var ErrCleanupValidation = errors.New("cleanup validation error")

// minDaysToKeep keeps the current month out of reach of a purge.
const minDaysToKeep = 30

type CleanupRequest struct {
	DaysToKeep int      `json:"days_to_keep" binding:"required"`
	Tables     []string `json:"tables"`
}

// AdminService exports and prunes historical business data.
type AdminService interface {
	Export(ctx context.Context) (*models.DataExport, error)
	Cleanup(ctx context.Context, req CleanupRequest) (*models.CleanupResult, error)
}

type adminService struct {
	repo  repositories.AdminRepository
	db    repositories.SQLExecutor
	cache *cache.Cache
	now   func() time.Time
}

func NewAdminService(repo repositories.AdminRepository, db repositories.SQLExecutor, c *cache.Cache) AdminService {
	return &adminService{repo: repo, db: db, cache: c, now: time.Now}
}

// Export loads every exportable table concurrently. A failing table is
// reported in Errors and does not abort the others.
func (s *adminService) Export(ctx context.Context) (*models.DataExport, error) {
	out := &models.DataExport{
		Timestamp: s.now().UTC(),
		Data:      make(map[string]json.RawMessage, len(models.ExportTables)),
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for _, table := range models.ExportTables {
		table := table
		g.Go(func() error {
			rows, err := s.repo.ExportTable(gctx, table, models.ExportRowLimit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				utils.LogWarn(err, "data export: table failed", map[string]interface{}{"table": table})
				if out.Errors == nil {
					out.Errors = map[string]string{}
				}
				out.Errors[table] = "export failed"
				return nil
			}
			out.Data[table] = rows
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *adminService) Cleanup(ctx context.Context, req CleanupRequest) (*models.CleanupResult, error) {
	if req.DaysToKeep < minDaysToKeep {
		return nil, fmt.Errorf("%w: days_to_keep must be at least %d", ErrCleanupValidation, minDaysToKeep)
	}
	tables := req.Tables
	if len(tables) == 0 {
		tables = models.DefaultCleanupTables
	}

	result := &models.CleanupResult{
		Status:     "completed",
		CutoffDate: s.now().UTC().AddDate(0, 0, -req.DaysToKeep),
		Details:    make(map[string]models.CleanupTable, len(tables)),
	}
	// Old sales are removed before their sessions.
	for _, table := range orderForPurge(tables) {
		if !models.IsCleanupTable(table) {
			result.Details[table] = models.CleanupTable{Skipped: true, Error: "table not in allowed list"}
			continue
		}
		n, err := s.repo.PurgeBefore(ctx, s.db, table, result.CutoffDate)
		if err != nil {
			utils.LogWarn(err, "data cleanup: table failed", map[string]interface{}{"table": table})
			result.Details[table] = models.CleanupTable{Error: "cleanup failed"}
			result.Status = "partial"
			continue
		}
		result.Details[table] = models.CleanupTable{Deleted: n}
		s.cache.Invalidate(ctx, table)
	}
	utils.LogInfo("data cleanup finished", map[string]interface{}{
		"cutoff": result.CutoffDate, "status": result.Status,
	})
	return result, nil
}

// orderForPurge dedups tables and moves sales ahead of gaming_sessions.
func orderForPurge(tables []string) []string {
	seen := make(map[string]bool, len(tables))
	var out []string
	for _, t := range tables {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	si, gi := -1, -1
	for i, t := range out {
		switch t {
		case "sales":
			si = i
		case "gaming_sessions":
			gi = i
		}
	}
	if si > gi && gi >= 0 {
		out[si], out[gi] = out[gi], out[si]
	}
	return out
}
