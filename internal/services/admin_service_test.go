package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
)

type fakeAdmin struct {
	mu        sync.Mutex
	exportErr map[string]error
	purgeErr  map[string]error
	limits    []int
	purged    []string
	cutoffs   []time.Time
}

func (f *fakeAdmin) ExportTable(_ context.Context, table string, limit int) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	if err := f.exportErr[table]; err != nil {
		return nil, err
	}
	return json.RawMessage(`[{"table":"` + table + `"}]`), nil
}

func (f *fakeAdmin) PurgeBefore(_ context.Context, _ repositories.SQLExecutor, table string, cutoff time.Time) (int64, error) {
	if err := f.purgeErr[table]; err != nil {
		return 0, err
	}
	f.purged = append(f.purged, table)
	f.cutoffs = append(f.cutoffs, cutoff)
	return int64(len(table)), nil
}

func newAdminFixture() (*adminService, *fakeAdmin) {
	repo := &fakeAdmin{}
	svc := NewAdminService(repo, nil, nil).(*adminService)
	svc.now = func() time.Time { return time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestAdmin_ExportCollectsEveryTable(t *testing.T) {
	svc, repo := newAdminFixture()
	repo.exportErr = map[string]error{"products": errors.New("relation is locked")}

	out, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Len(t, out.Data, len(models.ExportTables)-1)
	assert.JSONEq(t, `[{"table":"sales"}]`, string(out.Data["sales"]))
	assert.Equal(t, map[string]string{"products": "export failed"}, out.Errors)
	for _, limit := range repo.limits {
		assert.Equal(t, models.ExportRowLimit, limit)
	}
	assert.Len(t, repo.limits, len(models.ExportTables))
}

func TestAdmin_CleanupRequiresRetention(t *testing.T) {
	svc, repo := newAdminFixture()

	_, err := svc.Cleanup(context.Background(), CleanupRequest{DaysToKeep: 7})
	assert.ErrorIs(t, err, ErrCleanupValidation)
	assert.Empty(t, repo.purged)
}

func TestAdmin_CleanupDefaultsAndAllowList(t *testing.T) {
	svc, repo := newAdminFixture()
	ctx := context.Background()

	res, err := svc.Cleanup(ctx, CleanupRequest{DaysToKeep: 90})
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC), res.CutoffDate)
	assert.ElementsMatch(t, models.DefaultCleanupTables, repo.purged)
	assert.Equal(t, int64(len("expenses")), res.Details["expenses"].Deleted)

	repo.purged = nil
	res, err = svc.Cleanup(ctx, CleanupRequest{DaysToKeep: 90, Tables: []string{"gaming_sessions", "points_transactions", "sales", "sales"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sales", "gaming_sessions"}, repo.purged, "sales go first and only once")
	assert.True(t, res.Details["points_transactions"].Skipped)
	assert.Zero(t, res.Details["points_transactions"].Deleted)
}

func TestAdmin_CleanupReportsPartialFailure(t *testing.T) {
	svc, repo := newAdminFixture()
	repo.purgeErr = map[string]error{"staff_shifts": repositories.ErrDatabaseError}

	res, err := svc.Cleanup(context.Background(), CleanupRequest{DaysToKeep: 30, Tables: []string{"staff_shifts", "expenses"}})
	require.NoError(t, err)
	assert.Equal(t, "partial", res.Status)
	assert.Equal(t, "cleanup failed", res.Details["staff_shifts"].Error)
	assert.Equal(t, []string{"expenses"}, repo.purged)
}
