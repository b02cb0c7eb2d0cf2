package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingService_StoreConfigAppliesRows(t *testing.T) {
	repo := &fakeSettings{rows: map[string]json.RawMessage{
		"free_game_threshold": json.RawMessage(`{"games_required": 3}`),
		"theme_primary":       json.RawMessage(`"10 50% 50%"`),
	}}
	svc := NewSettingService(repo, nil)
	ctx := context.Background()

	cfg, err := svc.StoreConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.FreeGameThreshold)
	assert.True(t, cfg.PointsEnabled)

	theme, err := svc.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10 50% 50%", theme.Primary)
	assert.Equal(t, "320 100% 60%", theme.Secondary)

	_, err = svc.Upsert(ctx, "points_system_enabled", json.RawMessage(`false`), 1)
	require.NoError(t, err)
	features, err := svc.Features(ctx)
	require.NoError(t, err)
	assert.False(t, features.PointsEnabled)
}

func TestSettingService_Validation(t *testing.T) {
	svc := NewSettingService(&fakeSettings{}, nil)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, " ", json.RawMessage(`1`), 1)
	assert.ErrorIs(t, err, ErrSettingValidation)
	_, err = svc.Upsert(ctx, "store_name", json.RawMessage(`{bad`), 1)
	assert.ErrorIs(t, err, ErrSettingValidation)
	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrSettingNotFound)
}
