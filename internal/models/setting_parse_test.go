package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreConfig_Defaults(t *testing.T) {
	cfg := ParseStoreConfig(nil)
	assert.True(t, cfg.PointsEnabled)
	assert.True(t, cfg.FreeGamesEnabled)
	assert.Equal(t, 5, cfg.FreeGameThreshold)
	assert.Equal(t, 1.0, cfg.PointsPerDT)

	cost, ok := cfg.DeliveryCost(DeliveryRapid)
	assert.True(t, ok)
	assert.Equal(t, 10.0, cost)
	cost, ok = cfg.DeliveryCost(DeliveryLocal)
	assert.True(t, ok)
	assert.Equal(t, 7.0, cost)
	assert.True(t, cfg.PaymentEnabled("cash"))
	assert.False(t, cfg.PaymentEnabled("d17"))
}

func TestParseStoreConfig_Overrides(t *testing.T) {
	raw := map[string]json.RawMessage{
		SettingPointsEnabled:    json.RawMessage(`false`),
		SettingFreeGamesEnabled: json.RawMessage(`{"enabled": false}`),
		SettingFreeGameRule:     json.RawMessage(`{"games_required": 9}`),
		SettingPointsConfig:     json.RawMessage(`{"points_per_dt": 2.5}`),
		SettingDelivery:         json.RawMessage(`{"rapid_post_enabled": false, "local_delivery_cost": 6}`),
		SettingPaymentMethods:   json.RawMessage(`{"d17": {"enabled": true, "details": "20 123 456"}}`),
		SettingDefaultPS5:       json.RawMessage(`"12"`),
		SettingThemePrimary:     json.RawMessage(`"10 50% 50%"`),
	}
	cfg := ParseStoreConfig(raw)

	assert.False(t, cfg.PointsEnabled)
	assert.False(t, cfg.FreeGamesEnabled)
	assert.Equal(t, 9, cfg.FreeGameThreshold)
	assert.Equal(t, 2.5, cfg.PointsPerDT)

	_, ok := cfg.DeliveryCost(DeliveryRapid)
	assert.False(t, ok)
	cost, ok := cfg.DeliveryCost(DeliveryLocal)
	assert.True(t, ok)
	assert.Equal(t, 6.0, cost)

	assert.True(t, cfg.PaymentEnabled("d17"))
	require.NotNil(t, cfg.DefaultPricingFor(ConsolePS5))
	assert.Equal(t, int64(12), *cfg.DefaultPricingFor(ConsolePS5))
	assert.Nil(t, cfg.DefaultPricingFor(ConsolePS4))
	assert.Equal(t, "10 50% 50%", cfg.Theme.Primary)
	assert.Equal(t, "320 100% 60%", cfg.Theme.Secondary)
}

func TestParseStoreConfig_BadValuesKeepDefaults(t *testing.T) {
	raw := map[string]json.RawMessage{
		SettingFreeGameRule: json.RawMessage(`{"games_required": 0}`),
		SettingDefaultPS4:   json.RawMessage(`""`),
		SettingPointsConfig: json.RawMessage(`{"points_per_dt": 0}`),
	}
	cfg := ParseStoreConfig(raw)
	assert.Equal(t, 5, cfg.FreeGameThreshold)
	assert.Equal(t, 1.0, cfg.PointsPerDT, "a zero rate falls back to one point per dinar")
	assert.Nil(t, cfg.DefaultPricingPS4)
}
