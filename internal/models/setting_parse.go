package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseStoreConfig applies raw settings rows over the defaults. Values that
// do not decode keep their default.
func ParseStoreConfig(raw map[string]json.RawMessage) StoreConfig {
	cfg := DefaultStoreConfig()

	if v, ok := raw[SettingStoreName]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil && s != "" {
			cfg.StoreName = s
		}
	}
	if v, ok := raw[SettingPointsEnabled]; ok {
		cfg.PointsEnabled = decodeToggle(v, cfg.PointsEnabled)
	}
	if v, ok := raw[SettingFreeGamesEnabled]; ok {
		cfg.FreeGamesEnabled = decodeToggle(v, cfg.FreeGamesEnabled)
	}
	if v, ok := raw[SettingHelpTooltips]; ok {
		cfg.HelpTooltipsEnabled = decodeToggle(v, cfg.HelpTooltipsEnabled)
	}
	if v, ok := raw[SettingFreeGameRule]; ok {
		var rule struct {
			GamesRequired *int `json:"games_required"`
		}
		if json.Unmarshal(v, &rule) == nil && rule.GamesRequired != nil && *rule.GamesRequired > 0 {
			cfg.FreeGameThreshold = *rule.GamesRequired
		}
	}
	if v, ok := raw[SettingPointsConfig]; ok {
		var pc struct {
			PointsPerDT *float64 `json:"points_per_dt"`
		}
		if json.Unmarshal(v, &pc) == nil && pc.PointsPerDT != nil && *pc.PointsPerDT > 0 {
			cfg.PointsPerDT = *pc.PointsPerDT
		}
	}
	if v, ok := raw[SettingDelivery]; ok {
		d := cfg.Delivery
		if json.Unmarshal(v, &d) == nil {
			cfg.Delivery = d
		}
	}
	if v, ok := raw[SettingPaymentMethods]; ok {
		var pm PaymentMethodsConfig
		if json.Unmarshal(v, &pm) == nil {
			cfg.PaymentMethods = pm
		}
	}
	if v, ok := raw[SettingDefaultPS4]; ok {
		cfg.DefaultPricingPS4 = decodeID(v)
	}
	if v, ok := raw[SettingDefaultPS5]; ok {
		cfg.DefaultPricingPS5 = decodeID(v)
	}
	if v, ok := raw[SettingThemePrimary]; ok {
		cfg.Theme.Primary = decodeString(v, cfg.Theme.Primary)
	}
	if v, ok := raw[SettingThemeSecondary]; ok {
		cfg.Theme.Secondary = decodeString(v, cfg.Theme.Secondary)
	}
	if v, ok := raw[SettingThemeAccent]; ok {
		cfg.Theme.Accent = decodeString(v, cfg.Theme.Accent)
	}
	if v, ok := raw[SettingOpeningHours]; ok {
		cfg.OpeningHours = v
	}
	return cfg
}

// decodeToggle accepts `true` or `{"enabled": true}`.
func decodeToggle(v json.RawMessage, fallback bool) bool {
	var b bool
	if json.Unmarshal(v, &b) == nil {
		return b
	}
	var obj struct {
		Enabled *bool `json:"enabled"`
	}
	if json.Unmarshal(v, &obj) == nil && obj.Enabled != nil {
		return *obj.Enabled
	}
	return fallback
}

func decodeString(v json.RawMessage, fallback string) string {
	var s string
	if json.Unmarshal(v, &s) == nil && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// decodeID accepts a JSON number or a numeric string; empty means unset.
func decodeID(v json.RawMessage) *int64 {
	var n int64
	if json.Unmarshal(v, &n) == nil && n > 0 {
		return &n
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil && id > 0 {
			return &id
		}
	}
	return nil
}
