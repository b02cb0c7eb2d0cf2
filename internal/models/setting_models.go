package models

import (
	"encoding/json"
	"time"
)

// StoreSetting is one key/value row of store configuration.
type StoreSetting struct {
	Key       string          `json:"key" db:"key"`
	Value     json.RawMessage `json:"value" db:"value"`
	UpdatedBy *int64          `json:"updated_by,omitempty" db:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

const (
	SettingPointsEnabled    = "points_system_enabled"
	SettingFreeGamesEnabled = "free_games_enabled"
	SettingFreeGameRule     = "free_game_threshold"
	SettingPointsConfig     = "points_config"
	SettingHelpTooltips     = "help_tooltips_enabled"
	SettingDelivery         = "delivery_settings"
	SettingPaymentMethods   = "payment_methods_config"
	SettingDefaultPS4       = "default_pricing_ps4"
	SettingDefaultPS5       = "default_pricing_ps5"
	SettingThemePrimary     = "theme_primary"
	SettingThemeSecondary   = "theme_secondary"
	SettingThemeAccent      = "theme_accent"
	SettingStoreName        = "store_name"
	SettingOpeningHours     = "opening_hours"
)

// DeliverySettings mirrors the delivery_settings JSON value.
type DeliverySettings struct {
	RapidPostEnabled     bool    `json:"rapid_post_enabled"`
	LocalDeliveryEnabled bool    `json:"local_delivery_enabled"`
	RapidPostCost        float64 `json:"rapid_post_cost"`
	LocalDeliveryCost    float64 `json:"local_delivery_cost"`
}

// PaymentMethodToggle is one entry of payment_methods_config.
type PaymentMethodToggle struct {
	Enabled bool   `json:"enabled"`
	Details string `json:"details,omitempty"`
}

type PaymentMethodsConfig struct {
	BankTransfer PaymentMethodToggle `json:"bank_transfer"`
	D17          PaymentMethodToggle `json:"d17"`
	DirectCard   PaymentMethodToggle `json:"direct_card"`
}

// Theme is the public colour palette (HSL triplets).
type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// FeatureFlags is the public subset of toggles.
type FeatureFlags struct {
	PointsEnabled       bool `json:"points_enabled"`
	FreeGamesEnabled    bool `json:"free_games_enabled"`
	HelpTooltipsEnabled bool `json:"help_tooltips_enabled"`
	FreeGameThreshold   int  `json:"free_game_threshold"`
}

// StoreConfig is the typed view over store settings with defaults applied.
type StoreConfig struct {
	StoreName           string               `json:"store_name"`
	PointsEnabled       bool                 `json:"points_system_enabled"`
	FreeGamesEnabled    bool                 `json:"free_games_enabled"`
	FreeGameThreshold   int                  `json:"free_game_threshold"`
	PointsPerDT         float64              `json:"points_per_dt"`
	HelpTooltipsEnabled bool                 `json:"help_tooltips_enabled"`
	Delivery            DeliverySettings     `json:"delivery_settings"`
	PaymentMethods      PaymentMethodsConfig `json:"payment_methods_config"`
	DefaultPricingPS4   *int64               `json:"default_pricing_ps4,omitempty"`
	DefaultPricingPS5   *int64               `json:"default_pricing_ps5,omitempty"`
	Theme               Theme                `json:"theme"`
	OpeningHours        json.RawMessage      `json:"opening_hours,omitempty"`
}

// DefaultStoreConfig is used for every key the settings table does not hold.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		StoreName:           "Game Store Zarzis",
		PointsEnabled:       true,
		FreeGamesEnabled:    true,
		FreeGameThreshold:   5,
		PointsPerDT:         1,
		HelpTooltipsEnabled: true,
		Delivery: DeliverySettings{
			RapidPostEnabled:     true,
			LocalDeliveryEnabled: true,
			RapidPostCost:        10,
			LocalDeliveryCost:    7,
		},
		Theme: Theme{
			Primary:   "185 100% 50%",
			Secondary: "320 100% 60%",
			Accent:    "270 100% 65%",
		},
	}
}

// DefaultPricingFor returns the configured default tariff for a console type.
func (c StoreConfig) DefaultPricingFor(consoleType string) *int64 {
	switch consoleType {
	case ConsolePS4:
		return c.DefaultPricingPS4
	case ConsolePS5:
		return c.DefaultPricingPS5
	}
	return nil
}

// DeliveryCost returns the cost of a delivery method and whether it is enabled.
func (c StoreConfig) DeliveryCost(method string) (float64, bool) {
	switch method {
	case DeliveryPickup:
		return 0, true
	case DeliveryRapid:
		return c.Delivery.RapidPostCost, c.Delivery.RapidPostEnabled
	case DeliveryLocal:
		return c.Delivery.LocalDeliveryCost, c.Delivery.LocalDeliveryEnabled
	}
	return 0, false
}

// PaymentEnabled reports whether an online payment method is accepted.
func (c StoreConfig) PaymentEnabled(method string) bool {
	switch method {
	case "cash":
		return true
	case "bank_transfer":
		return c.PaymentMethods.BankTransfer.Enabled
	case "d17":
		return c.PaymentMethods.D17.Enabled
	case "card":
		return c.PaymentMethods.DirectCard.Enabled
	}
	return false
}

func (c StoreConfig) Features() FeatureFlags {
	return FeatureFlags{
		PointsEnabled:       c.PointsEnabled,
		FreeGamesEnabled:    c.FreeGamesEnabled,
		HelpTooltipsEnabled: c.HelpTooltipsEnabled,
		FreeGameThreshold:   c.FreeGameThreshold,
	}
}
