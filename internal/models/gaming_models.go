package models

import "time"

const (
	ConsolePS4 = "ps4"
	ConsolePS5 = "ps5"

	ConsoleAvailable   = "available"
	ConsoleInUse       = "in_use"
	ConsoleMaintenance = "maintenance"

	PriceHourly  = "hourly"
	PricePerGame = "per_game"

	SessionActive    = "active"
	SessionCompleted = "completed"

	PaymentCash   = "cash"
	PaymentPoints = "points"
)

func IsValidConsoleType(t string) bool {
	return t == ConsolePS4 || t == ConsolePS5
}

func IsValidPriceType(t string) bool {
	return t == PriceHourly || t == PricePerGame
}

// Console is a gaming station. CurrentSessionID is set only while in_use.
type Console struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	ConsoleType      string    `json:"console_type" db:"console_type"`
	Status           string    `json:"status" db:"status"`
	StationNumber    int       `json:"station_number" db:"station_number"`
	CurrentSessionID *int64    `json:"current_session_id,omitempty" db:"current_session_id"`
	ShortcutKey      *string   `json:"shortcut_key,omitempty" db:"shortcut_key"`
	DefaultPricingID *int64    `json:"default_pricing_id,omitempty" db:"default_pricing_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// ConsoleCounter is the public availability summary.
type ConsoleCounter struct {
	Total       int            `json:"total"`
	Available   int            `json:"available"`
	InUse       int            `json:"in_use"`
	Maintenance int            `json:"maintenance"`
	ByType      map[string]int `json:"by_type"`
	AvailableBy map[string]int `json:"available_by_type"`
}

// Pricing is a tariff for one console type.
type Pricing struct {
	ID                  int64     `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	NameFr              *string   `json:"name_fr,omitempty" db:"name_fr"`
	NameAr              *string   `json:"name_ar,omitempty" db:"name_ar"`
	ConsoleType         string    `json:"console_type" db:"console_type"`
	PriceType           string    `json:"price_type" db:"price_type"`
	Price               float64   `json:"price" db:"price"`
	GameDurationMinutes *int      `json:"game_duration_minutes,omitempty" db:"game_duration_minutes"`
	ExtraTimePrice      float64   `json:"extra_time_price" db:"extra_time_price"`
	PointsEarned        int       `json:"points_earned" db:"points_earned"`
	IsActive            bool      `json:"is_active" db:"is_active"`
	SortOrder           int       `json:"sort_order" db:"sort_order"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// GamingSession is one occupancy of a console. ExtraTimeMinutes counts
// the number of paid extensions on a per-game session.
type GamingSession struct {
	ID               int64      `json:"id" db:"id"`
	ConsoleID        int64      `json:"console_id" db:"console_id"`
	ConsoleName      *string    `json:"console_name,omitempty" db:"console_name"`
	ConsoleType      *string    `json:"console_type,omitempty" db:"console_type"`
	ClientID         *int64     `json:"client_id,omitempty" db:"client_id"`
	ClientName       *string    `json:"client_name,omitempty" db:"client_name"`
	PricingID        *int64     `json:"pricing_id,omitempty" db:"pricing_id"`
	SessionType      string     `json:"session_type" db:"session_type"`
	StartTime        time.Time  `json:"start_time" db:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty" db:"end_time"`
	GamesPlayed      int        `json:"games_played" db:"games_played"`
	ExtraTimeMinutes int        `json:"extra_time_minutes" db:"extra_time_minutes"`
	BaseAmount       float64    `json:"base_amount" db:"base_amount"`
	ExtraAmount      float64    `json:"extra_amount" db:"extra_amount"`
	TotalAmount      float64    `json:"total_amount" db:"total_amount"`
	PointsEarned     int        `json:"points_earned" db:"points_earned"`
	PointsUsed       int        `json:"points_used" db:"points_used"`
	IsFreeGame       bool       `json:"is_free_game" db:"is_free_game"`
	PaymentMethod    string     `json:"payment_method" db:"payment_method"`
	Status           string     `json:"status" db:"status"`
	StaffID          *int64     `json:"staff_id,omitempty" db:"staff_id"`
	Notes            *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// SessionFilters narrows session listings.
type SessionFilters struct {
	Status    *string
	ConsoleID *int64
	ClientID  *int64
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// SessionConsumption is a product consumed during an active session,
// turned into a sale when the session ends.
type SessionConsumption struct {
	ID          int64     `json:"id" db:"id"`
	SessionID   int64     `json:"session_id" db:"session_id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	ProductName *string   `json:"product_name,omitempty" db:"product_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SessionReceipt is returned when a session ends.
type SessionReceipt struct {
	Session           GamingSession `json:"session"`
	DurationMinutes   int           `json:"duration_minutes"`
	BilledHours       int           `json:"billed_hours,omitempty"`
	FreeGames         int           `json:"free_games"`
	PaidGames         int           `json:"paid_games"`
	GamingTotal       float64       `json:"gaming_total"`
	ConsumptionsTotal float64       `json:"consumptions_total"`
	GrandTotal        float64       `json:"grand_total"`
	PointsEarned      int           `json:"points_earned"`
	PointsUsed        int           `json:"points_used"`
	ClientBalance     *int          `json:"client_balance,omitempty"`
	SaleIDs           []int64       `json:"sale_ids"`
}
