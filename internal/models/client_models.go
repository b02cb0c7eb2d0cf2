package models

import "time"

// Client is a walk-in or online customer identified by phone number.
// Points is a denormalised copy of the ledger balance.
type Client struct {
	ID               int64     `json:"id" db:"id"`
	Phone            string    `json:"phone" db:"phone"`
	Name             string    `json:"name" db:"name"`
	Email            *string   `json:"email,omitempty" db:"email"`
	Points           int       `json:"points" db:"points"`
	TotalSpent       float64   `json:"total_spent" db:"total_spent"`
	TotalGamesPlayed int       `json:"total_games_played" db:"total_games_played"`
	Notes            *string   `json:"notes,omitempty" db:"notes"`
	CreatedBy        *int64    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

const (
	PointsEarned     = "earned"
	PointsSpent      = "spent"
	PointsRefund     = "refund"
	PointsBonus      = "bonus"
	PointsAdjustment = "adjustment"
)

const (
	ReferenceSession = "session"
	ReferenceSale    = "sale"
	ReferenceOrder   = "order"
	ReferenceManual  = "manual"
)

// PointsTransaction is an append-only ledger row.
type PointsTransaction struct {
	ID                int64     `json:"id" db:"id"`
	ClientID          int64     `json:"client_id" db:"client_id"`
	TransactionType   string    `json:"transaction_type" db:"transaction_type"`
	Amount            int       `json:"amount" db:"amount"`
	BalanceAfter      int       `json:"balance_after" db:"balance_after"`
	Description       *string   `json:"description,omitempty" db:"description"`
	ReferenceType     *string   `json:"reference_type,omitempty" db:"reference_type"`
	ReferenceID       *int64    `json:"reference_id,omitempty" db:"reference_id"`
	StaffID           *int64    `json:"staff_id,omitempty" db:"staff_id"`
	ConfirmedByStaff  bool      `json:"confirmed_by_staff" db:"confirmed_by_staff"`
	ConfirmedByClient bool      `json:"confirmed_by_client" db:"confirmed_by_client"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

func IsValidPointsType(t string) bool {
	switch t {
	case PointsEarned, PointsSpent, PointsRefund, PointsBonus, PointsAdjustment:
		return true
	}
	return false
}
