package models

import "time"

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
	ReservationNoShow    = "no-show"
)

// Reservation is a booking request for a console slot.
type Reservation struct {
	ID          int64     `json:"id" db:"id"`
	ClientName  string    `json:"client_name" db:"client_name"`
	ClientPhone string    `json:"client_phone" db:"client_phone"`
	ClientEmail *string   `json:"client_email,omitempty" db:"client_email"`
	ConsoleType string    `json:"console_type" db:"console_type"`
	ConsoleID   *int64    `json:"console_id,omitempty" db:"console_id"`
	ConsoleName *string   `json:"console_name,omitempty" db:"console_name"`
	SessionType string    `json:"session_type" db:"session_type"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	EndTime     time.Time `json:"end_time" db:"end_time"`
	Status      string    `json:"status" db:"status"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	StaffID     *int64    `json:"staff_id,omitempty" db:"staff_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ReservationFilters narrows reservation listings.
type ReservationFilters struct {
	Status    *string
	ConsoleID *int64
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
