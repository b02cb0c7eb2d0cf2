package models

import "time"

const (
	RoleOwner  = "owner"
	RoleWorker = "worker"
)

// User is a staff account (owner or worker).
type User struct {
	ID                  int64      `json:"id" db:"id"`
	Email               string     `json:"email" db:"email"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	FullName            string     `json:"full_name" db:"full_name"`
	Phone               *string    `json:"phone,omitempty" db:"phone"`
	Role                string     `json:"role" db:"role"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	OnboardingCompleted bool       `json:"onboarding_completed" db:"onboarding_completed"`
	OnboardingStep      int        `json:"onboarding_step" db:"onboarding_step"`
	HelpTooltipsVisible bool       `json:"help_tooltips_visible" db:"help_tooltips_visible"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

func IsValidRole(role string) bool {
	return role == RoleOwner || role == RoleWorker
}

// PasswordResetToken stores a bcrypt hash of the secret half of a reset token.
type PasswordResetToken struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	TokenHash string     `json:"-" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// StaffShift is one clock-in/clock-out attendance record.
type StaffShift struct {
	ID         int64      `json:"id" db:"id"`
	StaffID    int64      `json:"staff_id" db:"staff_id"`
	StaffName  *string    `json:"staff_name,omitempty" db:"staff_name"`
	CheckIn    time.Time  `json:"check_in" db:"check_in"`
	CheckOut   *time.Time `json:"check_out,omitempty" db:"check_out"`
	TotalHours *float64   `json:"total_hours,omitempty" db:"total_hours"`
	Status     string     `json:"status" db:"status"`
	Notes      *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

const (
	ShiftStatusActive    = "active"
	ShiftStatusCompleted = "completed"
)

// ShiftFilters narrows shift history queries.
type ShiftFilters struct {
	StaffID  *int64
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
