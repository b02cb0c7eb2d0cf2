package models

import "time"

const (
	RequestPending      = "pending"
	RequestInProgress   = "in_progress"
	RequestWaitingParts = "waiting_parts"
	RequestCompleted    = "completed"
	RequestCancelled    = "cancelled"
)

func IsValidRequestStatus(s string) bool {
	switch s {
	case RequestPending, RequestInProgress, RequestWaitingParts, RequestCompleted, RequestCancelled:
		return true
	}
	return false
}

func IsValidPriority(p string) bool {
	switch p {
	case "low", "normal", "high", "urgent":
		return true
	}
	return false
}

func IsValidServiceCategory(c string) bool {
	switch c {
	case "phone_repair", "console_repair", "controller_repair", "account", "admin":
		return true
	}
	return false
}

// ServiceCatalogItem is a repair or account service offered by the store.
type ServiceCatalogItem struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	NameFr            *string   `json:"name_fr,omitempty" db:"name_fr"`
	NameAr            *string   `json:"name_ar,omitempty" db:"name_ar"`
	Description       *string   `json:"description,omitempty" db:"description"`
	DescriptionFr     *string   `json:"description_fr,omitempty" db:"description_fr"`
	DescriptionAr     *string   `json:"description_ar,omitempty" db:"description_ar"`
	Category          string    `json:"category" db:"category"`
	Price             *float64  `json:"price,omitempty" db:"price"`
	IsComplex         bool      `json:"is_complex" db:"is_complex"`
	EstimatedDuration *string   `json:"estimated_duration,omitempty" db:"estimated_duration"`
	ImageURL          *string   `json:"image_url,omitempty" db:"image_url"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	SortOrder         int       `json:"sort_order" db:"sort_order"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// ServiceRequest is a repair ticket.
type ServiceRequest struct {
	ID               int64      `json:"id" db:"id"`
	ServiceID        *int64     `json:"service_id,omitempty" db:"service_id"`
	ServiceName      *string    `json:"service_name,omitempty" db:"service_name"`
	ClientID         *int64     `json:"client_id,omitempty" db:"client_id"`
	ClientName       string     `json:"client_name" db:"client_name"`
	ClientPhone      string     `json:"client_phone" db:"client_phone"`
	ClientEmail      *string    `json:"client_email,omitempty" db:"client_email"`
	DeviceType       string     `json:"device_type" db:"device_type"`
	DeviceBrand      *string    `json:"device_brand,omitempty" db:"device_brand"`
	DeviceModel      *string    `json:"device_model,omitempty" db:"device_model"`
	IssueDescription string     `json:"issue_description" db:"issue_description"`
	Diagnosis        *string    `json:"diagnosis,omitempty" db:"diagnosis"`
	EstimatedCost    *float64   `json:"estimated_cost,omitempty" db:"estimated_cost"`
	FinalCost        *float64   `json:"final_cost,omitempty" db:"final_cost"`
	Status           string     `json:"status" db:"status"`
	Priority         string     `json:"priority" db:"priority"`
	AssignedTo       *int64     `json:"assigned_to,omitempty" db:"assigned_to"`
	IsComplex        bool       `json:"is_complex" db:"is_complex"`
	StartedAt        *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	StaffID          *int64     `json:"staff_id,omitempty" db:"staff_id"`
	Notes            *string    `json:"notes,omitempty" db:"notes"`
	InternalNotes    *string    `json:"internal_notes,omitempty" db:"internal_notes"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// ServiceRequestFilters narrows ticket listings.
type ServiceRequestFilters struct {
	Status     *string
	AssignedTo *int64
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}
