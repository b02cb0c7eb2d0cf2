package models

import "time"

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"

	DeliveryPickup = "pickup"
	DeliveryRapid  = "rapid_post"
	DeliveryLocal  = "local_delivery"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func IsValidDeliveryMethod(m string) bool {
	return m == DeliveryPickup || m == DeliveryRapid || m == DeliveryLocal
}

func IsValidOrderPayment(m string) bool {
	switch m {
	case "cash", "bank_transfer", "d17", "card":
		return true
	}
	return false
}

func IsValidPaymentStatus(s string) bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid || s == PaymentStatusFailed
}

// OrderItem is one line of an online order, priced at checkout time.
type OrderItem struct {
	ProductID      int64   `json:"product_id"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	ProductType    string  `json:"product_type,omitempty"`
	DigitalContent *string `json:"digital_content,omitempty"`
}

// Order is an online shop order.
type Order struct {
	ID               int64       `json:"id" db:"id"`
	OrderNumber      string      `json:"order_number" db:"order_number"`
	ClientID         *int64      `json:"client_id,omitempty" db:"client_id"`
	ClientName       string      `json:"client_name" db:"client_name"`
	ClientPhone      string      `json:"client_phone" db:"client_phone"`
	ClientEmail      *string     `json:"client_email,omitempty" db:"client_email"`
	Items            []OrderItem `json:"items" db:"items"`
	Subtotal         float64     `json:"subtotal" db:"subtotal"`
	DeliveryMethod   string      `json:"delivery_method" db:"delivery_method"`
	DeliveryCost     float64     `json:"delivery_cost" db:"delivery_cost"`
	DeliveryAddress  *string     `json:"delivery_address,omitempty" db:"delivery_address"`
	TotalAmount      float64     `json:"total_amount" db:"total_amount"`
	PaymentMethod    string      `json:"payment_method" db:"payment_method"`
	PaymentStatus    string      `json:"payment_status" db:"payment_status"`
	PaymentReference *string     `json:"payment_reference,omitempty" db:"payment_reference"`
	Status           string      `json:"status" db:"status"`
	Notes            *string     `json:"notes,omitempty" db:"notes"`
	StaffNotes       *string     `json:"staff_notes,omitempty" db:"staff_notes"`
	StaffID          *int64      `json:"staff_id,omitempty" db:"staff_id"`
	ConfirmedAt      *time.Time  `json:"confirmed_at,omitempty" db:"confirmed_at"`
	DeliveredAt      *time.Time  `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderFilters narrows order listings.
type OrderFilters struct {
	Status        *string
	PaymentStatus *string
	Search        *string
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}
