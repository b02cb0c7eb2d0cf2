package models

import "time"

const (
	ProductPhysical   = "physical"
	ProductConsumable = "consumable"
	ProductDigital    = "digital"

	MovementRestock    = "restock"
	MovementSale       = "sale"
	MovementAdjustment = "adjustment"
	MovementReturn     = "return"
	MovementOrder      = "order"
)

func IsValidProductType(t string) bool {
	switch t {
	case ProductPhysical, ProductConsumable, ProductDigital:
		return true
	}
	return false
}

// Product is an item sold in store, online, or consumed during a session.
type Product struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	NameFr            *string   `json:"name_fr,omitempty" db:"name_fr"`
	NameAr            *string   `json:"name_ar,omitempty" db:"name_ar"`
	Description       *string   `json:"description,omitempty" db:"description"`
	DescriptionFr     *string   `json:"description_fr,omitempty" db:"description_fr"`
	DescriptionAr     *string   `json:"description_ar,omitempty" db:"description_ar"`
	Category          string    `json:"category" db:"category"`
	Subcategory       *string   `json:"subcategory,omitempty" db:"subcategory"`
	ProductType       string    `json:"product_type" db:"product_type"`
	Price             float64   `json:"price" db:"price"`
	SalePrice         *float64  `json:"sale_price,omitempty" db:"sale_price"`
	CostPrice         *float64  `json:"cost_price,omitempty" db:"cost_price"`
	StockQuantity     int       `json:"stock_quantity" db:"stock_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold" db:"low_stock_threshold"`
	PointsEarned      int       `json:"points_earned" db:"points_earned"`
	PointsPrice       *int      `json:"points_price,omitempty" db:"points_price"`
	ImageURL          *string   `json:"image_url,omitempty" db:"image_url"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	IsQuickSale       bool      `json:"is_quick_sale" db:"is_quick_sale"`
	DigitalContent    *string   `json:"digital_content,omitempty" db:"digital_content"`
	IsDigitalDelivery bool      `json:"is_digital_delivery" db:"is_digital_delivery"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// EffectivePrice is the sale price when one is set, else the list price.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.Price
}

// ProductFilters narrows product listings.
type ProductFilters struct {
	ActiveOnly  bool
	QuickSale   *bool
	Category    *string
	ProductType *string
	Search      *string
	Page        int
	PageSize    int
}

// StockMovement records one stock change.
type StockMovement struct {
	ID              int64     `json:"id" db:"id"`
	ProductID       int64     `json:"product_id" db:"product_id"`
	ProductName     *string   `json:"product_name,omitempty" db:"product_name"`
	MovementType    string    `json:"movement_type" db:"movement_type"`
	QuantityChanged int       `json:"quantity_changed" db:"quantity_changed"`
	StockAfter      int       `json:"stock_after" db:"stock_after"`
	Reason          *string   `json:"reason,omitempty" db:"reason"`
	ReferenceType   *string   `json:"reference_type,omitempty" db:"reference_type"`
	ReferenceID     *int64    `json:"reference_id,omitempty" db:"reference_id"`
	StaffID         *int64    `json:"staff_id,omitempty" db:"staff_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Sale is a walk-in point-of-sale line.
type Sale struct {
	ID            int64     `json:"id" db:"id"`
	ClientID      *int64    `json:"client_id,omitempty" db:"client_id"`
	ClientName    *string   `json:"client_name,omitempty" db:"client_name"`
	ProductID     int64     `json:"product_id" db:"product_id"`
	ProductName   *string   `json:"product_name,omitempty" db:"product_name"`
	Quantity      int       `json:"quantity" db:"quantity"`
	UnitPrice     float64   `json:"unit_price" db:"unit_price"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	PointsUsed    int       `json:"points_used" db:"points_used"`
	PointsEarned  int       `json:"points_earned" db:"points_earned"`
	StaffID       *int64    `json:"staff_id,omitempty" db:"staff_id"`
	SessionID     *int64    `json:"session_id,omitempty" db:"session_id"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SaleFilters narrows sale listings.
type SaleFilters struct {
	ClientID  *int64
	ProductID *int64
	StaffID   *int64
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
