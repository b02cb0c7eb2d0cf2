package models

import "time"

// BlogPost is a public article with localized title/content.
type BlogPost struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	TitleFr     *string    `json:"title_fr,omitempty" db:"title_fr"`
	TitleAr     *string    `json:"title_ar,omitempty" db:"title_ar"`
	Content     string     `json:"content" db:"content"`
	ContentFr   *string    `json:"content_fr,omitempty" db:"content_fr"`
	ContentAr   *string    `json:"content_ar,omitempty" db:"content_ar"`
	Excerpt     *string    `json:"excerpt,omitempty" db:"excerpt"`
	ImageURL    *string    `json:"image_url,omitempty" db:"image_url"`
	Category    string     `json:"category" db:"category"`
	AuthorID    *int64     `json:"author_id,omitempty" db:"author_id"`
	IsPublished bool       `json:"is_published" db:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	Views       int        `json:"views" db:"views"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

const (
	ExpenseDaily   = "daily"
	ExpenseMonthly = "monthly"
	ExpenseYearly  = "yearly"
	ExpenseOther   = "other"
)

func IsValidExpenseCategory(c string) bool {
	switch c {
	case ExpenseDaily, ExpenseMonthly, ExpenseYearly, ExpenseOther:
		return true
	}
	return false
}

// Expense is an owner-recorded cost.
type Expense struct {
	ID          int64     `json:"id" db:"id"`
	Description string    `json:"description" db:"description"`
	Amount      float64   `json:"amount" db:"amount"`
	Category    string    `json:"category" db:"category"`
	ExpenseDate time.Time `json:"expense_date" db:"expense_date"`
	StaffID     *int64    `json:"staff_id,omitempty" db:"staff_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ExpenseFilters narrows expense listings.
type ExpenseFilters struct {
	Category *string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
