package models

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderNumber string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_number"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	BookTitle   string `gorm:"type:varchar(200)" json:"book_title"`
	BookSize    string `gorm:"type:varchar(40);not null" json:"book_size"`
	PaperType   string `gorm:"type:varchar(40);not null" json:"paper_type"`
	PaperWeight string `gorm:"type:varchar(20);not null" json:"paper_weight"`
	PrintType   string `gorm:"type:varchar(20);not null" json:"print_type"`
	BindingType string `gorm:"type:varchar(40);not null" json:"binding_type"`
	LicenseType string `gorm:"type:varchar(40);not null" json:"license_type"`

	Quantity       int `gorm:"not null" json:"quantity"`
	PageCountTotal int `json:"page_count_total"`
	PageCountColor int `json:"page_count_color"`
	PageCountBW    int `json:"page_count_bw"`

	CoverPaperWeight string         `gorm:"type:varchar(20)" json:"cover_paper_weight"`
	LaminationType   string         `gorm:"type:varchar(40)" json:"lamination_type"`
	Extras           datatypes.JSON `json:"extras"` // string list

	// Whole currency units (toman). UnitPrice is always the matrix-derived
	// per-copy price; an operator override only changes TotalPrice.
	UnitPrice         int            `gorm:"not null" json:"unit_price"`
	OverrideUnitPrice *int           `json:"override_unit_price,omitempty"`
	TotalPrice        int            `gorm:"not null" json:"total_price"`
	Breakdown         datatypes.JSON `json:"breakdown"`

	Notes  string      `gorm:"type:text" json:"notes"`
	Status OrderStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Files []OrderFile `gorm:"foreignKey:OrderID" json:"files,omitempty"`
}

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber returns a human-facing identifier, e.g. TB-K9PM3TVJ.
// Callers must handle the unlikely unique-index collision by regenerating.
func GenerateOrderNumber() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = orderNumberAlphabet[rand.Intn(len(orderNumberAlphabet))]
	}
	return "TB-" + string(b)
}
