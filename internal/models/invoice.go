package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoiceStatusPending = "Pending"
	InvoiceStatusPaid    = "Paid"
	InvoiceStatusOverdue = "Overdue"
)

type Invoice struct {
	ID                 uint             `gorm:"primaryKey" json:"invoice_id"`
	InvoiceNumber      string           `gorm:"size:50;uniqueIndex" json:"invoice_number"`
	SaleID             *uint            `gorm:"index" json:"sale_id"`
	Sale               *Sale            `json:"sale,omitempty"`
	CustomerID         *uint            `gorm:"index" json:"customer_id"`
	Customer           *Customer        `json:"customer,omitempty"`
	InvoiceDate        *time.Time       `json:"invoice_date"`
	DueDate            *time.Time       `json:"due_date"`
	SubTotal           decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"sub_total"`
	DiscountPercentage *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percentage"`
	DiscountAmount     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_amount"`
	TaxPercentage      *decimal.Decimal `gorm:"type:decimal(5,2)" json:"tax_percentage"`
	TaxAmount          *decimal.Decimal `gorm:"type:decimal(12,2)" json:"tax_amount"`
	TotalAmount        *decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	Status             string           `gorm:"size:20;index" json:"status"`
	Notes              string           `gorm:"size:500" json:"notes"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"modified_at"`
}

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"customer_id"`
	Name      string    `gorm:"size:100;not null" json:"customer_name"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"modified_at"`
}
