package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID           uint      `gorm:"primaryKey" json:"purchase_id"`
	SupplierID   *uint     `gorm:"index" json:"supplier_id"`
	Supplier     *Supplier `json:"supplier,omitempty"`
	UserID       *uint     `gorm:"index" json:"user_id"`
	User         *User     `json:"user,omitempty"`
	PurchaseDate time.Time `gorm:"index" json:"purchase_date"`
	// Derived: sum of the detail subtotals, recomputed on every detail mutation.
	TotalAmount decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	Details     []PurchaseDetail `gorm:"foreignKey:PurchaseID" json:"details,omitempty"`
}

type PurchaseDetail struct {
	ID         uint            `gorm:"primaryKey" json:"purchase_detail_id"`
	PurchaseID uint            `gorm:"index;not null" json:"purchase_id"`
	Purchase   *Purchase       `json:"purchase,omitempty"`
	ProductID  uint            `gorm:"index;not null" json:"product_id"`
	Product    *Product        `json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"unit_cost"`
	SubTotal   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"sub_total"`
}
