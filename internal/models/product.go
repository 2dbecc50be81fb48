package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uint            `gorm:"primaryKey" json:"product_id"`
	Name         string          `gorm:"size:100;not null" json:"product_name"`
	CategoryID   *uint           `gorm:"index" json:"category_id"`
	Category     *Category       `json:"category,omitempty"`
	SupplierID   *uint           `gorm:"index" json:"supplier_id"`
	Supplier     *Supplier       `json:"supplier,omitempty"`
	Unit         string          `gorm:"size:20" json:"unit"`
	Description  string          `gorm:"size:500" json:"description"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"selling_price"`
	// StockLevel is owned by the stock ledger: only reconciliation paths
	// and the explicit stock endpoint may write it. Never below zero.
	StockLevel int       `gorm:"not null;default:0" json:"stock_level"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"modified_at"`
}
