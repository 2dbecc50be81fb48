package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID       uint      `gorm:"primaryKey" json:"sale_id"`
	UserID   *uint     `gorm:"index" json:"user_id"`
	User     *User     `json:"user,omitempty"`
	SaleDate time.Time `gorm:"index" json:"sale_date"`
	// TotalAmount is derived from the detail subtotals; NetAmount follows as
	// TotalAmount - Discount + Tax. Both are recomputed on detail mutations.
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"discount"`
	Tax         decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"tax"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"net_amount"`
	Details     []SaleDetail    `gorm:"foreignKey:SaleID" json:"details,omitempty"`
}

type SaleDetail struct {
	ID        uint            `gorm:"primaryKey" json:"sale_detail_id"`
	SaleID    uint            `gorm:"index;not null" json:"sale_id"`
	Sale      *Sale           `json:"sale,omitempty"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"unit_price"`
	SubTotal  decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"sub_total"`
}
