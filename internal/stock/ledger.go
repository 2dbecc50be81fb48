package stock

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-backend/internal/models"
)

// InsufficientStockError is returned when a sale-side decrement asks for
// more units than the product has on hand. The message format is part of
// the API: handlers return it verbatim as the 400 body.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Required    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for product %s. Available: %d, Required: %d",
		e.ProductName, e.Available, e.Required)
}

// Increase adds qty to the product's stock level. A missing product is a
// no-op, matching the lookup-then-skip behavior of the other paths.
func Increase(tx *gorm.DB, productID uint, qty int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_level", gorm.Expr("stock_level + ?", qty)).Error
}

// Decrease removes qty from the product's stock level as one conditional
// write: the WHERE clause carries the sufficiency check, so two concurrent
// sales cannot both pass a stale read. Zero affected rows with the product
// present means insufficient stock.
func Decrease(tx *gorm.DB, productID uint, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_level >= ?", productID, qty).
		UpdateColumn("stock_level", gorm.Expr("stock_level - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var product models.Product
		err := tx.First(&product, productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return &InsufficientStockError{
			ProductName: product.Name,
			Available:   product.StockLevel,
			Required:    qty,
		}
	}
	return nil
}

// DecreaseFloored removes qty but never takes the stock level below zero.
// Used when reversing purchase-side increments.
func DecreaseFloored(tx *gorm.DB, productID uint, qty int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_level",
			gorm.Expr("CASE WHEN stock_level >= ? THEN stock_level - ? ELSE 0 END", qty, qty)).Error
}

// ReconcilePurchaseUpdate moves a purchase detail's stock effect from its
// old (product, quantity) to the new one. Same product applies only the
// quantity delta.
func ReconcilePurchaseUpdate(tx *gorm.DB, oldProductID uint, oldQty int, newProductID uint, newQty int) error {
	if oldProductID != newProductID {
		if err := DecreaseFloored(tx, oldProductID, oldQty); err != nil {
			return err
		}
		return Increase(tx, newProductID, newQty)
	}
	switch delta := newQty - oldQty; {
	case delta > 0:
		return Increase(tx, newProductID, delta)
	case delta < 0:
		return DecreaseFloored(tx, newProductID, -delta)
	}
	return nil
}

// ReconcileSaleUpdate mirrors ReconcilePurchaseUpdate with the sale sign:
// the old consumption is restored, the new one is taken with a sufficiency
// check. For the same product only a net increase in consumption is checked.
func ReconcileSaleUpdate(tx *gorm.DB, oldProductID uint, oldQty int, newProductID uint, newQty int) error {
	if oldProductID != newProductID {
		if err := Increase(tx, oldProductID, oldQty); err != nil {
			return err
		}
		return Decrease(tx, newProductID, newQty)
	}
	switch delta := newQty - oldQty; {
	case delta > 0:
		return Decrease(tx, newProductID, delta)
	case delta < 0:
		return Increase(tx, newProductID, -delta)
	}
	return nil
}

// RecomputePurchaseTotal overwrites the purchase's total amount with the sum
// of its current detail subtotals.
func RecomputePurchaseTotal(tx *gorm.DB, purchaseID uint) error {
	var row struct {
		Total decimal.Decimal
	}
	if err := tx.Model(&models.PurchaseDetail{}).
		Where("purchase_id = ?", purchaseID).
		Select("COALESCE(SUM(sub_total), 0) AS total").
		Scan(&row).Error; err != nil {
		return err
	}
	return tx.Model(&models.Purchase{}).
		Where("id = ?", purchaseID).
		UpdateColumn("total_amount", row.Total).Error
}

// RecomputeSaleTotals overwrites the sale's total amount with the sum of its
// detail subtotals and rederives the net amount (total - discount + tax).
func RecomputeSaleTotals(tx *gorm.DB, saleID uint) error {
	var sale models.Sale
	err := tx.First(&sale, saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var row struct {
		Total decimal.Decimal
	}
	if err := tx.Model(&models.SaleDetail{}).
		Where("sale_id = ?", saleID).
		Select("COALESCE(SUM(sub_total), 0) AS total").
		Scan(&row).Error; err != nil {
		return err
	}

	net := row.Total.Sub(sale.Discount).Add(sale.Tax)
	return tx.Model(&models.Sale{}).
		Where("id = ?", saleID).
		UpdateColumns(map[string]interface{}{
			"total_amount": row.Total,
			"net_amount":   net,
		}).Error
}
