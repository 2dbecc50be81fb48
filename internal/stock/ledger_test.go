package stock

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, StockLevel: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.StockLevel
}

func TestIncreaseDecreaseRoundTrip(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Widget", 10)

	require.NoError(t, Increase(db, p.ID, 5))
	assert.Equal(t, 15, stockOf(t, db, p.ID))

	require.NoError(t, Decrease(db, p.ID, 3))
	assert.Equal(t, 12, stockOf(t, db, p.ID))

	require.NoError(t, Increase(db, p.ID, 3))
	require.NoError(t, Decrease(db, p.ID, 5))
	assert.Equal(t, 10, stockOf(t, db, p.ID))
}

func TestDecreaseInsufficientLeavesStockUntouched(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Widget", 4)

	err := Decrease(db, p.ID, 9)
	require.Error(t, err)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Widget", insufficient.ProductName)
	assert.Equal(t, 4, insufficient.Available)
	assert.Equal(t, 9, insufficient.Required)
	assert.Equal(t, "Insufficient stock for product Widget. Available: 4, Required: 9", err.Error())

	assert.Equal(t, 4, stockOf(t, db, p.ID))
}

func TestDecreaseMissingProductIsNoOp(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, Decrease(db, 999, 5))
	require.NoError(t, Increase(db, 999, 5))
}

func TestDecreaseFlooredStopsAtZero(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Widget", 3)

	require.NoError(t, DecreaseFloored(db, p.ID, 10))
	assert.Equal(t, 0, stockOf(t, db, p.ID))

	q := seedProduct(t, db, "Gadget", 10)
	require.NoError(t, DecreaseFloored(db, q.ID, 4))
	assert.Equal(t, 6, stockOf(t, db, q.ID))
}

func TestReconcilePurchaseUpdateSameProduct(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Widget", 10)

	// quantity 5 -> 8 adds the delta
	require.NoError(t, ReconcilePurchaseUpdate(db, p.ID, 5, p.ID, 8))
	assert.Equal(t, 13, stockOf(t, db, p.ID))

	// quantity 8 -> 5 takes it back
	require.NoError(t, ReconcilePurchaseUpdate(db, p.ID, 8, p.ID, 5))
	assert.Equal(t, 10, stockOf(t, db, p.ID))

	// no change, no write
	require.NoError(t, ReconcilePurchaseUpdate(db, p.ID, 5, p.ID, 5))
	assert.Equal(t, 10, stockOf(t, db, p.ID))
}

func TestReconcilePurchaseUpdateProductSwitch(t *testing.T) {
	db := setupDB(t)
	a := seedProduct(t, db, "A", 10)
	b := seedProduct(t, db, "B", 2)

	require.NoError(t, ReconcilePurchaseUpdate(db, a.ID, 6, b.ID, 6))
	assert.Equal(t, 4, stockOf(t, db, a.ID))
	assert.Equal(t, 8, stockOf(t, db, b.ID))
}

func TestReconcileSaleUpdateSameProduct(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Widget", 10)

	// selling 2 more consumes 2 more
	require.NoError(t, ReconcileSaleUpdate(db, p.ID, 3, p.ID, 5))
	assert.Equal(t, 8, stockOf(t, db, p.ID))

	// selling 4 fewer restores 4
	require.NoError(t, ReconcileSaleUpdate(db, p.ID, 5, p.ID, 1))
	assert.Equal(t, 12, stockOf(t, db, p.ID))
}

func TestReconcileSaleUpdateInsufficientDelta(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Widget", 3)

	err := ReconcileSaleUpdate(db, p.ID, 2, p.ID, 10)
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 8, insufficient.Required)
	assert.Equal(t, 3, stockOf(t, db, p.ID))
}

func TestReconcileSaleUpdateProductSwitch(t *testing.T) {
	db := setupDB(t)
	a := seedProduct(t, db, "A", 5)
	b := seedProduct(t, db, "B", 10)

	require.NoError(t, ReconcileSaleUpdate(db, a.ID, 4, b.ID, 4))
	assert.Equal(t, 9, stockOf(t, db, a.ID))
	assert.Equal(t, 6, stockOf(t, db, b.ID))
}

func TestRecomputePurchaseTotal(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Widget", 0)

	purchase := models.Purchase{}
	require.NoError(t, db.Create(&purchase).Error)

	details := []models.PurchaseDetail{
		{PurchaseID: purchase.ID, ProductID: p.ID, Quantity: 2, UnitCost: decimal.NewFromInt(10), SubTotal: decimal.NewFromInt(20)},
		{PurchaseID: purchase.ID, ProductID: p.ID, Quantity: 1, UnitCost: decimal.NewFromFloat(5.5), SubTotal: decimal.NewFromFloat(5.5)},
	}
	require.NoError(t, db.Create(&details).Error)

	require.NoError(t, RecomputePurchaseTotal(db, purchase.ID))

	var got models.Purchase
	require.NoError(t, db.First(&got, purchase.ID).Error)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromFloat(25.5)), "got %s", got.TotalAmount)
}

func TestRecomputeSaleTotalsAppliesDiscountAndTax(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Widget", 0)

	sale := models.Sale{
		Discount: decimal.NewFromInt(10),
		Tax:      decimal.NewFromInt(4),
	}
	require.NoError(t, db.Create(&sale).Error)

	detail := models.SaleDetail{
		SaleID: sale.ID, ProductID: p.ID,
		Quantity: 5, UnitPrice: decimal.NewFromInt(20), SubTotal: decimal.NewFromInt(100),
	}
	require.NoError(t, db.Create(&detail).Error)

	require.NoError(t, RecomputeSaleTotals(db, sale.ID))

	var got models.Sale
	require.NoError(t, db.First(&got, sale.ID).Error)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(100)), "got %s", got.TotalAmount)
	assert.True(t, got.NetAmount.Equal(decimal.NewFromInt(94)), "got %s", got.NetAmount)
}

func TestRecomputeSaleTotalsMissingSaleIsNoOp(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, RecomputeSaleTotals(db, 42))
}
