package purchasing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unexpected server error"})
		},
	})

	app.Post("/api/purchases", CreatePurchaseHandler())
	app.Delete("/api/purchases/:id", DeletePurchaseHandler())
	app.Post("/api/purchase-details", CreatePurchaseDetailHandler())
	app.Put("/api/purchase-details/:id", UpdatePurchaseDetailHandler())
	app.Delete("/api/purchase-details/:id", DeletePurchaseDetailHandler())
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func currentStock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, database.DB.First(&p, id).Error)
	return p.StockLevel
}

func purchaseTotal(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	var p models.Purchase
	require.NoError(t, database.DB.First(&p, id).Error)
	return p.TotalAmount
}

func TestCreatePurchaseAppliesStockAndTotal(t *testing.T) {
	app := setupApp(t)

	a := models.Product{Name: "A", StockLevel: 2}
	b := models.Product{Name: "B", StockLevel: 0}
	require.NoError(t, database.DB.Create(&a).Error)
	require.NoError(t, database.DB.Create(&b).Error)

	resp := doJSON(t, app, "POST", "/api/purchases", fiber.Map{
		"details": []fiber.Map{
			{"product_id": a.ID, "quantity": 3, "unit_cost": 10},
			{"product_id": b.ID, "quantity": 7, "unit_cost": 2},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var purchase models.Purchase
	decodeBody(t, resp, &purchase)

	assert.Equal(t, 5, currentStock(t, a.ID))
	assert.Equal(t, 7, currentStock(t, b.ID))
	assert.True(t, purchaseTotal(t, purchase.ID).Equal(decimal.NewFromInt(44)))
	assert.Len(t, purchase.Details, 2)
}

func TestUpdatePurchaseDetailAppliesQuantityDelta(t *testing.T) {
	app := setupApp(t)

	p := models.Product{Name: "Widget", StockLevel: 0}
	require.NoError(t, database.DB.Create(&p).Error)
	purchase := models.Purchase{}
	require.NoError(t, database.DB.Create(&purchase).Error)

	var detail models.PurchaseDetail
	resp := doJSON(t, app, "POST", "/api/purchase-details", fiber.Map{
		"purchase_id": purchase.ID,
		"product_id":  p.ID,
		"quantity":    5,
		"unit_cost":   3,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &detail)
	assert.Equal(t, 5, currentStock(t, p.ID))
	assert.True(t, purchaseTotal(t, purchase.ID).Equal(decimal.NewFromInt(15)))

	// 5 -> 8 raises stock by 3 and the total to 24
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/purchase-details/%d", detail.ID), fiber.Map{
		"purchase_id": purchase.ID,
		"product_id":  p.ID,
		"quantity":    8,
		"unit_cost":   3,
	})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 8, currentStock(t, p.ID))
	assert.True(t, purchaseTotal(t, purchase.ID).Equal(decimal.NewFromInt(24)))

	// 8 -> 2 lowers stock by 6
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/purchase-details/%d", detail.ID), fiber.Map{
		"purchase_id": purchase.ID,
		"product_id":  p.ID,
		"quantity":    2,
		"unit_cost":   3,
	})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 2, currentStock(t, p.ID))
	assert.True(t, purchaseTotal(t, purchase.ID).Equal(decimal.NewFromInt(6)))
}

func TestUpdatePurchaseDetailProductSwitch(t *testing.T) {
	app := setupApp(t)

	a := models.Product{Name: "A", StockLevel: 0}
	b := models.Product{Name: "B", StockLevel: 1}
	require.NoError(t, database.DB.Create(&a).Error)
	require.NoError(t, database.DB.Create(&b).Error)
	purchase := models.Purchase{}
	require.NoError(t, database.DB.Create(&purchase).Error)

	var detail models.PurchaseDetail
	resp := doJSON(t, app, "POST", "/api/purchase-details", fiber.Map{
		"purchase_id": purchase.ID,
		"product_id":  a.ID,
		"quantity":    4,
		"unit_cost":   1,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &detail)
	assert.Equal(t, 4, currentStock(t, a.ID))

	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/purchase-details/%d", detail.ID), fiber.Map{
		"purchase_id": purchase.ID,
		"product_id":  b.ID,
		"quantity":    4,
		"unit_cost":   1,
	})
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, currentStock(t, a.ID))
	assert.Equal(t, 5, currentStock(t, b.ID))
}

func TestDeletePurchaseDetailFloorsAtZero(t *testing.T) {
	app := setupApp(t)

	p := models.Product{Name: "Widget", StockLevel: 0}
	require.NoError(t, database.DB.Create(&p).Error)
	purchase := models.Purchase{}
	require.NoError(t, database.DB.Create(&purchase).Error)

	var detail models.PurchaseDetail
	resp := doJSON(t, app, "POST", "/api/purchase-details", fiber.Map{
		"purchase_id": purchase.ID,
		"product_id":  p.ID,
		"quantity":    6,
		"unit_cost":   2,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &detail)
	assert.Equal(t, 6, currentStock(t, p.ID))

	// a sale elsewhere already consumed part of the received stock
	require.NoError(t, database.DB.Model(&models.Product{}).
		Where("id = ?", p.ID).
		UpdateColumn("stock_level", 2).Error)

	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/purchase-details/%d", detail.ID), nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, currentStock(t, p.ID))
	assert.True(t, purchaseTotal(t, purchase.ID).Equal(decimal.Zero))
}

func TestDeletePurchaseReversesAllLines(t *testing.T) {
	app := setupApp(t)

	a := models.Product{Name: "A", StockLevel: 0}
	b := models.Product{Name: "B", StockLevel: 3}
	require.NoError(t, database.DB.Create(&a).Error)
	require.NoError(t, database.DB.Create(&b).Error)

	resp := doJSON(t, app, "POST", "/api/purchases", fiber.Map{
		"details": []fiber.Map{
			{"product_id": a.ID, "quantity": 5, "unit_cost": 1},
			{"product_id": b.ID, "quantity": 2, "unit_cost": 1},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var purchase models.Purchase
	decodeBody(t, resp, &purchase)

	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/purchases/%d", purchase.ID), nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	assert.Equal(t, 0, currentStock(t, a.ID))
	assert.Equal(t, 3, currentStock(t, b.ID))

	var detailCount int64
	database.DB.Model(&models.PurchaseDetail{}).Count(&detailCount)
	assert.Zero(t, detailCount)
}
