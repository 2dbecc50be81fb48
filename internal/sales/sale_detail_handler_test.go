package sales

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
	"stock-backend/internal/purchasing"
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

	app.Post("/api/sales", CreateSaleHandler())
	app.Delete("/api/sales/:id", DeleteSaleHandler())
	app.Post("/api/sale-details", CreateSaleDetailHandler())
	app.Put("/api/sale-details/:id", UpdateSaleDetailHandler())
	app.Delete("/api/sale-details/:id", DeleteSaleDetailHandler())
	app.Post("/api/purchase-details", purchasing.CreatePurchaseDetailHandler())
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

// Walks a product through a purchase receipt, a sale, a rejected sale
// increase and the removal of the sale line, checking the stock level
// at every step.
func TestStockLifecycleAcrossPurchaseAndSale(t *testing.T) {
	app := setupApp(t)

	product := models.Product{Name: "Widget", StockLevel: 10}
	require.NoError(t, database.DB.Create(&product).Error)
	purchase := models.Purchase{}
	require.NoError(t, database.DB.Create(&purchase).Error)

	// receive 5 more
	resp := doJSON(t, app, "POST", "/api/purchase-details", fiber.Map{
		"purchase_id": purchase.ID,
		"product_id":  product.ID,
		"quantity":    5,
		"unit_cost":   2.5,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 15, currentStock(t, product.ID))

	// sell 3
	sale := models.Sale{}
	require.NoError(t, database.DB.Create(&sale).Error)

	var detail models.SaleDetail
	resp = doJSON(t, app, "POST", "/api/sale-details", fiber.Map{
		"sale_id":    sale.ID,
		"product_id": product.ID,
		"quantity":   3,
		"unit_price": 4,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &detail)
	assert.Equal(t, 12, currentStock(t, product.ID))

	// raising the line beyond what is on hand must fail and change nothing
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/sale-details/%d", detail.ID), fiber.Map{
		"sale_id":    sale.ID,
		"product_id": product.ID,
		"quantity":   99,
		"unit_price": 4,
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var errBody struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &errBody)
	assert.Equal(t, "Insufficient stock for product Widget. Available: 12, Required: 96", errBody.Error)

	assert.Equal(t, 12, currentStock(t, product.ID))
	var after models.SaleDetail
	require.NoError(t, database.DB.First(&after, detail.ID).Error)
	assert.Equal(t, 3, after.Quantity)
	var saleAfter models.Sale
	require.NoError(t, database.DB.First(&saleAfter, sale.ID).Error)
	assert.True(t, saleAfter.TotalAmount.Equal(decimal.NewFromInt(12)), "got %s", saleAfter.TotalAmount)

	// removing the line restores the stock
	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/sale-details/%d", detail.ID), nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 15, currentStock(t, product.ID))
}

func TestCreateSaleRejectsInsufficientStockAtomically(t *testing.T) {
	app := setupApp(t)

	a := models.Product{Name: "A", StockLevel: 10}
	b := models.Product{Name: "B", StockLevel: 1}
	require.NoError(t, database.DB.Create(&a).Error)
	require.NoError(t, database.DB.Create(&b).Error)

	resp := doJSON(t, app, "POST", "/api/sales", fiber.Map{
		"details": []fiber.Map{
			{"product_id": a.ID, "quantity": 4, "unit_price": 10},
			{"product_id": b.ID, "quantity": 5, "unit_price": 10},
		},
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var errBody struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &errBody)
	assert.Equal(t, "Insufficient stock for product B. Available: 1, Required: 5", errBody.Error)

	// the passing line must have been rolled back with the failing one
	assert.Equal(t, 10, currentStock(t, a.ID))
	assert.Equal(t, 1, currentStock(t, b.ID))

	var saleCount, detailCount int64
	database.DB.Model(&models.Sale{}).Count(&saleCount)
	database.DB.Model(&models.SaleDetail{}).Count(&detailCount)
	assert.Zero(t, saleCount)
	assert.Zero(t, detailCount)
}

func TestCreateSaleComputesTotals(t *testing.T) {
	app := setupApp(t)

	p := models.Product{Name: "Widget", StockLevel: 50}
	require.NoError(t, database.DB.Create(&p).Error)

	resp := doJSON(t, app, "POST", "/api/sales", fiber.Map{
		"discount": 10,
		"tax":      4,
		"details": []fiber.Map{
			{"product_id": p.ID, "quantity": 5, "unit_price": 20},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var sale models.Sale
	decodeBody(t, resp, &sale)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(100)), "got %s", sale.TotalAmount)
	assert.True(t, sale.NetAmount.Equal(decimal.NewFromInt(94)), "got %s", sale.NetAmount)
	assert.Equal(t, 45, currentStock(t, p.ID))
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	app := setupApp(t)

	p := models.Product{Name: "Widget", StockLevel: 20}
	require.NoError(t, database.DB.Create(&p).Error)

	resp := doJSON(t, app, "POST", "/api/sales", fiber.Map{
		"details": []fiber.Map{
			{"product_id": p.ID, "quantity": 8, "unit_price": 3},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var sale models.Sale
	decodeBody(t, resp, &sale)
	assert.Equal(t, 12, currentStock(t, p.ID))

	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/sales/%d", sale.ID), nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 20, currentStock(t, p.ID))

	var detailCount int64
	database.DB.Model(&models.SaleDetail{}).Count(&detailCount)
	assert.Zero(t, detailCount)
}
