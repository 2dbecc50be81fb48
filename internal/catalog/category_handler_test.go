package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
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

	app.Get("/api/categories", ListCategoriesHandler())
	app.Post("/api/categories", CreateCategoryHandler())
	app.Delete("/api/categories/:id", DeleteCategoryHandler())
	app.Delete("/api/suppliers/:id", DeleteSupplierHandler())
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

func TestListCategoriesPaginates(t *testing.T) {
	app := setupApp(t)

	for i := 1; i <= 12; i++ {
		require.NoError(t, database.DB.Create(&models.Category{Name: fmt.Sprintf("Cat %02d", i)}).Error)
	}

	resp := doJSON(t, app, "GET", "/api/categories?pageNumber=2&pageSize=5", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		TotalRecords int64
		PageSize     int
		CurrentPage  int
		TotalPages   int
		Categories   []models.Category
	}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &body))

	assert.Equal(t, int64(12), body.TotalRecords)
	assert.Equal(t, 5, body.PageSize)
	assert.Equal(t, 2, body.CurrentPage)
	assert.Equal(t, 3, body.TotalPages)
	require.Len(t, body.Categories, 5)
	assert.Equal(t, "Cat 06", body.Categories[0].Name)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "POST", "/api/categories", fiber.Map{"category_name": "  "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/categories", fiber.Map{"category_name": "Beverages"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestDeleteCategoryBlockedByProducts(t *testing.T) {
	app := setupApp(t)

	category := models.Category{Name: "Beverages"}
	require.NoError(t, database.DB.Create(&category).Error)
	require.NoError(t, database.DB.Create(&models.Product{Name: "Cola", CategoryID: &category.ID}).Error)

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/api/categories/%d", category.ID), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	database.DB.Model(&models.Category{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// once the product is gone the delete goes through
	require.NoError(t, database.DB.Where("1 = 1").Delete(&models.Product{}).Error)
	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/categories/%d", category.ID), nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestDeleteSupplierBlockedByReferences(t *testing.T) {
	app := setupApp(t)

	withProducts := models.Supplier{Name: "Acme"}
	require.NoError(t, database.DB.Create(&withProducts).Error)
	require.NoError(t, database.DB.Create(&models.Product{Name: "Cola", SupplierID: &withProducts.ID}).Error)

	withPurchases := models.Supplier{Name: "Globex"}
	require.NoError(t, database.DB.Create(&withPurchases).Error)
	require.NoError(t, database.DB.Create(&models.Purchase{SupplierID: &withPurchases.ID}).Error)

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/api/suppliers/%d", withProducts.ID), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/suppliers/%d", withPurchases.ID), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	free := models.Supplier{Name: "Initech"}
	require.NoError(t, database.DB.Create(&free).Error)
	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/suppliers/%d", free.ID), nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
