package inventory

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

type CreateProductRequest struct {
	Name         string          `json:"product_name"`
	CategoryID   *uint           `json:"category_id"`
	SupplierID   *uint           `json:"supplier_id"`
	Unit         string          `json:"unit"`
	Description  string          `json:"description"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	StockLevel   *int            `json:"stock_level"`
}

type UpdateProductRequest struct {
	ProductID    uint            `json:"product_id"`
	Name         string          `json:"product_name"`
	CategoryID   *uint           `json:"category_id"`
	SupplierID   *uint           `json:"supplier_id"`
	Unit         string          `json:"unit"`
	Description  string          `json:"description"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	StockLevel   *int            `json:"stock_level"`
}

type UpdateStockRequest struct {
	StockLevel int `json:"stock_level"`
}

type CategoryOption struct {
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type SupplierOption struct {
	SupplierID   uint   `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
}

// GET /api/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		err := database.DB.
			Preload("Category").
			Preload("Supplier").
			Order("id asc").
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}
		return c.JSON(products)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		err := database.DB.
			Preload("Category").
			Preload("Supplier").
			First(&product, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return c.JSON(product)
	}
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Product name is required")
		}

		product := models.Product{
			Name:         body.Name,
			CategoryID:   body.CategoryID,
			SupplierID:   body.SupplierID,
			Unit:         body.Unit,
			Description:  body.Description,
			CostPrice:    body.CostPrice,
			SellingPrice: body.SellingPrice,
		}
		if body.StockLevel != nil && *body.StockLevel > 0 {
			product.StockLevel = *body.StockLevel
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}
		return c.Status(fiber.StatusCreated).JSON(product)
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.ProductID != 0 && body.ProductID != uint(id) {
			return fiber.NewError(fiber.StatusBadRequest, "ID mismatch")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		product.Name = strings.TrimSpace(body.Name)
		if product.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Product name is required")
		}
		product.CategoryID = body.CategoryID
		product.SupplierID = body.SupplierID
		product.Unit = body.Unit
		product.Description = body.Description
		product.CostPrice = body.CostPrice
		product.SellingPrice = body.SellingPrice
		if body.StockLevel != nil {
			product.StockLevel = *body.StockLevel
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/products/:id
// Blocked while purchase or sale lines still reference the product.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		if err := database.DB.First(&product, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var purchaseLines int64
		database.DB.Model(&models.PurchaseDetail{}).Where("product_id = ?", product.ID).Count(&purchaseLines)
		if purchaseLines > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot delete product that has associated purchase details.")
		}

		var saleLines int64
		database.DB.Model(&models.SaleDetail{}).Where("product_id = ?", product.ID).Count(&saleLines)
		if saleLines > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot delete product that has associated sale details.")
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/products/top?n=5
func TopProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 5)
		var products []models.Product
		err := database.DB.
			Preload("Category").
			Preload("Supplier").
			Limit(n).
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}
		return c.JSON(products)
	}
}

// GET /api/products/filter?productId=&productName=&categoryId=&supplierId=
func FilterProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{}).
			Preload("Category").
			Preload("Supplier")

		if id := c.QueryInt("productId", 0); id > 0 {
			dbq = dbq.Where("id = ?", id)
		}
		if name := c.Query("productName"); name != "" {
			dbq = dbq.Where("name LIKE ?", "%"+name+"%")
		}
		if categoryID := c.QueryInt("categoryId", 0); categoryID > 0 {
			dbq = dbq.Where("category_id = ?", categoryID)
		}
		if supplierID := c.QueryInt("supplierId", 0); supplierID > 0 {
			dbq = dbq.Where("supplier_id = ?", supplierID)
		}

		var products []models.Product
		if err := dbq.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not filter products")
		}
		return c.JSON(products)
	}
}

// GET /api/products/by-category/:categoryId
func ProductsByCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		categoryID, err := c.ParamsInt("categoryId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid category id")
		}

		var products []models.Product
		err = database.DB.
			Preload("Supplier").
			Where("category_id = ?", categoryID).
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}
		return c.JSON(products)
	}
}

// GET /api/products/by-supplier/:supplierId
func ProductsBySupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := c.ParamsInt("supplierId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid supplier id")
		}

		var products []models.Product
		err = database.DB.
			Preload("Category").
			Where("supplier_id = ?", supplierID).
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}
		return c.JSON(products)
	}
}

// GET /api/products/low-stock?threshold=10
func LowStockProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold := c.QueryInt("threshold", 10)
		var products []models.Product
		err := database.DB.
			Preload("Category").
			Preload("Supplier").
			Where("stock_level <= ?", threshold).
			Order("stock_level asc").
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}
		return c.JSON(products)
	}
}

// PUT /api/products/:id/stock
// Direct stock correction, outside the purchase/sale flow.
func UpdateProductStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.StockLevel < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stock level cannot be negative")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		err := database.DB.Model(&product).
			UpdateColumn("stock_level", body.StockLevel).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update stock")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/products/dropdown/categories
func ProductCategoryDropdownHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var options []CategoryOption
		err := database.DB.Model(&models.Category{}).
			Select("id AS category_id, name AS category_name").
			Order("name asc").
			Scan(&options).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load categories")
		}
		return c.JSON(options)
	}
}

// GET /api/products/dropdown/suppliers
func ProductSupplierDropdownHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var options []SupplierOption
		err := database.DB.Model(&models.Supplier{}).
			Select("id AS supplier_id, name AS supplier_name").
			Order("name asc").
			Scan(&options).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load suppliers")
		}
		return c.JSON(options)
	}
}
