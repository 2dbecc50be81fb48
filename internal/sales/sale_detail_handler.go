package sales

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
	"stock-backend/internal/stock"
)

type CreateSaleDetailRequest struct {
	SaleID    uint            `json:"sale_id"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type UpdateSaleDetailRequest struct {
	SaleDetailID uint            `json:"sale_detail_id"`
	SaleID       uint            `json:"sale_id"`
	ProductID    uint            `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

type SaleDetailSummary struct {
	TotalLines    int64           `json:"total_lines"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type ProductOption struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
}

type SaleOption struct {
	SaleID   uint   `json:"sale_id"`
	Username string `json:"username"`
}

// GET /api/sale-details
func ListSaleDetailsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var details []models.SaleDetail
		err := database.DB.
			Preload("Product").
			Order("id asc").
			Find(&details).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sale details")
		}
		return c.JSON(details)
	}
}

// GET /api/sale-details/:id
func GetSaleDetailHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var detail models.SaleDetail
		err := database.DB.
			Preload("Product").
			First(&detail, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale detail not found")
		}
		return c.JSON(detail)
	}
}

// POST /api/sale-details
// The line is only kept if the stock check passes; otherwise nothing
// is written, including the parent total.
func CreateSaleDetailHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleDetailRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.SaleID == 0 || body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "sale_id and product_id are required")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be positive")
		}

		var sale models.Sale
		if err := database.DB.First(&sale, "id = ?", body.SaleID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale not found")
		}

		detail := models.SaleDetail{
			SaleID:    body.SaleID,
			ProductID: body.ProductID,
			Quantity:  body.Quantity,
			UnitPrice: body.UnitPrice,
			SubTotal:  body.UnitPrice.Mul(decimal.NewFromInt(int64(body.Quantity))),
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
			if err := stock.Decrease(tx, detail.ProductID, detail.Quantity); err != nil {
				return err
			}
			return stock.RecomputeSaleTotals(tx, detail.SaleID)
		})
		if err != nil {
			return stockError(err, "Could not create sale detail")
		}

		return c.Status(fiber.StatusCreated).JSON(detail)
	}
}

// PUT /api/sale-details/:id
// Quantity increases are checked against stock; a failed check rolls
// the line back to its previous state.
func UpdateSaleDetailHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdateSaleDetailRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.SaleDetailID != 0 && body.SaleDetailID != uint(id) {
			return fiber.NewError(fiber.StatusBadRequest, "ID mismatch")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be positive")
		}

		var detail models.SaleDetail
		if err := database.DB.First(&detail, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale detail not found")
		}

		oldProductID := detail.ProductID
		oldQuantity := detail.Quantity
		oldSaleID := detail.SaleID

		if body.SaleID != 0 {
			detail.SaleID = body.SaleID
		}
		if body.ProductID != 0 {
			detail.ProductID = body.ProductID
		}
		detail.Quantity = body.Quantity
		detail.UnitPrice = body.UnitPrice
		detail.SubTotal = body.UnitPrice.Mul(decimal.NewFromInt(int64(body.Quantity)))

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&detail).Error; err != nil {
				return err
			}
			if err := stock.ReconcileSaleUpdate(tx, oldProductID, oldQuantity, detail.ProductID, detail.Quantity); err != nil {
				return err
			}
			if err := stock.RecomputeSaleTotals(tx, detail.SaleID); err != nil {
				return err
			}
			if oldSaleID != detail.SaleID {
				return stock.RecomputeSaleTotals(tx, oldSaleID)
			}
			return nil
		})
		if err != nil {
			return stockError(err, "Could not update sale detail")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/sale-details/:id
// The sold quantity goes back into stock.
func DeleteSaleDetailHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var detail models.SaleDetail
		if err := database.DB.First(&detail, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale detail not found")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := stock.Increase(tx, detail.ProductID, detail.Quantity); err != nil {
				return err
			}
			if err := tx.Delete(&detail).Error; err != nil {
				return err
			}
			return stock.RecomputeSaleTotals(tx, detail.SaleID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete sale detail")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/sale-details/top?n=5
func TopSaleDetailsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 5)
		var details []models.SaleDetail
		err := database.DB.
			Preload("Product").
			Order("sub_total desc").
			Limit(n).
			Find(&details).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sale details")
		}
		return c.JSON(details)
	}
}

// GET /api/sale-details/filter?saleId=&productId=
func FilterSaleDetailsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.SaleDetail{}).Preload("Product")

		if saleID := c.QueryInt("saleId", 0); saleID > 0 {
			dbq = dbq.Where("sale_id = ?", saleID)
		}
		if productID := c.QueryInt("productId", 0); productID > 0 {
			dbq = dbq.Where("product_id = ?", productID)
		}

		var details []models.SaleDetail
		if err := dbq.Find(&details).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not filter sale details")
		}
		return c.JSON(details)
	}
}

// GET /api/sale-details/by-sale/:saleId
func SaleDetailsBySaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		saleID, err := c.ParamsInt("saleId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid sale id")
		}

		var details []models.SaleDetail
		err = database.DB.
			Preload("Product").
			Where("sale_id = ?", saleID).
			Find(&details).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sale details")
		}
		return c.JSON(details)
	}
}

// GET /api/sale-details/by-product/:productId
func SaleDetailsByProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("productId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var details []models.SaleDetail
		err = database.DB.
			Where("product_id = ?", productID).
			Find(&details).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sale details")
		}
		return c.JSON(details)
	}
}

// GET /api/sale-details/summary
func SaleDetailSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var summary SaleDetailSummary
		err := database.DB.Model(&models.SaleDetail{}).
			Select(`COUNT(*) AS total_lines,
				COALESCE(SUM(quantity), 0) AS total_quantity,
				COALESCE(SUM(sub_total), 0) AS total_amount`).
			Scan(&summary).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load sale detail summary")
		}
		return c.JSON(summary)
	}
}

// GET /api/sale-details/dropdown/products
func SaleDetailProductDropdownHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var options []ProductOption
		err := database.DB.Model(&models.Product{}).
			Select("id AS product_id, name AS product_name").
			Order("name asc").
			Scan(&options).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load products")
		}
		return c.JSON(options)
	}
}

// GET /api/sale-details/dropdown/sales
func SaleDetailSaleDropdownHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var options []SaleOption
		err := database.DB.Model(&models.Sale{}).
			Select("sales.id AS sale_id, COALESCE(users.username, '') AS username").
			Joins("LEFT JOIN users ON users.id = sales.user_id").
			Order("sales.id desc").
			Scan(&options).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load sales")
		}
		return c.JSON(options)
	}
}
