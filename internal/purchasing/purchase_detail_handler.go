package purchasing

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
	"stock-backend/internal/stock"
)

type CreatePurchaseDetailRequest struct {
	PurchaseID uint            `json:"purchase_id"`
	ProductID  uint            `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

type UpdatePurchaseDetailRequest struct {
	PurchaseDetailID uint            `json:"purchase_detail_id"`
	PurchaseID       uint            `json:"purchase_id"`
	ProductID        uint            `json:"product_id"`
	Quantity         int             `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
}

type PurchaseDetailSummary struct {
	TotalLines    int64           `json:"total_lines"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type ProductOption struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
}

type PurchaseOption struct {
	PurchaseID   uint   `json:"purchase_id"`
	SupplierName string `json:"supplier_name"`
}

// GET /api/purchase-details
func ListPurchaseDetailsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var details []models.PurchaseDetail
		err := database.DB.
			Preload("Product").
			Order("id asc").
			Find(&details).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchase details")
		}
		return c.JSON(details)
	}
}

// GET /api/purchase-details/:id
func GetPurchaseDetailHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var detail models.PurchaseDetail
		err := database.DB.
			Preload("Product").
			First(&detail, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Purchase detail not found")
		}
		return c.JSON(detail)
	}
}

// POST /api/purchase-details
// Adding a line raises stock and the parent total in one transaction.
func CreatePurchaseDetailHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePurchaseDetailRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.PurchaseID == 0 || body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "purchase_id and product_id are required")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be positive")
		}

		var purchase models.Purchase
		if err := database.DB.First(&purchase, "id = ?", body.PurchaseID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Purchase not found")
		}

		detail := models.PurchaseDetail{
			PurchaseID: body.PurchaseID,
			ProductID:  body.ProductID,
			Quantity:   body.Quantity,
			UnitCost:   body.UnitCost,
			SubTotal:   body.UnitCost.Mul(decimal.NewFromInt(int64(body.Quantity))),
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
			if err := stock.Increase(tx, detail.ProductID, detail.Quantity); err != nil {
				return err
			}
			return stock.RecomputePurchaseTotal(tx, detail.PurchaseID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create purchase detail")
		}

		return c.Status(fiber.StatusCreated).JSON(detail)
	}
}

// PUT /api/purchase-details/:id
// Stock moves by the delta between the old and new line, and both the
// old and new parent totals are recomputed when the line moves.
func UpdatePurchaseDetailHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdatePurchaseDetailRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.PurchaseDetailID != 0 && body.PurchaseDetailID != uint(id) {
			return fiber.NewError(fiber.StatusBadRequest, "ID mismatch")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be positive")
		}

		var detail models.PurchaseDetail
		if err := database.DB.First(&detail, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Purchase detail not found")
		}

		oldProductID := detail.ProductID
		oldQuantity := detail.Quantity
		oldPurchaseID := detail.PurchaseID

		if body.PurchaseID != 0 {
			detail.PurchaseID = body.PurchaseID
		}
		if body.ProductID != 0 {
			detail.ProductID = body.ProductID
		}
		detail.Quantity = body.Quantity
		detail.UnitCost = body.UnitCost
		detail.SubTotal = body.UnitCost.Mul(decimal.NewFromInt(int64(body.Quantity)))

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&detail).Error; err != nil {
				return err
			}
			if err := stock.ReconcilePurchaseUpdate(tx, oldProductID, oldQuantity, detail.ProductID, detail.Quantity); err != nil {
				return err
			}
			if err := stock.RecomputePurchaseTotal(tx, detail.PurchaseID); err != nil {
				return err
			}
			if oldPurchaseID != detail.PurchaseID {
				return stock.RecomputePurchaseTotal(tx, oldPurchaseID)
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update purchase detail")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/purchase-details/:id
// Removing a line takes the received quantity back out, floored at zero.
func DeletePurchaseDetailHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var detail models.PurchaseDetail
		if err := database.DB.First(&detail, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Purchase detail not found")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := stock.DecreaseFloored(tx, detail.ProductID, detail.Quantity); err != nil {
				return err
			}
			if err := tx.Delete(&detail).Error; err != nil {
				return err
			}
			return stock.RecomputePurchaseTotal(tx, detail.PurchaseID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete purchase detail")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/purchase-details/top?n=5
func TopPurchaseDetailsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 5)
		var details []models.PurchaseDetail
		err := database.DB.
			Preload("Product").
			Order("sub_total desc").
			Limit(n).
			Find(&details).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchase details")
		}
		return c.JSON(details)
	}
}

// GET /api/purchase-details/filter?purchaseId=&productId=
func FilterPurchaseDetailsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.PurchaseDetail{}).Preload("Product")

		if purchaseID := c.QueryInt("purchaseId", 0); purchaseID > 0 {
			dbq = dbq.Where("purchase_id = ?", purchaseID)
		}
		if productID := c.QueryInt("productId", 0); productID > 0 {
			dbq = dbq.Where("product_id = ?", productID)
		}

		var details []models.PurchaseDetail
		if err := dbq.Find(&details).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not filter purchase details")
		}
		return c.JSON(details)
	}
}

// GET /api/purchase-details/by-purchase/:purchaseId
func PurchaseDetailsByPurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		purchaseID, err := c.ParamsInt("purchaseId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid purchase id")
		}

		var details []models.PurchaseDetail
		err = database.DB.
			Preload("Product").
			Where("purchase_id = ?", purchaseID).
			Find(&details).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchase details")
		}
		return c.JSON(details)
	}
}

// GET /api/purchase-details/by-product/:productId
func PurchaseDetailsByProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("productId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var details []models.PurchaseDetail
		err = database.DB.
			Where("product_id = ?", productID).
			Find(&details).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchase details")
		}
		return c.JSON(details)
	}
}

// GET /api/purchase-details/summary
func PurchaseDetailSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var summary PurchaseDetailSummary
		err := database.DB.Model(&models.PurchaseDetail{}).
			Select(`COUNT(*) AS total_lines,
				COALESCE(SUM(quantity), 0) AS total_quantity,
				COALESCE(SUM(sub_total), 0) AS total_amount`).
			Scan(&summary).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load purchase detail summary")
		}
		return c.JSON(summary)
	}
}

// GET /api/purchase-details/dropdown/products
func PurchaseDetailProductDropdownHandler() fiber.Handler {
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

// GET /api/purchase-details/dropdown/purchases
func PurchaseDetailPurchaseDropdownHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var options []PurchaseOption
		err := database.DB.Model(&models.Purchase{}).
			Select("purchases.id AS purchase_id, COALESCE(suppliers.name, '') AS supplier_name").
			Joins("LEFT JOIN suppliers ON suppliers.id = purchases.supplier_id").
			Order("purchases.id desc").
			Scan(&options).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load purchases")
		}
		return c.JSON(options)
	}
}
