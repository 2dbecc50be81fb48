package purchasing

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
	"stock-backend/internal/stock"
)

type PurchaseDetailInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type CreatePurchaseRequest struct {
	SupplierID   *uint                 `json:"supplier_id"`
	UserID       *uint                 `json:"user_id"`
	PurchaseDate *time.Time            `json:"purchase_date"`
	Details      []PurchaseDetailInput `json:"details"`
}

type UpdatePurchaseRequest struct {
	PurchaseID   uint       `json:"purchase_id"`
	SupplierID   *uint      `json:"supplier_id"`
	UserID       *uint      `json:"user_id"`
	PurchaseDate *time.Time `json:"purchase_date"`
}

type PurchaseSummary struct {
	TotalPurchases int64           `json:"total_purchases"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

type SupplierOption struct {
	SupplierID   uint   `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
}

type UserOption struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// GET /api/purchases
func ListPurchasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var purchases []models.Purchase
		err := database.DB.
			Preload("Supplier").
			Preload("User").
			Preload("Details").
			Preload("Details.Product").
			Order("id asc").
			Find(&purchases).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchases")
		}
		return c.JSON(purchases)
	}
}

// GET /api/purchases/:id
func GetPurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var purchase models.Purchase
		err := database.DB.
			Preload("Supplier").
			Preload("User").
			Preload("Details").
			Preload("Details.Product").
			First(&purchase, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Purchase not found")
		}
		return c.JSON(purchase)
	}
}

// POST /api/purchases
// Inline details are applied to stock in the same transaction.
func CreatePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		for _, d := range body.Details {
			if d.ProductID == 0 || d.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Each detail needs a product and a positive quantity")
			}
		}

		purchaseDate := time.Now()
		if body.PurchaseDate != nil {
			purchaseDate = *body.PurchaseDate
		}

		purchase := models.Purchase{
			SupplierID:   body.SupplierID,
			UserID:       body.UserID,
			PurchaseDate: purchaseDate,
		}
		for _, d := range body.Details {
			purchase.Details = append(purchase.Details, models.PurchaseDetail{
				ProductID: d.ProductID,
				Quantity:  d.Quantity,
				UnitCost:  d.UnitCost,
				SubTotal:  d.UnitCost.Mul(decimal.NewFromInt(int64(d.Quantity))),
			})
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&purchase).Error; err != nil {
				return err
			}
			for _, d := range purchase.Details {
				if err := stock.Increase(tx, d.ProductID, d.Quantity); err != nil {
					return err
				}
			}
			return stock.RecomputePurchaseTotal(tx, purchase.ID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create purchase")
		}

		database.DB.Preload("Details").First(&purchase, purchase.ID)
		return c.Status(fiber.StatusCreated).JSON(purchase)
	}
}

// PUT /api/purchases/:id
// Header fields only. Line items go through the purchase detail endpoints.
func UpdatePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdatePurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.PurchaseID != 0 && body.PurchaseID != uint(id) {
			return fiber.NewError(fiber.StatusBadRequest, "ID mismatch")
		}

		var purchase models.Purchase
		if err := database.DB.First(&purchase, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Purchase not found")
		}

		purchase.SupplierID = body.SupplierID
		purchase.UserID = body.UserID
		if body.PurchaseDate != nil {
			purchase.PurchaseDate = *body.PurchaseDate
		}

		if err := database.DB.Save(&purchase).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update purchase")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/purchases/:id
// Received quantities are taken back out of stock, floored at zero.
func DeletePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var purchase models.Purchase
		err := database.DB.Preload("Details").First(&purchase, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Purchase not found")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, d := range purchase.Details {
				if err := stock.DecreaseFloored(tx, d.ProductID, d.Quantity); err != nil {
					return err
				}
			}
			if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&models.PurchaseDetail{}).Error; err != nil {
				return err
			}
			return tx.Delete(&purchase).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete purchase")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/purchases/top?n=5
func TopPurchasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 5)
		var purchases []models.Purchase
		err := database.DB.
			Preload("Supplier").
			Order("total_amount desc").
			Limit(n).
			Find(&purchases).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchases")
		}
		return c.JSON(purchases)
	}
}

// GET /api/purchases/filter?supplierId=&userId=&fromDate=&toDate=
func FilterPurchasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Purchase{}).
			Preload("Supplier").
			Preload("User")

		if supplierID := c.QueryInt("supplierId", 0); supplierID > 0 {
			dbq = dbq.Where("supplier_id = ?", supplierID)
		}
		if userID := c.QueryInt("userId", 0); userID > 0 {
			dbq = dbq.Where("user_id = ?", userID)
		}
		if from := c.Query("fromDate"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid fromDate")
			}
			dbq = dbq.Where("purchase_date >= ?", t)
		}
		if to := c.Query("toDate"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid toDate")
			}
			dbq = dbq.Where("purchase_date < ?", t.AddDate(0, 0, 1))
		}

		var purchases []models.Purchase
		if err := dbq.Find(&purchases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not filter purchases")
		}
		return c.JSON(purchases)
	}
}

// GET /api/purchases/by-supplier/:supplierId
func PurchasesBySupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := c.ParamsInt("supplierId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid supplier id")
		}

		var purchases []models.Purchase
		err = database.DB.
			Preload("Details").
			Where("supplier_id = ?", supplierID).
			Find(&purchases).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchases")
		}
		return c.JSON(purchases)
	}
}

// GET /api/purchases/by-user/:userId
func PurchasesByUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := c.ParamsInt("userId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
		}

		var purchases []models.Purchase
		err = database.DB.
			Preload("Supplier").
			Where("user_id = ?", userID).
			Find(&purchases).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchases")
		}
		return c.JSON(purchases)
	}
}

// GET /api/purchases/recent?days=7
func RecentPurchasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 7)
		since := time.Now().AddDate(0, 0, -days)

		var purchases []models.Purchase
		err := database.DB.
			Preload("Supplier").
			Where("purchase_date >= ?", since).
			Order("purchase_date desc").
			Find(&purchases).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchases")
		}
		return c.JSON(purchases)
	}
}

// GET /api/purchases/summary
func PurchaseSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var summary PurchaseSummary
		err := database.DB.Model(&models.Purchase{}).
			Select("COUNT(*) AS total_purchases, COALESCE(SUM(total_amount), 0) AS total_amount").
			Scan(&summary).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load purchase summary")
		}
		return c.JSON(summary)
	}
}

// GET /api/purchases/dropdown/suppliers
func PurchaseSupplierDropdownHandler() fiber.Handler {
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

// GET /api/purchases/dropdown/users
func PurchaseUserDropdownHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var options []UserOption
		err := database.DB.Model(&models.User{}).
			Select("id AS user_id, username").
			Order("username asc").
			Scan(&options).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load users")
		}
		return c.JSON(options)
	}
}
