package sales

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
	"stock-backend/internal/stock"
)

type SaleDetailInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateSaleRequest struct {
	UserID   *uint             `json:"user_id"`
	SaleDate *time.Time        `json:"sale_date"`
	Discount *decimal.Decimal  `json:"discount"`
	Tax      *decimal.Decimal  `json:"tax"`
	Details  []SaleDetailInput `json:"details"`
}

type UpdateSaleRequest struct {
	SaleID   uint             `json:"sale_id"`
	UserID   *uint            `json:"user_id"`
	SaleDate *time.Time       `json:"sale_date"`
	Discount *decimal.Decimal `json:"discount"`
	Tax      *decimal.Decimal `json:"tax"`
}

type SaleSummary struct {
	TotalSales  int64           `json:"total_sales"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	NetAmount   decimal.Decimal `json:"net_amount"`
}

type UserOption struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// stockError maps insufficient stock onto a 400 with the ledger's
// message, leaving everything else as a 500.
func stockError(err error, fallback string) error {
	var insufficient *stock.InsufficientStockError
	if errors.As(err, &insufficient) {
		return fiber.NewError(fiber.StatusBadRequest, insufficient.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}

// GET /api/sales
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sales []models.Sale
		err := database.DB.
			Preload("User").
			Preload("Details").
			Preload("Details.Product").
			Order("id asc").
			Find(&sales).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sales")
		}
		return c.JSON(sales)
	}
}

// GET /api/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sale models.Sale
		err := database.DB.
			Preload("User").
			Preload("Details").
			Preload("Details.Product").
			First(&sale, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale not found")
		}
		return c.JSON(sale)
	}
}

// POST /api/sales
// Every line must pass the stock check or the whole sale rolls back.
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		for _, d := range body.Details {
			if d.ProductID == 0 || d.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Each detail needs a product and a positive quantity")
			}
		}

		saleDate := time.Now()
		if body.SaleDate != nil {
			saleDate = *body.SaleDate
		}

		sale := models.Sale{
			UserID:   body.UserID,
			SaleDate: saleDate,
		}
		if body.Discount != nil {
			sale.Discount = *body.Discount
		}
		if body.Tax != nil {
			sale.Tax = *body.Tax
		}
		for _, d := range body.Details {
			sale.Details = append(sale.Details, models.SaleDetail{
				ProductID: d.ProductID,
				Quantity:  d.Quantity,
				UnitPrice: d.UnitPrice,
				SubTotal:  d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))),
			})
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&sale).Error; err != nil {
				return err
			}
			for _, d := range sale.Details {
				if err := stock.Decrease(tx, d.ProductID, d.Quantity); err != nil {
					return err
				}
			}
			return stock.RecomputeSaleTotals(tx, sale.ID)
		})
		if err != nil {
			return stockError(err, "Could not create sale")
		}

		database.DB.Preload("Details").First(&sale, sale.ID)
		return c.Status(fiber.StatusCreated).JSON(sale)
	}
}

// PUT /api/sales/:id
// Header fields only. Line items go through the sale detail endpoints.
func UpdateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.SaleID != 0 && body.SaleID != uint(id) {
			return fiber.NewError(fiber.StatusBadRequest, "ID mismatch")
		}

		var sale models.Sale
		if err := database.DB.First(&sale, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale not found")
		}

		sale.UserID = body.UserID
		if body.SaleDate != nil {
			sale.SaleDate = *body.SaleDate
		}
		if body.Discount != nil {
			sale.Discount = *body.Discount
		}
		if body.Tax != nil {
			sale.Tax = *body.Tax
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&sale).Error; err != nil {
				return err
			}
			return stock.RecomputeSaleTotals(tx, sale.ID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update sale")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/sales/:id
// Sold quantities go back into stock.
func DeleteSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sale models.Sale
		err := database.DB.Preload("Details").First(&sale, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sale not found")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, d := range sale.Details {
				if err := stock.Increase(tx, d.ProductID, d.Quantity); err != nil {
					return err
				}
			}
			if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleDetail{}).Error; err != nil {
				return err
			}
			return tx.Delete(&sale).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete sale")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/sales/top?n=5
func TopSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 5)
		var sales []models.Sale
		err := database.DB.
			Preload("User").
			Order("net_amount desc").
			Limit(n).
			Find(&sales).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sales")
		}
		return c.JSON(sales)
	}
}

// GET /api/sales/filter?userId=&fromDate=&toDate=
func FilterSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Sale{}).Preload("User")

		if userID := c.QueryInt("userId", 0); userID > 0 {
			dbq = dbq.Where("user_id = ?", userID)
		}
		if from := c.Query("fromDate"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid fromDate")
			}
			dbq = dbq.Where("sale_date >= ?", t)
		}
		if to := c.Query("toDate"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid toDate")
			}
			dbq = dbq.Where("sale_date < ?", t.AddDate(0, 0, 1))
		}

		var sales []models.Sale
		if err := dbq.Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not filter sales")
		}
		return c.JSON(sales)
	}
}

// GET /api/sales/daily?date=2026-01-15
// Defaults to today.
func DailySalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		day := time.Now()
		if q := c.Query("date"); q != "" {
			t, err := time.Parse("2006-01-02", q)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid date")
			}
			day = t
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

		var sales []models.Sale
		err := database.DB.
			Preload("Details").
			Where("sale_date >= ? AND sale_date < ?", start, start.AddDate(0, 0, 1)).
			Find(&sales).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sales")
		}
		return c.JSON(sales)
	}
}

// GET /api/sales/by-date-range?fromDate=&toDate=
func SalesByDateRangeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := time.Parse("2006-01-02", c.Query("fromDate"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid fromDate")
		}
		to, err := time.Parse("2006-01-02", c.Query("toDate"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid toDate")
		}
		if to.Before(from) {
			return fiber.NewError(fiber.StatusBadRequest, "toDate must not be before fromDate")
		}

		var sales []models.Sale
		err = database.DB.
			Preload("User").
			Where("sale_date >= ? AND sale_date < ?", from, to.AddDate(0, 0, 1)).
			Order("sale_date asc").
			Find(&sales).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sales")
		}
		return c.JSON(sales)
	}
}

// GET /api/sales/by-user/:userId
func SalesByUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := c.ParamsInt("userId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
		}

		var sales []models.Sale
		err = database.DB.
			Preload("Details").
			Where("user_id = ?", userID).
			Find(&sales).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sales")
		}
		return c.JSON(sales)
	}
}

// GET /api/sales/recent?days=7
func RecentSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 7)
		since := time.Now().AddDate(0, 0, -days)

		var sales []models.Sale
		err := database.DB.
			Preload("User").
			Where("sale_date >= ?", since).
			Order("sale_date desc").
			Find(&sales).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list sales")
		}
		return c.JSON(sales)
	}
}

// GET /api/sales/summary
func SaleSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var summary SaleSummary
		err := database.DB.Model(&models.Sale{}).
			Select(`COUNT(*) AS total_sales,
				COALESCE(SUM(total_amount), 0) AS total_amount,
				COALESCE(SUM(net_amount), 0) AS net_amount`).
			Scan(&summary).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load sale summary")
		}
		return c.JSON(summary)
	}
}

// GET /api/sales/dropdown/users
func SaleUserDropdownHandler() fiber.Handler {
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
