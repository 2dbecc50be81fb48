package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

type CreateInvoiceRequest struct {
	SaleID             *uint            `json:"sale_id"`
	CustomerID         *uint            `json:"customer_id"`
	InvoiceDate        *time.Time       `json:"invoice_date"`
	DueDate            *time.Time       `json:"due_date"`
	SubTotal           decimal.Decimal  `json:"sub_total"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	TaxPercentage      *decimal.Decimal `json:"tax_percentage"`
	Status             string           `json:"status"`
	Notes              string           `json:"notes"`
}

type UpdateInvoiceRequest struct {
	InvoiceID          uint             `json:"invoice_id"`
	CustomerID         *uint            `json:"customer_id"`
	InvoiceDate        *time.Time       `json:"invoice_date"`
	DueDate            *time.Time       `json:"due_date"`
	SubTotal           decimal.Decimal  `json:"sub_total"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	TaxPercentage      *decimal.Decimal `json:"tax_percentage"`
	Status             string           `json:"status"`
	Notes              string           `json:"notes"`
}

type InvoiceSummary struct {
	TotalInvoices int64           `json:"total_invoices"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PendingCount  int64           `json:"pending_count"`
	PaidCount     int64           `json:"paid_count"`
	OverdueCount  int64           `json:"overdue_count"`
}

// newInvoiceNumber builds numbers like INV-20260831-3F2A9C71.
func newInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

// deriveAmounts fills the discount, tax and total columns from the
// sub total and the optional percentages.
func deriveAmounts(inv *models.Invoice) {
	subTotal := inv.SubTotal

	discount := decimal.Zero
	if inv.DiscountPercentage != nil {
		discount = subTotal.Mul(*inv.DiscountPercentage).Div(decimal.NewFromInt(100))
	}
	taxable := subTotal.Sub(discount)

	tax := decimal.Zero
	if inv.TaxPercentage != nil {
		tax = taxable.Mul(*inv.TaxPercentage).Div(decimal.NewFromInt(100))
	}
	total := taxable.Add(tax)

	inv.DiscountAmount = &discount
	inv.TaxAmount = &tax
	inv.TotalAmount = &total
}

// GET /api/invoices?fromDate=&toDate=&customerId=&status=
func ListInvoicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Invoice{}).Preload("Customer")

		if from := c.Query("fromDate"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid fromDate")
			}
			dbq = dbq.Where("invoice_date >= ?", t)
		}
		if to := c.Query("toDate"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid toDate")
			}
			dbq = dbq.Where("invoice_date < ?", t.AddDate(0, 0, 1))
		}
		if customerID := c.QueryInt("customerId", 0); customerID > 0 {
			dbq = dbq.Where("customer_id = ?", customerID)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var invoices []models.Invoice
		if err := dbq.Order("id desc").Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list invoices")
		}
		return c.JSON(invoices)
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var invoice models.Invoice
		err := database.DB.
			Preload("Customer").
			First(&invoice, "id = ?", c.Params("id")).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}
		return c.JSON(invoice)
	}
}

// POST /api/invoices
func CreateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		now := time.Now()
		invoiceDate := now
		if body.InvoiceDate != nil {
			invoiceDate = *body.InvoiceDate
		}
		dueDate := invoiceDate.AddDate(0, 0, 30)
		if body.DueDate != nil {
			dueDate = *body.DueDate
		}

		status := body.Status
		if status == "" {
			status = models.InvoiceStatusPending
		}

		invoice := models.Invoice{
			InvoiceNumber:      newInvoiceNumber(now),
			SaleID:             body.SaleID,
			CustomerID:         body.CustomerID,
			InvoiceDate:        &invoiceDate,
			DueDate:            &dueDate,
			SubTotal:           body.SubTotal,
			DiscountPercentage: body.DiscountPercentage,
			TaxPercentage:      body.TaxPercentage,
			Status:             status,
			Notes:              body.Notes,
		}
		deriveAmounts(&invoice)

		if err := database.DB.Create(&invoice).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create invoice")
		}
		return c.Status(fiber.StatusCreated).JSON(invoice)
	}
}

// PUT /api/invoices/:id
// The invoice number never changes after creation.
func UpdateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.InvoiceID != 0 && body.InvoiceID != uint(id) {
			return fiber.NewError(fiber.StatusBadRequest, "ID mismatch")
		}

		var invoice models.Invoice
		if err := database.DB.First(&invoice, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}

		invoice.CustomerID = body.CustomerID
		if body.InvoiceDate != nil {
			invoice.InvoiceDate = body.InvoiceDate
		}
		if body.DueDate != nil {
			invoice.DueDate = body.DueDate
		}
		invoice.SubTotal = body.SubTotal
		invoice.DiscountPercentage = body.DiscountPercentage
		invoice.TaxPercentage = body.TaxPercentage
		if body.Status != "" {
			invoice.Status = body.Status
		}
		invoice.Notes = body.Notes
		deriveAmounts(&invoice)

		if err := database.DB.Save(&invoice).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update invoice")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/invoices/:id
func DeleteInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var invoice models.Invoice
		if err := database.DB.First(&invoice, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}
		if err := database.DB.Delete(&invoice).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete invoice")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/invoices/summary
func InvoiceSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var summary InvoiceSummary
		err := database.DB.Model(&models.Invoice{}).
			Select(`COUNT(*) AS total_invoices,
				COALESCE(SUM(total_amount), 0) AS total_amount,
				COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_count,
				COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS paid_count,
				COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS overdue_count`,
				models.InvoiceStatusPending, models.InvoiceStatusPaid, models.InvoiceStatusOverdue).
			Scan(&summary).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load invoice summary")
		}
		return c.JSON(summary)
	}
}
