package reports

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

const lowStockThreshold = 10

type InventoryReportRow struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	CategoryName string          `json:"category_name"`
	SupplierName string          `json:"supplier_name"`
	CurrentStock int             `json:"current_stock"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Status       string          `json:"status"`
}

type SalesReportRow struct {
	SaleID      uint            `json:"sale_id"`
	SaleDate    time.Time       `json:"sale_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	TotalItems  int64           `json:"total_items"`
	Username    string          `json:"username"`
}

type PurchaseReportRow struct {
	PurchaseID   uint            `json:"purchase_id"`
	PurchaseDate time.Time       `json:"purchase_date"`
	SupplierName string          `json:"supplier_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalItems   int64           `json:"total_items"`
	Username     string          `json:"username"`
}

func stockStatus(stock int) string {
	switch {
	case stock <= 0:
		return "Out of Stock"
	case stock <= lowStockThreshold:
		return "Low Stock"
	default:
		return "In Stock"
	}
}

// sendWorkbook streams rows as an xlsx attachment. The rows argument
// is one slice per spreadsheet row, already in header order.
func sendWorkbook(c *fiber.Ctx, filename string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for r, row := range rows {
		for i, v := range row {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not build workbook")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.SendStream(buf)
}

// GET /api/reports/inventory?format=xlsx
func InventoryReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		err := database.DB.
			Preload("Category").
			Preload("Supplier").
			Order("name asc").
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load inventory report")
		}

		rows := make([]InventoryReportRow, 0, len(products))
		for _, p := range products {
			row := InventoryReportRow{
				ProductID:    p.ID,
				ProductName:  p.Name,
				CurrentStock: p.StockLevel,
				CostPrice:    p.CostPrice,
				SellingPrice: p.SellingPrice,
				TotalValue:   p.CostPrice.Mul(decimal.NewFromInt(int64(p.StockLevel))),
				Status:       stockStatus(p.StockLevel),
			}
			if p.Category != nil {
				row.CategoryName = p.Category.Name
			}
			if p.Supplier != nil {
				row.SupplierName = p.Supplier.Name
			}
			rows = append(rows, row)
		}

		if c.Query("format") != "xlsx" {
			return c.JSON(rows)
		}

		headers := []string{"Product ID", "Product Name", "Category", "Supplier", "Current Stock", "Cost Price", "Selling Price", "Total Value", "Status"}
		cells := make([][]interface{}, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, []interface{}{
				r.ProductID, r.ProductName, r.CategoryName, r.SupplierName,
				r.CurrentStock, r.CostPrice.InexactFloat64(), r.SellingPrice.InexactFloat64(),
				r.TotalValue.InexactFloat64(), r.Status,
			})
		}
		return sendWorkbook(c, "inventory_report.xlsx", headers, cells)
	}
}

// GET /api/reports/sales?fromDate=&toDate=&format=xlsx
func SalesReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Sale{}).
			Select(`sales.id AS sale_id,
				sales.sale_date,
				sales.total_amount,
				sales.net_amount,
				COALESCE(SUM(sale_details.quantity), 0) AS total_items,
				COALESCE(users.username, '') AS username`).
			Joins("LEFT JOIN sale_details ON sale_details.sale_id = sales.id").
			Joins("LEFT JOIN users ON users.id = sales.user_id").
			Group("sales.id, sales.sale_date, sales.total_amount, sales.net_amount, users.username")

		if from := c.Query("fromDate"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid fromDate")
			}
			dbq = dbq.Where("sales.sale_date >= ?", t)
		}
		if to := c.Query("toDate"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid toDate")
			}
			dbq = dbq.Where("sales.sale_date < ?", t.AddDate(0, 0, 1))
		}

		var rows []SalesReportRow
		if err := dbq.Order("sales.sale_date asc").Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load sales report")
		}

		if c.Query("format") != "xlsx" {
			return c.JSON(rows)
		}

		headers := []string{"Sale ID", "Date", "Total Amount", "Net Amount", "Total Items", "User"}
		cells := make([][]interface{}, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, []interface{}{
				r.SaleID, r.SaleDate.Format("2006-01-02"),
				r.TotalAmount.InexactFloat64(), r.NetAmount.InexactFloat64(),
				r.TotalItems, r.Username,
			})
		}
		return sendWorkbook(c, "sales_report.xlsx", headers, cells)
	}
}

// GET /api/reports/purchases?fromDate=&toDate=&format=xlsx
func PurchaseReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Purchase{}).
			Select(`purchases.id AS purchase_id,
				purchases.purchase_date,
				COALESCE(suppliers.name, '') AS supplier_name,
				purchases.total_amount,
				COALESCE(SUM(purchase_details.quantity), 0) AS total_items,
				COALESCE(users.username, '') AS username`).
			Joins("LEFT JOIN purchase_details ON purchase_details.purchase_id = purchases.id").
			Joins("LEFT JOIN suppliers ON suppliers.id = purchases.supplier_id").
			Joins("LEFT JOIN users ON users.id = purchases.user_id").
			Group("purchases.id, purchases.purchase_date, suppliers.name, purchases.total_amount, users.username")

		if from := c.Query("fromDate"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid fromDate")
			}
			dbq = dbq.Where("purchases.purchase_date >= ?", t)
		}
		if to := c.Query("toDate"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid toDate")
			}
			dbq = dbq.Where("purchases.purchase_date < ?", t.AddDate(0, 0, 1))
		}

		var rows []PurchaseReportRow
		if err := dbq.Order("purchases.purchase_date asc").Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load purchase report")
		}

		if c.Query("format") != "xlsx" {
			return c.JSON(rows)
		}

		headers := []string{"Purchase ID", "Date", "Supplier", "Total Amount", "Total Items", "User"}
		cells := make([][]interface{}, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, []interface{}{
				r.PurchaseID, r.PurchaseDate.Format("2006-01-02"), r.SupplierName,
				r.TotalAmount.InexactFloat64(), r.TotalItems, r.Username,
			})
		}
		return sendWorkbook(c, "purchase_report.xlsx", headers, cells)
	}
}
