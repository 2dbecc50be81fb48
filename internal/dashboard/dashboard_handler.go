package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

type DailyBucket struct {
	Date   string          `json:"date"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type CategoryBucket struct {
	CategoryName string `json:"category_name"`
	ProductCount int64  `json:"product_count"`
}

type TopStockProduct struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	StockLevel  int    `json:"stock_level"`
}

type TopSupplier struct {
	SupplierID   uint            `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

type Activity struct {
	Type        string          `json:"type"`
	ReferenceID uint            `json:"reference_id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
}

type Summary struct {
	StartDate          string            `json:"start_date"`
	EndDate            string            `json:"end_date"`
	TotalProducts      int64             `json:"total_products"`
	TotalCategories    int64             `json:"total_categories"`
	TotalSuppliers     int64             `json:"total_suppliers"`
	TotalUsers         int64             `json:"total_users"`
	TotalPurchases     int64             `json:"total_purchases"`
	TotalSales         int64             `json:"total_sales"`
	PurchaseAmount     decimal.Decimal   `json:"purchase_amount"`
	SalesAmount        decimal.Decimal   `json:"sales_amount"`
	ProductsByCategory []CategoryBucket  `json:"products_by_category"`
	ProductsPerDay     []DailyBucket     `json:"products_per_day"`
	PurchasesPerDay    []DailyBucket     `json:"purchases_per_day"`
	SalesPerDay        []DailyBucket     `json:"sales_per_day"`
	TopProductsByStock []TopStockProduct `json:"top_products_by_stock"`
	TopSuppliers       []TopSupplier     `json:"top_suppliers"`
	RecentActivities   []Activity        `json:"recent_activities"`
}

type QuickStats struct {
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	TodaySales      int64           `json:"today_sales"`
	TodayAmount     decimal.Decimal `json:"today_amount"`
	PendingInvoices int64           `json:"pending_invoices"`
}

type rawBucket struct {
	Day    string
	Count  int64
	Amount decimal.Decimal
}

// fillDays maps sparse per-day rows onto a dense start..end range so
// charts never have holes.
func fillDays(start, end time.Time, rows []rawBucket) []DailyBucket {
	byDay := make(map[string]rawBucket, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r
	}

	var out []DailyBucket
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		b := DailyBucket{Date: key, Amount: decimal.Zero}
		if r, ok := byDay[key]; ok {
			b.Count = r.Count
			b.Amount = r.Amount
		}
		out = append(out, b)
	}
	return out
}

func dailyBuckets(table, dateColumn string, start, end time.Time) ([]DailyBucket, error) {
	var rows []rawBucket
	err := database.DB.Table(table).
		Select("DATE("+dateColumn+") AS day, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Where(dateColumn+" >= ? AND "+dateColumn+" < ?", start, end.AddDate(0, 0, 1)).
		Group("DATE(" + dateColumn + ")").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return fillDays(start, end, rows), nil
}

// dailyCountBuckets is the amount-less variant, for tables without a
// total_amount column.
func dailyCountBuckets(table, dateColumn string, start, end time.Time) ([]DailyBucket, error) {
	var rows []rawBucket
	err := database.DB.Table(table).
		Select("DATE("+dateColumn+") AS day, COUNT(*) AS count").
		Where(dateColumn+" >= ? AND "+dateColumn+" < ?", start, end.AddDate(0, 0, 1)).
		Group("DATE(" + dateColumn + ")").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Amount = decimal.Zero
	}
	return fillDays(start, end, rows), nil
}

// GET /api/dashboard/summary?start=2026-01-01&end=2026-01-31
// Defaults to the last 30 days.
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		end := time.Now().Truncate(24 * time.Hour)
		start := end.AddDate(0, 0, -30)

		if q := c.Query("start"); q != "" {
			t, err := time.Parse("2006-01-02", q)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid start date")
			}
			start = t
		}
		if q := c.Query("end"); q != "" {
			t, err := time.Parse("2006-01-02", q)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid end date")
			}
			end = t
		}
		if end.Before(start) {
			return fiber.NewError(fiber.StatusBadRequest, "End date must not be before start date")
		}

		summary := Summary{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		}

		database.DB.Model(&models.Product{}).Count(&summary.TotalProducts)
		database.DB.Model(&models.Category{}).Count(&summary.TotalCategories)
		database.DB.Model(&models.Supplier{}).Count(&summary.TotalSuppliers)
		database.DB.Model(&models.User{}).Count(&summary.TotalUsers)

		rangeEnd := end.AddDate(0, 0, 1)

		type totals struct {
			Count  int64
			Amount decimal.Decimal
		}
		var pt, st totals
		database.DB.Model(&models.Purchase{}).
			Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
			Where("purchase_date >= ? AND purchase_date < ?", start, rangeEnd).
			Scan(&pt)
		database.DB.Model(&models.Sale{}).
			Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
			Where("sale_date >= ? AND sale_date < ?", start, rangeEnd).
			Scan(&st)
		summary.TotalPurchases = pt.Count
		summary.PurchaseAmount = pt.Amount
		summary.TotalSales = st.Count
		summary.SalesAmount = st.Amount

		database.DB.Model(&models.Category{}).
			Select("categories.name AS category_name, COUNT(products.id) AS product_count").
			Joins("LEFT JOIN products ON products.category_id = categories.id").
			Group("categories.name").
			Scan(&summary.ProductsByCategory)

		var err error
		summary.ProductsPerDay, err = dailyCountBuckets("products", "created_at", start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load product buckets")
		}
		summary.PurchasesPerDay, err = dailyBuckets("purchases", "purchase_date", start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load purchase buckets")
		}
		summary.SalesPerDay, err = dailyBuckets("sales", "sale_date", start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load sale buckets")
		}

		database.DB.Model(&models.Product{}).
			Select("id AS product_id, name AS product_name, stock_level").
			Order("stock_level desc").
			Limit(10).
			Scan(&summary.TopProductsByStock)

		database.DB.Model(&models.Supplier{}).
			Select("suppliers.id AS supplier_id, suppliers.name AS supplier_name, COALESCE(SUM(purchases.total_amount), 0) AS total_amount").
			Joins("LEFT JOIN purchases ON purchases.supplier_id = suppliers.id").
			Group("suppliers.id, suppliers.name").
			Order("total_amount desc").
			Limit(10).
			Scan(&summary.TopSuppliers)

		summary.RecentActivities = recentActivities(10)

		return c.JSON(summary)
	}
}

// recentActivities merges the latest purchases and sales into one
// reverse chronological feed.
func recentActivities(limit int) []Activity {
	var purchases []models.Purchase
	database.DB.Order("purchase_date desc").Limit(limit).Find(&purchases)
	var sales []models.Sale
	database.DB.Order("sale_date desc").Limit(limit).Find(&sales)

	activities := make([]Activity, 0, len(purchases)+len(sales))
	for _, p := range purchases {
		activities = append(activities, Activity{
			Type:        "purchase",
			ReferenceID: p.ID,
			Date:        p.PurchaseDate,
			Amount:      p.TotalAmount,
		})
	}
	for _, s := range sales {
		activities = append(activities, Activity{
			Type:        "sale",
			ReferenceID: s.ID,
			Date:        s.SaleDate,
			Amount:      s.TotalAmount,
		})
	}

	// insertion sort, the slice is at most 2*limit entries
	for i := 1; i < len(activities); i++ {
		for j := i; j > 0 && activities[j].Date.After(activities[j-1].Date); j-- {
			activities[j], activities[j-1] = activities[j-1], activities[j]
		}
	}
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities
}

// GET /api/dashboard/quick-stats
func QuickStatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var stats QuickStats

		database.DB.Model(&models.Product{}).Count(&stats.TotalProducts)
		database.DB.Model(&models.Product{}).
			Where("stock_level <= ?", 10).
			Count(&stats.LowStockCount)

		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		type totals struct {
			Count  int64
			Amount decimal.Decimal
		}
		var t totals
		database.DB.Model(&models.Sale{}).
			Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
			Where("sale_date >= ?", startOfDay).
			Scan(&t)
		stats.TodaySales = t.Count
		stats.TodayAmount = t.Amount

		database.DB.Model(&models.Invoice{}).
			Where("status = ?", models.InvoiceStatusPending).
			Count(&stats.PendingInvoices)

		return c.JSON(stats)
	}
}
