package main

import (
	"strings"

	"stock-backend/internal/auth"
	"stock-backend/internal/billing"
	"stock-backend/internal/catalog"
	"stock-backend/internal/config"
	"stock-backend/internal/dashboard"
	"stock-backend/internal/database"
	"stock-backend/internal/inventory"
	"stock-backend/internal/models"
	"stock-backend/internal/purchasing"
	"stock-backend/internal/query"
	"stock-backend/internal/reports"
	"stock-backend/internal/sales"
	"stock-backend/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	// money fields serialize as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logrus.WithError(err).Error("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(logger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg))

	api.Get("/query/test", query.TestHandler())

	// Everything below requires a token
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	adminOnly := auth.RequireRole(models.RoleAdmin)

	// Categories
	protected.Get("/categories/filter", catalog.FilterCategoriesHandler())
	protected.Get("/categories/top", catalog.TopCategoriesHandler())
	protected.Get("/categories/with-product-count", catalog.CategoriesWithProductCountHandler())
	protected.Get("/categories", catalog.ListCategoriesHandler())
	protected.Get("/categories/:id", catalog.GetCategoryHandler())
	protected.Post("/categories", catalog.CreateCategoryHandler())
	protected.Put("/categories/:id", catalog.UpdateCategoryHandler())
	protected.Delete("/categories/:id", catalog.DeleteCategoryHandler())

	// Suppliers
	protected.Get("/suppliers/top", catalog.TopSuppliersHandler())
	protected.Get("/suppliers/filter", catalog.FilterSuppliersHandler())
	protected.Get("/suppliers/search", catalog.SearchSuppliersHandler())
	protected.Get("/suppliers/with-counts", catalog.SuppliersWithCountsHandler())
	protected.Get("/suppliers/dropdown/users", catalog.SupplierUserDropdownHandler())
	protected.Get("/suppliers/by-user/:userId", catalog.SuppliersByUserHandler())
	protected.Get("/suppliers", catalog.ListSuppliersHandler())
	protected.Get("/suppliers/:id", catalog.GetSupplierHandler())
	protected.Post("/suppliers", catalog.CreateSupplierHandler())
	protected.Put("/suppliers/:id", catalog.UpdateSupplierHandler())
	protected.Delete("/suppliers/:id", adminOnly, catalog.DeleteSupplierHandler())

	// Products
	protected.Get("/products/top", inventory.TopProductsHandler())
	protected.Get("/products/filter", inventory.FilterProductsHandler())
	protected.Get("/products/low-stock", inventory.LowStockProductsHandler())
	protected.Get("/products/dropdown/categories", inventory.ProductCategoryDropdownHandler())
	protected.Get("/products/dropdown/suppliers", inventory.ProductSupplierDropdownHandler())
	protected.Get("/products/by-category/:categoryId", inventory.ProductsByCategoryHandler())
	protected.Get("/products/by-supplier/:supplierId", inventory.ProductsBySupplierHandler())
	protected.Get("/products", inventory.ListProductsHandler())
	protected.Get("/products/:id", inventory.GetProductHandler())
	protected.Post("/products", inventory.CreateProductHandler())
	protected.Put("/products/:id/stock", inventory.UpdateProductStockHandler())
	protected.Put("/products/:id", inventory.UpdateProductHandler())
	protected.Delete("/products/:id", adminOnly, inventory.DeleteProductHandler())

	// Purchases
	protected.Get("/purchases/top", purchasing.TopPurchasesHandler())
	protected.Get("/purchases/filter", purchasing.FilterPurchasesHandler())
	protected.Get("/purchases/recent", purchasing.RecentPurchasesHandler())
	protected.Get("/purchases/summary", purchasing.PurchaseSummaryHandler())
	protected.Get("/purchases/dropdown/suppliers", purchasing.PurchaseSupplierDropdownHandler())
	protected.Get("/purchases/dropdown/users", purchasing.PurchaseUserDropdownHandler())
	protected.Get("/purchases/by-supplier/:supplierId", purchasing.PurchasesBySupplierHandler())
	protected.Get("/purchases/by-user/:userId", purchasing.PurchasesByUserHandler())
	protected.Get("/purchases", purchasing.ListPurchasesHandler())
	protected.Get("/purchases/:id", purchasing.GetPurchaseHandler())
	protected.Post("/purchases", purchasing.CreatePurchaseHandler())
	protected.Put("/purchases/:id", purchasing.UpdatePurchaseHandler())
	protected.Delete("/purchases/:id", adminOnly, purchasing.DeletePurchaseHandler())

	// Purchase details
	protected.Get("/purchase-details/top", purchasing.TopPurchaseDetailsHandler())
	protected.Get("/purchase-details/filter", purchasing.FilterPurchaseDetailsHandler())
	protected.Get("/purchase-details/summary", purchasing.PurchaseDetailSummaryHandler())
	protected.Get("/purchase-details/dropdown/products", purchasing.PurchaseDetailProductDropdownHandler())
	protected.Get("/purchase-details/dropdown/purchases", purchasing.PurchaseDetailPurchaseDropdownHandler())
	protected.Get("/purchase-details/by-purchase/:purchaseId", purchasing.PurchaseDetailsByPurchaseHandler())
	protected.Get("/purchase-details/by-product/:productId", purchasing.PurchaseDetailsByProductHandler())
	protected.Get("/purchase-details", purchasing.ListPurchaseDetailsHandler())
	protected.Get("/purchase-details/:id", purchasing.GetPurchaseDetailHandler())
	protected.Post("/purchase-details", purchasing.CreatePurchaseDetailHandler())
	protected.Put("/purchase-details/:id", purchasing.UpdatePurchaseDetailHandler())
	protected.Delete("/purchase-details/:id", adminOnly, purchasing.DeletePurchaseDetailHandler())

	// Sales
	protected.Get("/sales/top", sales.TopSalesHandler())
	protected.Get("/sales/filter", sales.FilterSalesHandler())
	protected.Get("/sales/daily", sales.DailySalesHandler())
	protected.Get("/sales/by-date-range", sales.SalesByDateRangeHandler())
	protected.Get("/sales/recent", sales.RecentSalesHandler())
	protected.Get("/sales/summary", sales.SaleSummaryHandler())
	protected.Get("/sales/dropdown/users", sales.SaleUserDropdownHandler())
	protected.Get("/sales/by-user/:userId", sales.SalesByUserHandler())
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Get("/sales/:id", sales.GetSaleHandler())
	protected.Post("/sales", sales.CreateSaleHandler())
	protected.Put("/sales/:id", sales.UpdateSaleHandler())
	protected.Delete("/sales/:id", adminOnly, sales.DeleteSaleHandler())

	// Sale details
	protected.Get("/sale-details/top", sales.TopSaleDetailsHandler())
	protected.Get("/sale-details/filter", sales.FilterSaleDetailsHandler())
	protected.Get("/sale-details/summary", sales.SaleDetailSummaryHandler())
	protected.Get("/sale-details/dropdown/products", sales.SaleDetailProductDropdownHandler())
	protected.Get("/sale-details/dropdown/sales", sales.SaleDetailSaleDropdownHandler())
	protected.Get("/sale-details/by-sale/:saleId", sales.SaleDetailsBySaleHandler())
	protected.Get("/sale-details/by-product/:productId", sales.SaleDetailsByProductHandler())
	protected.Get("/sale-details", sales.ListSaleDetailsHandler())
	protected.Get("/sale-details/:id", sales.GetSaleDetailHandler())
	protected.Post("/sale-details", sales.CreateSaleDetailHandler())
	protected.Put("/sale-details/:id", sales.UpdateSaleDetailHandler())
	protected.Delete("/sale-details/:id", adminOnly, sales.DeleteSaleDetailHandler())

	// Invoices
	protected.Get("/invoices/summary", billing.InvoiceSummaryHandler())
	protected.Get("/invoices", billing.ListInvoicesHandler())
	protected.Get("/invoices/:id", billing.GetInvoiceHandler())
	protected.Post("/invoices", billing.CreateInvoiceHandler())
	protected.Put("/invoices/:id", billing.UpdateInvoiceHandler())
	protected.Delete("/invoices/:id", adminOnly, billing.DeleteInvoiceHandler())

	// Customers
	protected.Get("/customers", billing.ListCustomersHandler())
	protected.Get("/customers/:id", billing.GetCustomerHandler())
	protected.Post("/customers", billing.CreateCustomerHandler())

	// Reports
	protected.Get("/reports/inventory", reports.InventoryReportHandler())
	protected.Get("/reports/sales", reports.SalesReportHandler())
	protected.Get("/reports/purchases", reports.PurchaseReportHandler())

	// Dashboard
	protected.Get("/dashboard/summary", dashboard.SummaryHandler())
	protected.Get("/dashboard/quick-stats", dashboard.QuickStatsHandler())

	// Product inquiries
	protected.Post("/query/send", query.SendInquiryHandler(cfg))

	// Users
	protected.Get("/users/filter", user.FilterUsersHandler())
	protected.Get("/users/top", user.TopUsersHandler())
	protected.Get("/users", user.ListUsersHandler())
	protected.Get("/users/:id", user.GetUserHandler())
	protected.Post("/users", user.CreateUserHandler())
	protected.Put("/users/:id", user.UpdateUserHandler())
	protected.Delete("/users/:id", user.DeleteUserHandler())

	logrus.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.Fatal(err)
	}
}
