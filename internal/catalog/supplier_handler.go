package catalog

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

type CreateSupplierRequest struct {
	Name    string `json:"supplier_name"`
	Contact string `json:"contact"`
	Address string `json:"address"`
	UserID  *uint  `json:"user_id"`
}

type UpdateSupplierRequest struct {
	SupplierID uint   `json:"supplier_id"`
	Name       string `json:"supplier_name"`
	Contact    string `json:"contact"`
	Address    string `json:"address"`
	UserID     *uint  `json:"user_id"`
}

type SupplierWithCounts struct {
	SupplierID    uint   `json:"supplier_id"`
	SupplierName  string `json:"supplier_name"`
	Contact       string `json:"contact"`
	Address       string `json:"address"`
	ProductCount  int64  `json:"product_count"`
	PurchaseCount int64  `json:"purchase_count"`
}

type SupplierUserOption struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// GET /api/suppliers
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := database.DB.Order("id asc").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list suppliers")
		}
		return c.JSON(suppliers)
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Supplier not found")
		}
		return c.JSON(supplier)
	}
}

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Supplier name is required")
		}

		supplier := models.Supplier{
			Name:    body.Name,
			Contact: body.Contact,
			Address: body.Address,
			UserID:  body.UserID,
		}
		if err := database.DB.Create(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create supplier")
		}
		return c.Status(fiber.StatusCreated).JSON(supplier)
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.SupplierID != 0 && body.SupplierID != uint(id) {
			return fiber.NewError(fiber.StatusBadRequest, "ID mismatch")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Supplier not found")
		}

		supplier.Name = strings.TrimSpace(body.Name)
		if supplier.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Supplier name is required")
		}
		supplier.Contact = body.Contact
		supplier.Address = body.Address
		supplier.UserID = body.UserID

		if err := database.DB.Save(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update supplier")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/suppliers/:id
// Blocked while products or purchases still reference the supplier.
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Supplier not found")
		}

		var productCount int64
		database.DB.Model(&models.Product{}).Where("supplier_id = ?", supplier.ID).Count(&productCount)
		if productCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot delete supplier that has associated products.")
		}

		var purchaseCount int64
		database.DB.Model(&models.Purchase{}).Where("supplier_id = ?", supplier.ID).Count(&purchaseCount)
		if purchaseCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot delete supplier that has associated purchases.")
		}

		if err := database.DB.Delete(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete supplier")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/suppliers/top?n=5
func TopSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 5)
		var suppliers []models.Supplier
		if err := database.DB.Limit(n).Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list suppliers")
		}
		return c.JSON(suppliers)
	}
}

// GET /api/suppliers/filter?supplierName=...&contact=...&userId=...
func FilterSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Supplier{})

		if name := c.Query("supplierName"); name != "" {
			dbq = dbq.Where("name LIKE ?", "%"+name+"%")
		}
		if contact := c.Query("contact"); contact != "" {
			dbq = dbq.Where("contact LIKE ?", "%"+contact+"%")
		}
		if userID := c.QueryInt("userId", 0); userID > 0 {
			dbq = dbq.Where("user_id = ?", userID)
		}

		var suppliers []models.Supplier
		if err := dbq.Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not filter suppliers")
		}
		return c.JSON(suppliers)
	}
}

// GET /api/suppliers/by-user/:userId
func SuppliersByUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := c.ParamsInt("userId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
		}

		var suppliers []models.Supplier
		if err := database.DB.Where("user_id = ?", userID).Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list suppliers")
		}
		return c.JSON(suppliers)
	}
}

// GET /api/suppliers/search?searchTerm=...
// Matches name, contact and address.
func SearchSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		term := strings.TrimSpace(c.Query("searchTerm"))
		if term == "" {
			return fiber.NewError(fiber.StatusBadRequest, "searchTerm is required")
		}

		pattern := "%" + term + "%"
		var suppliers []models.Supplier
		err := database.DB.
			Where("name LIKE ? OR contact LIKE ? OR address LIKE ?", pattern, pattern, pattern).
			Find(&suppliers).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not search suppliers")
		}
		return c.JSON(suppliers)
	}
}

// GET /api/suppliers/with-counts
func SuppliersWithCountsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []SupplierWithCounts
		err := database.DB.Model(&models.Supplier{}).
			Select(`suppliers.id AS supplier_id,
				suppliers.name AS supplier_name,
				suppliers.contact,
				suppliers.address,
				COUNT(DISTINCT products.id) AS product_count,
				COUNT(DISTINCT purchases.id) AS purchase_count`).
			Joins("LEFT JOIN products ON products.supplier_id = suppliers.id").
			Joins("LEFT JOIN purchases ON purchases.supplier_id = suppliers.id").
			Group("suppliers.id, suppliers.name, suppliers.contact, suppliers.address").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load supplier counts")
		}
		return c.JSON(rows)
	}
}

// GET /api/suppliers/dropdown/users
func SupplierUserDropdownHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var options []SupplierUserOption
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
