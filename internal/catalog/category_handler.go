package catalog

import (
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

type CreateCategoryRequest struct {
	Name   string `json:"category_name"`
	UserID *uint  `json:"user_id"`
}

type UpdateCategoryRequest struct {
	CategoryID uint   `json:"category_id"`
	Name       string `json:"category_name"`
	UserID     *uint  `json:"user_id"`
}

type CategoryWithProductCount struct {
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
	UserID       *uint     `json:"user_id"`
	ProductCount int64     `json:"product_count"`
}

// GET /api/categories?pageNumber=1&pageSize=5
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pageNumber := c.QueryInt("pageNumber", 1)
		pageSize := c.QueryInt("pageSize", 5)
		if pageNumber < 1 {
			pageNumber = 1
		}
		if pageSize < 1 {
			pageSize = 5
		}

		var totalRecords int64
		if err := database.DB.Model(&models.Category{}).Count(&totalRecords).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count categories")
		}

		var categories []models.Category
		if err := database.DB.
			Order("id asc").
			Offset((pageNumber - 1) * pageSize).
			Limit(pageSize).
			Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list categories")
		}

		return c.JSON(fiber.Map{
			"TotalRecords": totalRecords,
			"PageSize":     pageSize,
			"CurrentPage":  pageNumber,
			"TotalPages":   int(math.Ceil(float64(totalRecords) / float64(pageSize))),
			"Categories":   categories,
		})
	}
}

// GET /api/categories/:id
func GetCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var category models.Category
		if err := database.DB.First(&category, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}
		return c.JSON(category)
	}
}

// POST /api/categories
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Category name is required")
		}

		category := models.Category{
			Name:   body.Name,
			UserID: body.UserID,
		}
		if err := database.DB.Create(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create category")
		}

		return c.Status(fiber.StatusCreated).JSON(category)
	}
}

// PUT /api/categories/:id
func UpdateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.CategoryID != 0 && body.CategoryID != uint(id) {
			return fiber.NewError(fiber.StatusBadRequest, "ID mismatch")
		}

		var category models.Category
		if err := database.DB.First(&category, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}

		category.Name = strings.TrimSpace(body.Name)
		category.UserID = body.UserID
		if category.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Category name is required")
		}

		if err := database.DB.Save(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update category")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/categories/:id
// Blocked while products still reference the category.
func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var category models.Category
		if err := database.DB.First(&category, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}

		var productCount int64
		database.DB.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&productCount)
		if productCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot delete category that has associated products.")
		}

		if err := database.DB.Delete(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete category")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/categories/filter?categoryName=...&userId=...
func FilterCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Category{})

		if name := c.Query("categoryName"); name != "" {
			dbq = dbq.Where("name LIKE ?", "%"+name+"%")
		}
		if userID := c.QueryInt("userId", 0); userID > 0 {
			dbq = dbq.Where("user_id = ?", userID)
		}

		var categories []models.Category
		if err := dbq.Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not filter categories")
		}
		return c.JSON(categories)
	}
}

// GET /api/categories/top?n=5
func TopCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 5)
		var categories []models.Category
		if err := database.DB.Limit(n).Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list categories")
		}
		return c.JSON(categories)
	}
}

// GET /api/categories/with-product-count
func CategoriesWithProductCountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []CategoryWithProductCount
		err := database.DB.Model(&models.Category{}).
			Select(`categories.id AS category_id,
				categories.name AS category_name,
				categories.created_at,
				categories.updated_at AS modified_at,
				categories.user_id,
				COUNT(products.id) AS product_count`).
			Joins("LEFT JOIN products ON products.category_id = categories.id").
			Group("categories.id, categories.name, categories.created_at, categories.updated_at, categories.user_id").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load category counts")
		}
		return c.JSON(rows)
	}
}
