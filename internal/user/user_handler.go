package user

import (
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

type CreateUserRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Email    string          `json:"email"`
	Address  string          `json:"address"`
	Phone    string          `json:"phone"`
	Role     models.UserRole `json:"role"`
}

type UpdateUserRequest struct {
	UserID   uint            `json:"user_id"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	Email    string          `json:"email"`
	Address  string          `json:"address"`
	Phone    string          `json:"phone"`
	Role     models.UserRole `json:"role"`
}

// GET /api/users?pageNumber=1&pageSize=5
func ListUsersHandler() fiber.Handler {
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
		if err := database.DB.Model(&models.User{}).Count(&totalRecords).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count users")
		}

		var users []models.User
		if err := database.DB.
			Order("id asc").
			Offset((pageNumber - 1) * pageSize).
			Limit(pageSize).
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}

		return c.JSON(fiber.Map{
			"TotalRecords": totalRecords,
			"PageSize":     pageSize,
			"CurrentPage":  pageNumber,
			"TotalPages":   int(math.Ceil(float64(totalRecords) / float64(pageSize))),
			"Users":        users,
		})
	}
}

// GET /api/users/:id
func GetUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var u models.User
		if err := database.DB.First(&u, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return c.JSON(u)
	}
}

// POST /api/users
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Username = strings.TrimSpace(body.Username)
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Username and password are required")
		}

		var count int64
		database.DB.Model(&models.User{}).Where("username = ?", body.Username).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Username already exists.")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		role := body.Role
		if role == "" {
			role = models.RoleCustomer
		}

		u := models.User{
			Username:     body.Username,
			PasswordHash: string(hash),
			Email:        body.Email,
			Address:      body.Address,
			Phone:        body.Phone,
			Role:         role,
		}
		if err := database.DB.Create(&u).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// PUT /api/users/:id
// An empty password keeps the current one.
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.UserID != 0 && body.UserID != uint(id) {
			return fiber.NewError(fiber.StatusBadRequest, "ID mismatch")
		}

		var u models.User
		if err := database.DB.First(&u, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		body.Username = strings.TrimSpace(body.Username)
		if body.Username != "" && body.Username != u.Username {
			var count int64
			database.DB.Model(&models.User{}).
				Where("username = ? AND id <> ?", body.Username, u.ID).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Username already exists.")
			}
			u.Username = body.Username
		}
		if body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
			}
			u.PasswordHash = string(hash)
		}
		u.Email = body.Email
		u.Address = body.Address
		u.Phone = body.Phone
		if body.Role != "" {
			u.Role = body.Role
		}

		if err := database.DB.Save(&u).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update user")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DELETE /api/users/:id
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var u models.User
		if err := database.DB.First(&u, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		if err := database.DB.Delete(&u).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete user")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/users/filter?userName=&role=
func FilterUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.User{})

		if name := c.Query("userName"); name != "" {
			dbq = dbq.Where("username LIKE ?", "%"+name+"%")
		}
		if role := c.Query("role"); role != "" {
			dbq = dbq.Where("role = ?", role)
		}

		var users []models.User
		if err := dbq.Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not filter users")
		}
		return c.JSON(users)
	}
}

// GET /api/users/top?n=2
func TopUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.QueryInt("n", 2)
		var users []models.User
		if err := database.DB.Limit(n).Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}
		return c.JSON(users)
	}
}
