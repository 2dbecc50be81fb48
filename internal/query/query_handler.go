package query

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"stock-backend/internal/config"
	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

var validate = validator.New()

type InquiryRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Message   string `json:"message"`
}

// GET /api/query/test
func TestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Query API is working"})
	}
}

// POST /api/query/send
// Mails a product inquiry to the configured address.
func SendInquiryHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body InquiryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email, product and a positive quantity are required")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Product not found")
		}

		html := fmt.Sprintf(`
			<h2>New Product Inquiry</h2>
			<p><strong>Name:</strong> %s</p>
			<p><strong>Email:</strong> %s</p>
			<p><strong>Phone:</strong> %s</p>
			<p><strong>Product:</strong> %s</p>
			<p><strong>Quantity:</strong> %d</p>
			<p><strong>Message:</strong> %s</p>`,
			body.Name, body.Email, body.Phone, product.Name, body.Quantity, body.Message)

		m := gomail.NewMessage()
		m.SetHeader("From", cfg.SMTPUser)
		m.SetHeader("To", cfg.InquiryEmail)
		m.SetHeader("Reply-To", body.Email)
		m.SetHeader("Subject", "Product Inquiry: "+product.Name)
		m.SetBody("text/html", html)

		port, err := strconv.Atoi(cfg.SMTPPort)
		if err != nil {
			port = 587
		}
		d := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPassword)
		if err := d.DialAndSend(m); err != nil {
			logrus.WithError(err).Error("could not send inquiry mail")
			return fiber.NewError(fiber.StatusInternalServerError, "Could not send inquiry")
		}

		return c.JSON(fiber.Map{"message": "Inquiry sent successfully"})
	}
}
