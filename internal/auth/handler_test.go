package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock-backend/internal/config"
	"stock-backend/internal/database"
	"stock-backend/internal/models"
)

var testCfg = &config.Config{JWTSecret: "test-secret-test-secret-test-secret!"}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unexpected server error"})
		},
	})

	app.Post("/api/auth/register", RegisterHandler())
	app.Post("/api/auth/login", LoginHandler(testCfg))

	protected := app.Group("", JWTMiddleware(testCfg))
	protected.Get("/api/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"username": c.Locals(CtxUsernameKey)})
	})
	protected.Delete("/api/admin-only", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func login(t *testing.T, app *fiber.App, username, password string) LoginResponse {
	t.Helper()
	resp := doJSON(t, app, "POST", "/api/auth/login", fiber.Map{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body LoginResponse
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/register", fiber.Map{
		"username": "alice",
		"password": "hunter22",
		"email":    "alice@example.com",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, database.DB.Where("username = ?", "alice").First(&user).Error)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.Equal(t, "Not Provided", user.Address)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	body := login(t, app, "alice", "hunter22")
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, models.RoleCustomer, body.Role)
	assert.Equal(t, "Login successful", body.Message)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/register", fiber.Map{
		"username": "alice", "password": "hunter22",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/auth/register", fiber.Map{
		"username": "alice", "password": "other-password",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/register", fiber.Map{
		"username": "alice", "password": "hunter22",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/auth/login", fiber.Map{
		"username": "alice", "password": "wrong",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/auth/login", fiber.Map{
		"username": "nobody", "password": "wrong",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTMiddlewareGuardsRoutes(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "GET", "/api/me", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/me", nil, "not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	doJSON(t, app, "POST", "/api/auth/register", fiber.Map{
		"username": "alice", "password": "hunter22",
	}, "")
	body := login(t, app, "alice", "hunter22")

	resp = doJSON(t, app, "GET", "/api/me", nil, body.Token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleBlocksCustomers(t *testing.T) {
	app := setupApp(t)

	doJSON(t, app, "POST", "/api/auth/register", fiber.Map{
		"username": "alice", "password": "hunter22",
	}, "")
	customer := login(t, app, "alice", "hunter22")

	resp := doJSON(t, app, "DELETE", "/api/admin-only", nil, customer.Token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// promote and log in again for an admin token
	require.NoError(t, database.DB.Model(&models.User{}).
		Where("username = ?", "alice").
		Update("role", models.RoleAdmin).Error)
	admin := login(t, app, "alice", "hunter22")

	resp = doJSON(t, app, "DELETE", "/api/admin-only", nil, admin.Token)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
