package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/middleware"
	"github.com/noah-isme/kasku-go-api/internal/models"
)

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.AuditLog{},
		&models.Student{},
		&models.Payment{},
		&models.Expense{},
		&models.Event{},
		&models.EventPayment{},
		&models.Setting{},
	))
	return db
}

func newHandlerValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// stubAuth injects an authenticated admin without going through the gate.
func stubAuth(user models.User, sessionID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUser, user.Sanitized())
		c.Locals(middleware.LocalUserID, user.ID)
		c.Locals(middleware.LocalUserRole, string(user.Role))
		c.Locals(middleware.LocalSessionID, sessionID)
		c.Locals(middleware.LocalToken, "stub-token")
		return c.Next()
	}
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, target))
}
