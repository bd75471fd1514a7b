package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestSendSuccessDefaultsMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return SendSuccess(c, "", fiber.Map{"value": 1})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body APIResponse
	decode(t, resp.Body, &body)
	require.True(t, body.Success)
	require.Equal(t, "success", body.Message)
}

func TestSendErrorShape(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusForbidden, "nope")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body APIResponse
	decode(t, resp.Body, &body)
	require.False(t, body.Success)
	require.Equal(t, "nope", body.Message)
	require.Nil(t, body.Data)
}

func decode(t *testing.T, r io.Reader, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r).Decode(out))
}
