package server

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/any-hub/zipserve/internal/logging"
)

func TestRouterPassesContentRequestsToHandler(t *testing.T) {
	var seenPath, seenID string
	app := newTestApp(t, ContentHandlerFunc(func(c fiber.Ctx) error {
		seenPath = string(c.Request().URI().Path())
		seenID = RequestID(c)
		return c.SendStatus(fiber.StatusNoContent)
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/guide/index.html", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "/guide/index.html", seenPath)
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, resp.Header.Get("X-Request-ID"))
}

func TestRouterSkipsHandlerForDiagnostics(t *testing.T) {
	called := false
	app := newTestApp(t, ContentHandlerFunc(func(c fiber.Ctx) error {
		called = true
		return c.SendStatus(fiber.StatusNoContent)
	}))
	app.Get("/-/ping", func(c fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/-/ping", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pong", string(body))
	assert.False(t, called)
}

func TestRouterRecoversFromPanics(t *testing.T) {
	app := newTestApp(t, ContentHandlerFunc(func(c fiber.Ctx) error {
		panic("boom")
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/index.html", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestNewAppValidatesOptions(t *testing.T) {
	handler := ContentHandlerFunc(func(c fiber.Ctx) error { return nil })

	_, err := NewApp(AppOptions{Handler: handler, ListenPort: 8080})
	assert.Error(t, err)
	_, err = NewApp(AppOptions{Logger: logging.Discard(), ListenPort: 8080})
	assert.Error(t, err)
	_, err = NewApp(AppOptions{Logger: logging.Discard(), Handler: handler})
	assert.Error(t, err)
}

func newTestApp(t *testing.T, handler ContentHandler) *fiber.App {
	t.Helper()
	app, err := NewApp(AppOptions{
		Logger:     logging.Discard(),
		Handler:    handler,
		ListenPort: 8080,
	})
	require.NoError(t, err)
	return app
}
