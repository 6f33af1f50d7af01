package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/any-hub/zipserve/internal/archive"
	"github.com/any-hub/zipserve/internal/metrics"
)

type fakeArchive struct{}

func (fakeArchive) Read(string) ([]byte, error) { return nil, archive.ErrMemberNotFound }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newDiagnosticsApp(t *testing.T, d Diagnostics) *fiber.App {
	t.Helper()
	app := fiber.New()
	RegisterDiagnostics(app, d)
	return app
}

func TestArchivesEndpoint(t *testing.T) {
	set, err := archive.NewSet([]archive.Entry{
		{ID: "base.zip"},
		{ID: "guide.zip", FirstPath: "guide/index.html"},
	})
	require.NoError(t, err)
	reg := archive.NewRegistry(archive.OpenerFunc(func(string) (archive.Archive, error) {
		return fakeArchive{}, nil
	}))
	_, err = reg.Open("guide.zip")
	require.NoError(t, err)

	app := newDiagnosticsApp(t, Diagnostics{Archives: set, Registry: reg})
	resp, err := app.Test(httptest.NewRequest("GET", "/-/archives", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Archives []archivePayload `json:"archives"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Archives, 2)
	assert.Equal(t, archivePayload{ID: "base.zip"}, payload.Archives[0])
	assert.Equal(t, archivePayload{ID: "guide.zip", FirstPath: "guide/index.html", Indexed: true, Opened: true}, payload.Archives[1])
}

func TestMetricsEndpoint(t *testing.T) {
	recorder := metrics.New()
	recorder.Outcome("served")

	app := newDiagnosticsApp(t, Diagnostics{Metrics: recorder})
	resp, err := app.Test(httptest.NewRequest("GET", "/-/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `zipserve_requests_total{outcome="served"} 1`), string(body))
}

func TestHealthzEndpoint(t *testing.T) {
	app := newDiagnosticsApp(t, Diagnostics{Version: "1.2.3"})
	resp, err := app.Test(httptest.NewRequest("GET", "/-/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"version":"1.2.3"`)

	app = newDiagnosticsApp(t, Diagnostics{Cache: pingFunc(func(context.Context) error {
		return errors.New("redis down")
	})})
	resp, err = app.Test(httptest.NewRequest("GET", "/-/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "redis down")
}
