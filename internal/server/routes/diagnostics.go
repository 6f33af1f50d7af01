package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/any-hub/zipserve/internal/archive"
	"github.com/any-hub/zipserve/internal/metrics"
)

// Pinger 由需要远程连接的缓存后端实现，例如 Redis。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Diagnostics 汇总诊断接口需要的依赖，字段均可为空。
type Diagnostics struct {
	Archives *archive.Set
	Registry *archive.Registry
	Metrics  *metrics.Recorder
	Cache    Pinger
	Version  string
}

const healthTimeout = 2 * time.Second

// RegisterDiagnostics 暴露 /-/archives、/-/metrics 与 /-/healthz。
func RegisterDiagnostics(app *fiber.App, d Diagnostics) {
	if app == nil {
		return
	}

	app.Get("/-/archives", func(c fiber.Ctx) error {
		var opened []string
		if d.Registry != nil {
			opened = d.Registry.Opened()
		}
		return c.JSON(fiber.Map{
			"archives": encodeArchives(d.Archives.Entries(), opened),
		})
	})

	app.Get("/-/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	app.Get("/-/healthz", func(c fiber.Ctx) error {
		payload := fiber.Map{"status": "ok"}
		if d.Version != "" {
			payload["version"] = d.Version
		}
		if d.Cache != nil {
			ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
			defer cancel()
			if err := d.Cache.Ping(ctx); err != nil {
				payload["status"] = "degraded"
				payload["cache_error"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(payload)
			}
		}
		return c.JSON(payload)
	})
}

type archivePayload struct {
	ID        string `json:"id"`
	FirstPath string `json:"first_path,omitempty"`
	Indexed   bool   `json:"indexed"`
	Opened    bool   `json:"opened"`
}

func encodeArchives(entries []archive.Entry, opened []string) []archivePayload {
	openSet := make(map[string]struct{}, len(opened))
	for _, id := range opened {
		openSet[id] = struct{}{}
	}
	result := make([]archivePayload, 0, len(entries))
	for _, entry := range entries {
		_, isOpen := openSet[entry.ID]
		result = append(result, archivePayload{
			ID:        entry.ID,
			FirstPath: entry.FirstPath,
			Indexed:   entry.FirstPath != "",
			Opened:    isOpen,
		})
	}
	return result
}
