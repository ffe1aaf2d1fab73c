package handler

import (
	"arbetsdata/internal/cache"
	"arbetsdata/internal/delivery/http/dto"
	"arbetsdata/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	cache *cache.Redis
}

func NewHealthHandler(cache *cache.Redis) *HealthHandler {
	return &HealthHandler{cache: cache}
}

func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/health", h.Health)
}

// Health reports liveness. A degraded cache is reported but never fails the
// check, since reads work without it.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	cacheStatus := "ok"
	if err := h.cache.Ping(c.Context()); err != nil {
		cacheStatus = "unavailable"
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.HealthResponse{
		Status: "ok",
		Cache:  cacheStatus,
	})
}
