package routes

import (
	"arbetsdata/internal/cache"
	"arbetsdata/internal/dataaccess"
	"arbetsdata/internal/delivery/http/handler"
	v1 "arbetsdata/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	svc    *dataaccess.Service
	cache  *cache.Redis
	health *handler.HealthHandler
}

func NewRegistry(svc *dataaccess.Service, cache *cache.Redis) *Registry {
	return &Registry{
		svc:    svc,
		cache:  cache,
		health: handler.NewHealthHandler(cache),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.svc, r.cache)
}
