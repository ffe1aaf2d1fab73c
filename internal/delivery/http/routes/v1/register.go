package v1

import (
	"arbetsdata/internal/cache"
	"arbetsdata/internal/dataaccess"
	"arbetsdata/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func Register(r fiber.Router, svc *dataaccess.Service, cache *cache.Redis) {
	if r == nil {
		return
	}

	handler.NewIncomeHandler(svc, cache).RegisterRoutes(r)
	handler.NewJobsHandler(svc, cache).RegisterRoutes(r)
	handler.NewSkillsHandler(svc, cache).RegisterRoutes(r)
	handler.NewMetaHandler(svc, cache).RegisterRoutes(r)
}
