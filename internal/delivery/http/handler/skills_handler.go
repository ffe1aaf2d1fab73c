package handler

import (
	"arbetsdata/internal/cache"
	"arbetsdata/internal/dataaccess"
	"arbetsdata/internal/delivery/http/dto"
	"arbetsdata/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type SkillsHandler struct {
	svc   *dataaccess.Service
	cache *cache.Redis
}

func NewSkillsHandler(svc *dataaccess.Service, cache *cache.Redis) *SkillsHandler {
	return &SkillsHandler{svc: svc, cache: cache}
}

func (h *SkillsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Group("/skills").Get("/", h.List)
}

func (h *SkillsHandler) List(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	f := dataaccess.SkillsFilter{
		Occupations: c.Query("occupation"),
		SkillType:   c.Query("skill_type"),
		Limit:       limit,
	}

	return serveCached(c, h.cache, func() ([]dto.SkillResponse, error) {
		rows, err := h.svc.Skills(c.Context(), f)
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.SkillResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.SkillResponse{
				SSYKCode:        r.SSYKCode,
				OccupationLabel: r.OccupationLabel,
				Skill:           r.Skill,
				SkillType:       r.SkillType,
				Occurrences:     r.Occurrences,
				MeanProbability: r.MeanProbability,
			})
		}
		return out, nil
	})
}
