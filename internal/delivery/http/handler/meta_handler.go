package handler

import (
	"arbetsdata/internal/cache"
	"arbetsdata/internal/dataaccess"
	"arbetsdata/internal/delivery/http/dto"
	"arbetsdata/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

// MetaHandler serves the reference listings and dataset statistics.
type MetaHandler struct {
	svc   *dataaccess.Service
	cache *cache.Redis
}

func NewMetaHandler(svc *dataaccess.Service, cache *cache.Redis) *MetaHandler {
	return &MetaHandler{svc: svc, cache: cache}
}

func (h *MetaHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/occupations", h.Occupations)
	r.Get("/regions", h.Regions)
	r.Get("/stats", h.Stats)
}

func (h *MetaHandler) Occupations(c fiber.Ctx) error {
	return serveCached(c, h.cache, func() ([]dto.OccupationResponse, error) {
		items, err := h.svc.Occupations(c.Context())
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.OccupationResponse, 0, len(items))
		for _, it := range items {
			out = append(out, dto.OccupationResponse{
				SSYKCode:  it.SSYKCode,
				Label:     it.Label,
				AdCount:   it.AdCount,
				IncomeObs: it.IncomeObs,
			})
		}
		return out, nil
	})
}

func (h *MetaHandler) Regions(c fiber.Ctx) error {
	return serveCached(c, h.cache, func() ([]dto.RegionResponse, error) {
		items, err := h.svc.Regions(c.Context())
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.RegionResponse, 0, len(items))
		for _, it := range items {
			out = append(out, dto.RegionResponse{Code: it.Code, Name: it.Name, AdCount: it.AdCount})
		}
		return out, nil
	})
}

func (h *MetaHandler) Stats(c fiber.Ctx) error {
	return serveCached(c, h.cache, func() (dto.StatsResponse, error) {
		stats, err := h.svc.Stats(c.Context())
		if err != nil {
			return dto.StatsResponse{}, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		return dto.StatsResponse{
			TableRows:       stats.TableRows,
			Years:           stats.Years,
			SalaryMean:      stats.MedianSalary.Mean,
			SalaryMedian:    stats.MedianSalary.Median,
			SalaryMin:       stats.MedianSalary.Min,
			SalaryMax:       stats.MedianSalary.Max,
			DistinctSkills:  stats.DistinctSkills,
			UniqueEmployers: stats.UniqueEmployers,
			TopRegions:      stats.TopRegions,
		}, nil
	})
}
