package handler

import (
	"arbetsdata/internal/cache"
	"arbetsdata/internal/dataaccess"
	"arbetsdata/internal/delivery/http/dto"
	"arbetsdata/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type IncomeHandler struct {
	svc   *dataaccess.Service
	cache *cache.Redis
}

func NewIncomeHandler(svc *dataaccess.Service, cache *cache.Redis) *IncomeHandler {
	return &IncomeHandler{svc: svc, cache: cache}
}

func (h *IncomeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/income")
	grp.Get("/", h.List)
	grp.Get("/dispersion", h.Dispersion)
	grp.Get("/by-age", h.ByAge)
	grp.Get("/by-education", h.ByEducation)
}

func (h *IncomeHandler) incomeFilter(c fiber.Ctx) (dataaccess.IncomeFilter, error) {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return dataaccess.IncomeFilter{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	return dataaccess.IncomeFilter{
		Occupations: c.Query("occupation"),
		Region:      c.Query("region"),
		Gender:      c.Query("gender"),
		Year:        c.Query("year"),
		Limit:       limit,
	}, nil
}

func (h *IncomeHandler) List(c fiber.Ctx) error {
	f, err := h.incomeFilter(c)
	if err != nil {
		return err
	}
	return serveCached(c, h.cache, func() ([]dto.IncomeResponse, error) {
		rows, err := h.svc.Income(c.Context(), f)
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.IncomeResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.IncomeResponse{
				Year:              r.Year,
				RegionCode:        r.RegionCode,
				Region:            r.Region,
				SSYKCode:          r.SSYKCode,
				Occupation:        r.Occupation,
				GenderCode:        r.GenderCode,
				Gender:            r.Gender,
				MonthlySalary:     r.MonthlySalary,
				BasicSalary:       r.BasicSalary,
				NumEmployees:      r.NumEmployees,
				GenderSalaryRatio: r.GenderSalaryRatio,
			})
		}
		return out, nil
	})
}

func (h *IncomeHandler) Dispersion(c fiber.Ctx) error {
	f, err := h.incomeFilter(c)
	if err != nil {
		return err
	}
	return serveCached(c, h.cache, func() ([]dto.DispersionResponse, error) {
		rows, err := h.svc.Dispersion(c.Context(), f)
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.DispersionResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.DispersionResponse{
				Year:       r.Year,
				SSYKCode:   r.SSYKCode,
				Occupation: r.Occupation,
				GenderCode: r.GenderCode,
				Gender:     r.Gender,
				Mean:       r.Mean,
				P10:        r.P10,
				P25:        r.P25,
				Median:     r.Median,
				P75:        r.P75,
				P90:        r.P90,
			})
		}
		return out, nil
	})
}

func (h *IncomeHandler) ByAge(c fiber.Ctx) error {
	f, err := h.incomeFilter(c)
	if err != nil {
		return err
	}
	return serveCached(c, h.cache, func() ([]dto.IncomeByAgeResponse, error) {
		rows, err := h.svc.IncomeByAge(c.Context(), f)
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.IncomeByAgeResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.IncomeByAgeResponse{
				Year:          r.Year,
				SSYKCode:      r.SSYKCode,
				Occupation:    r.Occupation,
				GenderCode:    r.GenderCode,
				AgeGroup:      r.AgeGroup,
				MonthlySalary: r.MonthlySalary,
				NumEmployees:  r.NumEmployees,
			})
		}
		return out, nil
	})
}

func (h *IncomeHandler) ByEducation(c fiber.Ctx) error {
	f, err := h.incomeFilter(c)
	if err != nil {
		return err
	}
	return serveCached(c, h.cache, func() ([]dto.IncomeByEducationResponse, error) {
		rows, err := h.svc.IncomeByEducation(c.Context(), f)
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.IncomeByEducationResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.IncomeByEducationResponse{
				Year:           r.Year,
				SSYKCode:       r.SSYKCode,
				Occupation:     r.Occupation,
				GenderCode:     r.GenderCode,
				EducationLevel: r.EducationLevel,
				MonthlySalary:  r.MonthlySalary,
				NumEmployees:   r.NumEmployees,
			})
		}
		return out, nil
	})
}
