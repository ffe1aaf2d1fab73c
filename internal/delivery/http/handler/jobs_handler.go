package handler

import (
	"errors"

	"arbetsdata/internal/cache"
	"arbetsdata/internal/dataaccess"
	"arbetsdata/internal/delivery/http/dto"
	"arbetsdata/internal/delivery/http/middleware"
	"arbetsdata/internal/store"

	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	svc   *dataaccess.Service
	cache *cache.Redis
}

func NewJobsHandler(svc *dataaccess.Service, cache *cache.Redis) *JobsHandler {
	return &JobsHandler{svc: svc, cache: cache}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/jobs")
	grp.Get("/", h.List)
	grp.Get("/aggregated", h.Aggregated)
	grp.Get("/top-employers", h.TopEmployers)
	grp.Get("/:id", h.Detail)
}

func (h *JobsHandler) jobsFilter(c fiber.Ctx) (dataaccess.JobsFilter, error) {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return dataaccess.JobsFilter{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	return dataaccess.JobsFilter{
		Occupations: c.Query("occupation"),
		Region:      c.Query("region"),
		Employer:    c.Query("employer"),
		Year:        c.Query("year"),
		Limit:       limit,
	}, nil
}

func listItem(r store.JobAdRow) dto.JobListResponse {
	return dto.JobListResponse{
		ID:                r.ID,
		Headline:          r.Headline,
		SSYKCode:          r.SSYKCode,
		OccupationLabel:   r.OccupationLabel,
		EmployerName:      r.EmployerName,
		Region:            r.Region,
		Municipality:      r.Municipality,
		PublishedDate:     r.PublishedDate,
		NumberOfVacancies: r.NumberOfVacancies,
		RemoteWork:        r.RemoteWork,
	}
}

func (h *JobsHandler) List(c fiber.Ctx) error {
	f, err := h.jobsFilter(c)
	if err != nil {
		return err
	}
	return serveCached(c, h.cache, func() ([]dto.JobListResponse, error) {
		rows, err := h.svc.Jobs(c.Context(), f)
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.JobListResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, listItem(r))
		}
		return out, nil
	})
}

func (h *JobsHandler) Detail(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, nil)
	}

	r, err := h.svc.JobByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, dataaccess.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "job ad not found", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}

	out := dto.JobDetailResponse{
		JobListResponse:     listItem(r),
		OccupationConceptID: r.OccupationConceptID,
		EmployerOrgNumber:   r.EmployerOrgNumber,
		MunicipalityCode:    r.MunicipalityCode,
		RegionCode:          r.RegionCode,
		LastApplicationDate: r.LastApplicationDate,
		EmploymentType:      r.EmploymentType,
		Duration:            r.Duration,
		WorkingHoursType:    r.WorkingHoursType,
		DescriptionText:     r.DescriptionText,
	}
	return serveCached(c, h.cache, func() (dto.JobDetailResponse, error) { return out, nil })
}

func (h *JobsHandler) Aggregated(c fiber.Ctx) error {
	f, err := h.jobsFilter(c)
	if err != nil {
		return err
	}
	return serveCached(c, h.cache, func() ([]dto.JobsAggregatedResponse, error) {
		rows, err := h.svc.JobsAggregated(c.Context(), f)
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.JobsAggregatedResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.JobsAggregatedResponse{
				SSYKCode:  r.SSYKCode,
				Region:    r.Region,
				Period:    r.Period,
				AdCount:   r.AdCount,
				Vacancies: r.Vacancies,
			})
		}
		return out, nil
	})
}

func (h *JobsHandler) TopEmployers(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	return serveCached(c, h.cache, func() ([]dto.TopEmployerResponse, error) {
		rows, err := h.svc.TopEmployers(c.Context(), limit)
		if err != nil {
			return nil, middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		out := make([]dto.TopEmployerResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.TopEmployerResponse{
				Employer:  r.Employer,
				Region:    r.Region,
				AdCount:   r.AdCount,
				Vacancies: r.Vacancies,
			})
		}
		return out, nil
	})
}
