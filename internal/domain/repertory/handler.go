package repertory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/remedia/remedia/internal/platform/auth"
	"github.com/remedia/remedia/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor"))
	readGroup.GET("/symptoms", h.ListSymptoms)
	readGroup.GET("/symptoms/:code", h.GetSymptom)
	readGroup.GET("/rubrics", h.ListRubrics)
	readGroup.GET("/rubrics/search", h.SearchRubrics)
	readGroup.GET("/rubrics/:id", h.GetRubric)
	readGroup.GET("/remedies", h.ListRemedies)
	readGroup.GET("/remedies/:id", h.GetRemedy)

	// Reference data seeding is admin only
	writeGroup := api.Group("", auth.RequireRole("admin"))
	writeGroup.POST("/symptoms", h.CreateSymptom)
	writeGroup.POST("/rubrics", h.CreateRubric)
	writeGroup.POST("/remedies", h.CreateRemedy)
	writeGroup.POST("/grades", h.CreateGrade)
}

// -- Symptom handlers --

func (h *Handler) CreateSymptom(c echo.Context) error {
	var s Symptom
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSymptom(c.Request().Context(), &s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) GetSymptom(c echo.Context) error {
	s, err := h.svc.GetSymptomByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "symptom not found")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) ListSymptoms(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSymptoms(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Rubric handlers --

func (h *Handler) CreateRubric(c echo.Context) error {
	var r Rubric
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRubric(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetRubric(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetRubric(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "rubric not found")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) SearchRubrics(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchRubrics(c.Request().Context(),
		c.QueryParam("repertory"), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListRubrics(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRubrics(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Remedy handlers --

func (h *Handler) CreateRemedy(c echo.Context) error {
	var r Remedy
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRemedy(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetRemedy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetRemedy(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "remedy not found")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListRemedies(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRemedies(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Grade handlers --

func (h *Handler) CreateGrade(c echo.Context) error {
	var g RubricRemedy
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateGrade(c.Request().Context(), &g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, g)
}
