package caserecord

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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
	g := api.Group("", auth.RequireRole("admin", "doctor"))
	g.GET("/cases", h.ListCases)
	g.GET("/cases/:id", h.GetCase)
	g.POST("/cases/:id/decision", h.AttachDecision)
	g.POST("/cases/:id/outcome", h.RecordOutcome)
	g.GET("/patients/:id/cases", h.ListPatientCases)
	g.GET("/analytics/success-rate", h.SuccessRate)
	g.GET("/analytics/co-occurrence", h.CoOccurrence)
}

func (h *Handler) GetCase(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.GetCase(c.Request().Context(), id)
	if err != nil {
		return caseError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListCases(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCases(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPatientCases(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCasesByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type decisionRequest struct {
	FinalRemedy string `json:"final_remedy"`
	Potency     string `json:"potency,omitempty"`
	Repetition  string `json:"repetition,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (h *Handler) AttachDecision(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.AttachDecision(c.Request().Context(), id, req.FinalRemedy, req.Potency, req.Repetition, req.Notes)
	if err != nil {
		return caseError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

type outcomeRequest struct {
	Outcome      string `json:"outcome"`
	OutcomeNotes string `json:"outcome_notes,omitempty"`
}

func (h *Handler) RecordOutcome(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req outcomeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.RecordOutcome(c.Request().Context(), id, req.Outcome, req.OutcomeNotes)
	if err != nil {
		return caseError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) SuccessRate(c echo.Context) error {
	from, err := parseTimeParam(c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from time")
	}
	to, err := parseTimeParam(c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to time")
	}
	sr, err := h.svc.RemedySuccessRate(c.Request().Context(), c.QueryParam("remedy"), from, to)
	if err != nil {
		return caseError(err)
	}
	return c.JSON(http.StatusOK, sr)
}

func (h *Handler) CoOccurrence(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, err := h.svc.CoOccurrence(c.Request().Context(), c.QueryParam("symptom"), pg.Limit)
	if err != nil {
		return caseError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"symptom":  c.QueryParam("symptom"),
		"remedies": items,
	})
}

// caseError maps service errors onto HTTP status codes: missing records to
// 404, rejected input to 400, everything else (storage) to 500.
func caseError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return echo.NewHTTPError(http.StatusNotFound, "case not found")
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseTimeParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
