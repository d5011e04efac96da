package engine

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/remedia/remedia/internal/platform/auth"
)

// Handler exposes the analysis pipeline over HTTP.
type Handler struct {
	facade *Facade
}

func NewHandler(facade *Facade) *Handler {
	return &Handler{facade: facade}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	cases := g.Group("/cases", auth.RequireRole("admin", "doctor"))
	cases.POST("/analyze", h.Analyze)
}

// analyze runs one case through the pipeline.
//
// Reference-data gaps come back as 422 with the stage that ran dry; storage
// failures come back as 502 so callers can retry.
func (h *Handler) Analyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if emptyCase(req.Case) {
		return echo.NewHTTPError(http.StatusBadRequest, "case must contain at least one symptom")
	}

	out, err := h.facade.Analyze(c.Request().Context(), req)
	if err != nil {
		var nc *NoCoverageError
		if errors.As(err, &nc) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
				"error":     "no coverage for this case",
				"stage":     nc.Stage,
				"repertory": nc.Repertory,
				"symptoms":  nc.SymptomCodes,
			})
		}
		return echo.NewHTTPError(http.StatusBadGateway, "analysis backend unavailable")
	}
	return c.JSON(http.StatusOK, out)
}

func emptyCase(in CaseInput) bool {
	return len(in.Mental)+len(in.General)+len(in.Particular)+len(in.Modalities) == 0
}
