package handler

import (
	"net/http"

	"church-service/internal/middleware"
	"church-service/internal/service"

	"github.com/labstack/echo/v4"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats returns headline counts for the caller's church, or for every
// church when a platform admin has not selected one.
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.dashboard.Stats(c.Request().Context(), middleware.ScopeFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
