package handler

import (
	"net/http"

	"church-service/internal/middleware"
	"church-service/internal/model"
	"church-service/internal/service"

	"github.com/labstack/echo/v4"
)

type TenantHandler struct {
	tenants *service.TenantService
}

func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

func (h *TenantHandler) List(c echo.Context) error {
	f := service.TenantFilter{Status: model.TenantStatus(c.QueryParam("status"))}
	list, err := h.tenants.List(c.Request().Context(), middleware.ScopeFrom(c), f, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *TenantHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	t, err := h.tenants.Get(c.Request().Context(), middleware.ScopeFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TenantHandler) Create(c echo.Context) error {
	var in service.TenantInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	t, err := h.tenants.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *TenantHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in service.TenantInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	t, err := h.tenants.Update(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TenantHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.tenants.Delete(c.Request().Context(), middleware.ScopeFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
