package handler

import (
	"net/http"

	"church-service/internal/middleware"
	"church-service/internal/service"

	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// List filters by church through the scope; church_id only narrows the
// result for platform admins.
func (h *AccountHandler) List(c echo.Context) error {
	active, err := boolQuery(c, "is_active")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.accounts.List(c.Request().Context(), middleware.ScopeFrom(c), service.AccountFilter{IsActive: active}, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AccountHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	acc, err := h.accounts.Get(c.Request().Context(), middleware.ScopeFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *AccountHandler) Create(c echo.Context) error {
	var in service.CreateAccountInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	acc, err := h.accounts.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, acc)
}

func (h *AccountHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in service.UpdateAccountInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	acc, err := h.accounts.Update(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *AccountHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.accounts.Delete(c.Request().Context(), middleware.ScopeFrom(c), middleware.AccountFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
