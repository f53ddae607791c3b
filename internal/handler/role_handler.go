package handler

import (
	"net/http"

	"church-service/internal/middleware"
	"church-service/internal/model"
	"church-service/internal/service"

	"github.com/labstack/echo/v4"
)

// RoleHandler serves roles, permissions and both assignment tables.
type RoleHandler struct {
	roles        *service.RoleService
	permissions  *service.PermissionService
	rolePerms    *service.RolePermissionService
	accountRoles *service.AccountRoleService
}

func NewRoleHandler(s *service.Services) *RoleHandler {
	return &RoleHandler{
		roles:        s.Roles,
		permissions:  s.Permissions,
		rolePerms:    s.RolePerms,
		accountRoles: s.AccountRoles,
	}
}

func (h *RoleHandler) ListRoles(c echo.Context) error {
	list, err := h.roles.List(c.Request().Context(), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RoleHandler) GetRole(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	role, err := h.roles.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) CreateRole(c echo.Context) error {
	var in service.RoleInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	role, err := h.roles.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler) UpdateRole(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in service.RoleInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	role, err := h.roles.Update(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) DeleteRole(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.roles.Delete(c.Request().Context(), middleware.ScopeFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHandler) ListPermissions(c echo.Context) error {
	f := service.PermissionFilter{Module: model.Module(c.QueryParam("module"))}
	list, err := h.permissions.List(c.Request().Context(), f, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RoleHandler) GetPermission(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.permissions.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *RoleHandler) CreatePermission(c echo.Context) error {
	var in service.PermissionInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	p, err := h.permissions.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *RoleHandler) UpdatePermission(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in service.PermissionInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	p, err := h.permissions.Update(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *RoleHandler) DeletePermission(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.permissions.Delete(c.Request().Context(), middleware.ScopeFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHandler) ListRolePermissions(c echo.Context) error {
	roleID, err := uuidQuery(c, "role_id")
	if err != nil {
		return respondError(c, err)
	}
	permID, err := uuidQuery(c, "permission_id")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.rolePerms.List(c.Request().Context(), service.RolePermissionFilter{RoleID: roleID, PermissionID: permID}, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RoleHandler) CreateRolePermission(c echo.Context) error {
	var in service.RolePermissionInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	rp, err := h.rolePerms.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, rp)
}

func (h *RoleHandler) DeleteRolePermission(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.rolePerms.Delete(c.Request().Context(), middleware.ScopeFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHandler) ListAccountRoles(c echo.Context) error {
	accountID, err := uuidQuery(c, "account_id")
	if err != nil {
		return respondError(c, err)
	}
	if accountID == nil {
		if accountID, err = uuidQuery(c, "user_id"); err != nil {
			return respondError(c, err)
		}
	}
	roleID, err := uuidQuery(c, "role_id")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.accountRoles.List(c.Request().Context(), middleware.ScopeFrom(c),
		service.AccountRoleFilter{AccountID: accountID, RoleID: roleID}, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RoleHandler) CreateAccountRole(c echo.Context) error {
	var in service.AccountRoleInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	ar, err := h.accountRoles.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ar)
}

func (h *RoleHandler) DeleteAccountRole(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.accountRoles.Delete(c.Request().Context(), middleware.ScopeFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
