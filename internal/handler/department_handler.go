package handler

import (
	"net/http"

	"church-service/internal/middleware"
	"church-service/internal/service"

	"github.com/labstack/echo/v4"
)

type DepartmentHandler struct {
	departments *service.DepartmentService
	memberDepts *service.MemberDepartmentService
}

func NewDepartmentHandler(departments *service.DepartmentService, memberDepts *service.MemberDepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, memberDepts: memberDepts}
}

func (h *DepartmentHandler) List(c echo.Context) error {
	active, err := boolQuery(c, "is_active")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.departments.List(c.Request().Context(), middleware.ScopeFrom(c), service.DepartmentFilter{IsActive: active}, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *DepartmentHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	d, err := h.departments.Get(c.Request().Context(), middleware.ScopeFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DepartmentHandler) Create(c echo.Context) error {
	var in service.DepartmentInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	d, err := h.departments.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DepartmentHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in service.DepartmentInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	d, err := h.departments.Update(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DepartmentHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.departments.Delete(c.Request().Context(), middleware.ScopeFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DepartmentHandler) ListAssignments(c echo.Context) error {
	memberID, err := uuidQuery(c, "member_id")
	if err != nil {
		return respondError(c, err)
	}
	deptID, err := uuidQuery(c, "department_id")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.memberDepts.List(c.Request().Context(), middleware.ScopeFrom(c),
		service.MemberDepartmentFilter{MemberID: memberID, DepartmentID: deptID}, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *DepartmentHandler) CreateAssignment(c echo.Context) error {
	var in service.MemberDepartmentInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	md, err := h.memberDepts.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, md)
}

func (h *DepartmentHandler) DeleteAssignment(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.memberDepts.Delete(c.Request().Context(), middleware.ScopeFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
