package handler

import (
	"fmt"
	"net/http"
	"time"

	"church-service/internal/export"
	"church-service/internal/middleware"
	"church-service/internal/model"
	"church-service/internal/service"

	"github.com/labstack/echo/v4"
)

type MemberHandler struct {
	members  *service.MemberService
	visitors *service.VisitorService
}

func NewMemberHandler(members *service.MemberService, visitors *service.VisitorService) *MemberHandler {
	return &MemberHandler{members: members, visitors: visitors}
}

func memberFilter(c echo.Context) service.MemberFilter {
	return service.MemberFilter{
		Status: model.MembershipStatus(c.QueryParam("membership_status")),
		Search: c.QueryParam("search"),
	}
}

func (h *MemberHandler) ListMembers(c echo.Context) error {
	list, err := h.members.List(c.Request().Context(), middleware.ScopeFrom(c), memberFilter(c), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ExportMembers streams every member visible to the caller as a workbook.
func (h *MemberHandler) ExportMembers(c echo.Context) error {
	members, err := h.members.All(c.Request().Context(), middleware.ScopeFrom(c), memberFilter(c))
	if err != nil {
		return respondError(c, err)
	}
	data, err := export.MembersXLSX(members)
	if err != nil {
		return respondError(c, err)
	}
	filename := fmt.Sprintf("members-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, export.ContentType, data)
}

func (h *MemberHandler) GetMember(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	m, err := h.members.Get(c.Request().Context(), middleware.ScopeFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) CreateMember(c echo.Context) error {
	var in service.MemberInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	m, err := h.members.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MemberHandler) UpdateMember(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in service.MemberInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	m, err := h.members.Update(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) DeleteMember(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.members.Delete(c.Request().Context(), middleware.ScopeFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MemberHandler) ListVisitors(c echo.Context) error {
	converted, err := boolQuery(c, "converted_to_member")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.visitors.List(c.Request().Context(), middleware.ScopeFrom(c), service.VisitorFilter{Converted: converted}, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *MemberHandler) GetVisitor(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	v, err := h.visitors.Get(c.Request().Context(), middleware.ScopeFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *MemberHandler) CreateVisitor(c echo.Context) error {
	var in service.VisitorInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	v, err := h.visitors.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *MemberHandler) UpdateVisitor(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in service.VisitorInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	v, err := h.visitors.Update(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *MemberHandler) DeleteVisitor(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.visitors.Delete(c.Request().Context(), middleware.ScopeFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ConvertVisitor turns a visitor into a member of the visitor's church.
func (h *MemberHandler) ConvertVisitor(c echo.Context) error {
	var in service.ConvertInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	m, err := h.visitors.Convert(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "visitor converted to member",
		"member":  m,
	})
}
