package handler

import (
	"net/http"

	"church-service/internal/middleware"
	"church-service/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	TenantID *uuid.UUID `json:"tenant_id"`
	ChurchID *uuid.UUID `json:"church_id"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}
	tenantID := req.TenantID
	if tenantID == nil {
		tenantID = req.ChurchID
	}

	res, err := h.auth.Login(c.Request().Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		TenantID: tenantID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	res, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

type changePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	acc := middleware.AccountFrom(c)
	if err := h.auth.ChangePassword(c.Request().Context(), acc, req.OldPassword, req.NewPassword, req.NewPasswordConfirm); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed successfully"})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Refresh == "" {
		return badRequest(c, "refresh token is required")
	}
	tokens, err := h.auth.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Refresh == "" {
		return badRequest(c, "refresh token is required")
	}
	if err := h.auth.Logout(c.Request().Context(), req.Refresh); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.AccountFrom(c))
}
