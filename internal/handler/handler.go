package handler

import (
	"errors"
	"net/http"
	"strconv"

	"church-service/internal/apperr"
	"church-service/internal/repository"
	"church-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindInvalidCredentials: http.StatusBadRequest,
	apperr.KindValidation:         http.StatusBadRequest,
	apperr.KindUnauthorized:       http.StatusUnauthorized,
	apperr.KindForbidden:          http.StatusForbidden,
	apperr.KindNotFound:           http.StatusNotFound,
	apperr.KindConflict:           http.StatusConflict,
	apperr.KindInternal:           http.StatusInternalServerError,
}

// respondError writes err as {"error": kind, "message": ...}. Causes of
// internal errors are logged, never returned.
func respondError(c echo.Context, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal(err)
	}

	status, ok := statusByKind[appErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	log := logger.FromContext(c)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.String("kind", string(appErr.Kind)), zap.String("message", appErr.Message))
	}

	return c.JSON(status, echo.Map{
		"error":   string(appErr.Kind),
		"message": appErr.Message,
	})
}

func badRequest(c echo.Context, message string) error {
	return respondError(c, apperr.Validation("%s", message))
}

func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		// malformed ids cannot name a row
		return uuid.Nil, apperr.NotFound("resource")
	}
	return id, nil
}

func uintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.NotFound("resource")
	}
	return uint(id), nil
}

func uuidQuery(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be a UUID", name)
	}
	return &id, nil
}

func boolQuery(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be true or false", name)
	}
	return &v, nil
}

func pageQuery(c echo.Context) repository.Page {
	number, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	return repository.Page{Number: number, Size: size}.Normalize()
}
