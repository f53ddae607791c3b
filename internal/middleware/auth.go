package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/pkg/logger"
	"church-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const AccountKey = "account"

// AccountResolver turns a bearer token into the active account it names.
type AccountResolver interface {
	ResolveAccessToken(ctx context.Context, token string) (*model.Account, error)
}

// Auth validates the bearer token and loads the account on every request,
// so deactivated or deleted accounts lose access immediately.
func Auth(resolver AccountResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				prometheus.RecordAuthError("missing_token")
				return unauthorized(c, "missing authorization token")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				prometheus.RecordAuthError("invalid_auth_format")
				return unauthorized(c, "invalid authorization format, expected Bearer token")
			}

			acc, err := resolver.ResolveAccessToken(c.Request().Context(), parts[1])
			if err != nil {
				if apperr.IsKind(err, apperr.KindUnauthorized) {
					log.Debug("Rejected bearer token", zap.Error(err))
					return unauthorized(c, messageOf(err))
				}
				log.Error("Failed to resolve bearer token", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"error":   string(apperr.KindInternal),
					"message": "internal error",
				})
			}

			c.Set(AccountKey, acc)
			c.Set(logger.ContextKey, log.With(zap.String("account_id", acc.ID.String())))
			return next(c)
		}
	}
}

// AccountFrom returns the authenticated account, nil outside Auth.
func AccountFrom(c echo.Context) *model.Account {
	acc, _ := c.Get(AccountKey).(*model.Account)
	return acc
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"error":   string(apperr.KindUnauthorized),
		"message": message,
	})
}

func messageOf(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
