package middleware

import (
	"context"

	"church-service/internal/scope"
	"church-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const ScopeKey = "scope"

// Query parameters and headers that select a church for platform admins.
var (
	tenantParams  = []string{"church_id", "tenant_id"}
	tenantHeaders = []string{"X-Church-ID", "X-Tenant-ID"}
)

// TenantChecker reports whether a church exists.
type TenantChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Scope resolves the request scope once, after Auth. A church named by a
// platform admin that does not exist is dropped with a warning and the
// request proceeds with no church context.
func Scope(tenants TenantChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acc := AccountFrom(c)
			if acc == nil {
				return unauthorized(c, "authentication required")
			}

			var requested *uuid.UUID
			if acc.IsPlatformAdmin {
				requested = requestedTenant(c, tenants)
			}
			c.Set(ScopeKey, scope.ForAccount(acc, requested))
			return next(c)
		}
	}
}

// ScopeFrom returns the request scope. Outside Scope it denies everything.
func ScopeFrom(c echo.Context) scope.Scope {
	if sc, ok := c.Get(ScopeKey).(scope.Scope); ok {
		return sc
	}
	return scope.TenantScope{Tenant: uuid.Nil}
}

func requestedTenant(c echo.Context, tenants TenantChecker) *uuid.UUID {
	raw := ""
	for _, p := range tenantParams {
		if raw = c.QueryParam(p); raw != "" {
			break
		}
	}
	if raw == "" {
		for _, h := range tenantHeaders {
			if raw = c.Request().Header.Get(h); raw != "" {
				break
			}
		}
	}
	if raw == "" {
		return nil
	}

	log := logger.FromContext(c)
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("Ignoring malformed church id", zap.String("church_id", raw))
		return nil
	}
	ok, err := tenants.Exists(c.Request().Context(), id)
	if err != nil {
		log.Warn("Could not resolve church context", zap.String("church_id", raw), zap.Error(err))
		return nil
	}
	if !ok {
		log.Warn("Church context not found, continuing without one", zap.String("church_id", raw))
		return nil
	}
	return &id
}
