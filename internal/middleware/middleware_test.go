package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/internal/scope"
	"church-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	accounts map[string]*model.Account
}

func (f fakeResolver) ResolveAccessToken(_ context.Context, token string) (*model.Account, error) {
	if acc, ok := f.accounts[token]; ok {
		return acc, nil
	}
	return nil, apperr.Unauthorized("invalid or expired token")
}

type fakeTenants map[uuid.UUID]bool

func (f fakeTenants) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return f[id], nil
}

func serve(t *testing.T, mw []echo.MiddlewareFunc, req *http.Request, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/", h, mw...)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := serve(t, nil, req, func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	assert.NotEmpty(t, rec.Header().Get(logger.RequestIDKey))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(logger.RequestIDKey, "abc")
	rec = serve(t, nil, req, func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	assert.Equal(t, "abc", rec.Header().Get(logger.RequestIDKey))
}

func TestAuth(t *testing.T) {
	tenantID := uuid.New()
	acc := &model.Account{ID: uuid.New(), TenantID: &tenantID}
	resolver := fakeResolver{accounts: map[string]*model.Account{"good": acc}}
	ok := func(c echo.Context) error {
		require.Same(t, acc, AccountFrom(c))
		return c.NoContent(http.StatusOK)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(t, []echo.MiddlewareFunc{Auth(resolver)}, req, ok)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"error":"Unauthorized"`)
			}
		})
	}
}

func TestScope(t *testing.T) {
	churchA := uuid.New()
	churchB := uuid.New()
	member := &model.Account{ID: uuid.New(), TenantID: &churchA}
	admin := &model.Account{ID: uuid.New(), IsPlatformAdmin: true}
	resolver := fakeResolver{accounts: map[string]*model.Account{"member": member, "admin": admin}}
	tenants := fakeTenants{churchA: true, churchB: true}

	run := func(token, target string, header bool) scope.Scope {
		url := "/"
		if target != "" && !header {
			url += "?church_id=" + target
		}
		req := httptest.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		if target != "" && header {
			req.Header.Set("X-Tenant-ID", target)
		}
		var got scope.Scope
		rec := serve(t, []echo.MiddlewareFunc{Auth(resolver), Scope(tenants)}, req, func(c echo.Context) error {
			got = ScopeFrom(c)
			return c.NoContent(http.StatusOK)
		})
		require.Equal(t, http.StatusOK, rec.Code)
		return got
	}

	sc := run("member", churchB.String(), false)
	assert.False(t, sc.IsGlobal())
	assert.Equal(t, churchA, *sc.TenantID(), "tenant accounts cannot switch church")

	sc = run("admin", "", false)
	assert.True(t, sc.IsGlobal())
	assert.Nil(t, sc.TenantID())

	sc = run("admin", churchB.String(), false)
	assert.Equal(t, churchB, *sc.TenantID())

	sc = run("admin", churchA.String(), true)
	assert.Equal(t, churchA, *sc.TenantID())

	sc = run("admin", uuid.NewString(), false)
	assert.Nil(t, sc.TenantID(), "unknown church is dropped")

	sc = run("admin", "not-a-uuid", true)
	assert.Nil(t, sc.TenantID())
}
