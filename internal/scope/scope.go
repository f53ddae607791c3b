// Package scope resolves what slice of tenant data a caller may touch.
//
// A Scope is computed once per request from the authenticated account and
// passed explicitly to every service call.
package scope

import (
	"church-service/internal/apperr"
	"church-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Scope interface {
	// IsGlobal reports whether the caller is a platform admin.
	IsGlobal() bool
	// TenantID is the effective church context, nil meaning all churches.
	TenantID() *uuid.UUID
	// Apply restricts a query on the given tenant column.
	Apply(column string) func(*gorm.DB) *gorm.DB
	// CheckTarget fails with Forbidden when tenantID is outside the scope.
	CheckTarget(tenantID uuid.UUID) error
	// RequireGlobal fails with Forbidden unless the caller is a platform admin.
	RequireGlobal(action string) error
}

// GlobalScope belongs to platform admins. Tenant optionally narrows reads to
// one church.
type GlobalScope struct {
	Tenant *uuid.UUID
}

func (GlobalScope) IsGlobal() bool { return true }

func (s GlobalScope) TenantID() *uuid.UUID { return s.Tenant }

func (s GlobalScope) Apply(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.Tenant == nil {
			return db
		}
		return db.Where(column+" = ?", *s.Tenant)
	}
}

func (GlobalScope) CheckTarget(uuid.UUID) error { return nil }

func (GlobalScope) RequireGlobal(string) error { return nil }

// TenantScope belongs to accounts bound to a single church.
type TenantScope struct {
	Tenant uuid.UUID
}

func (TenantScope) IsGlobal() bool { return false }

func (s TenantScope) TenantID() *uuid.UUID {
	id := s.Tenant
	return &id
}

func (s TenantScope) Apply(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", s.Tenant)
	}
}

func (s TenantScope) CheckTarget(tenantID uuid.UUID) error {
	if tenantID != s.Tenant {
		return apperr.Forbidden("cannot act on another church")
	}
	return nil
}

func (TenantScope) RequireGlobal(action string) error {
	return apperr.Forbidden("only platform admins can %s", action)
}

// ForAccount derives the scope of an authenticated account. requested is
// honored only for platform admins.
func ForAccount(acc *model.Account, requested *uuid.UUID) Scope {
	if acc.IsPlatformAdmin {
		return GlobalScope{Tenant: requested}
	}
	if acc.TenantID == nil {
		// unreachable for persisted accounts; deny everything
		return TenantScope{Tenant: uuid.Nil}
	}
	return TenantScope{Tenant: *acc.TenantID}
}

// Target resolves the church a new tenant-bound record should belong to.
// Tenant-scoped callers default to their own church.
func Target(s Scope, requested *uuid.UUID) (uuid.UUID, error) {
	if requested != nil && *requested != uuid.Nil {
		if err := s.CheckTarget(*requested); err != nil {
			return uuid.Nil, err
		}
		return *requested, nil
	}
	if s.IsGlobal() {
		if t := s.TenantID(); t != nil {
			return *t, nil
		}
		return uuid.Nil, apperr.Validation("tenant_id is required")
	}
	return *s.TenantID(), nil
}
