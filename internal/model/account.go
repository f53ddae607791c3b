package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAccountScope is returned when an account is neither a platform admin
// nor bound to a church.
var ErrAccountScope = errors.New("tenant-scoped account requires a church")

// Account is an authentication principal. Platform admins have no church,
// every other account belongs to exactly one.
type Account struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID        *uuid.UUID     `json:"tenant_id" gorm:"type:uuid;index;uniqueIndex:idx_accounts_tenant_email,priority:1,where:tenant_id IS NOT NULL AND deleted_at IS NULL"`
	Username        string         `json:"username" gorm:"size:150"`
	Email           string         `json:"email" gorm:"size:255;not null;uniqueIndex:idx_accounts_tenant_email,priority:2;uniqueIndex:idx_accounts_admin_email,where:is_platform_admin = true AND deleted_at IS NULL"`
	PasswordHash    string         `json:"-" gorm:"size:255;not null"`
	FirstName       string         `json:"first_name" gorm:"size:150"`
	LastName        string         `json:"last_name" gorm:"size:150"`
	Phone           string         `json:"phone" gorm:"size:20"`
	IsPlatformAdmin bool           `json:"is_platform_admin" gorm:"not null"`
	IsStaff         bool           `json:"is_staff" gorm:"not null"`
	IsActive        bool           `json:"is_active" gorm:"not null;index"`
	MFAEnabled      bool           `json:"mfa_enabled" gorm:"not null"`
	LastLoginAt     *time.Time     `json:"last_login_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BeforeCreate assigns the id and enforces the platform admin / church
// exclusivity.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Email = NormalizeEmail(a.Email)
	if a.IsPlatformAdmin {
		a.TenantID = nil
		return nil
	}
	if a.TenantID == nil || *a.TenantID == uuid.Nil {
		return ErrAccountScope
	}
	return nil
}

// FullName joins first and last name, falling back to the email.
func (a *Account) FullName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Email
	}
	return name
}
