package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role levels, lower is more privileged. Used for ordering only.
const (
	LevelSuperAdmin = 1
	LevelCoreAdmin  = 2
	LevelDeptHead   = 3
	LevelMember     = 4
	LevelVisitor    = 5
)

// LevelLabel returns the display name of a role level.
func LevelLabel(level int) string {
	switch level {
	case LevelSuperAdmin:
		return "Super Admin (Pastor/First Elder)"
	case LevelCoreAdmin:
		return "Core Admin (Secretary/Treasurer)"
	case LevelDeptHead:
		return "Department Head"
	case LevelMember:
		return "Member"
	case LevelVisitor:
		return "Visitor"
	}
	return ""
}

type Role struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"size:50;not null;uniqueIndex:idx_roles_name,where:deleted_at IS NULL"`
	Level       int            `json:"level" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Permissions     []Permission `json:"permissions,omitempty" gorm:"-"`
	PermissionCount int          `json:"permission_count" gorm:"-"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Module groups permissions by functional area.
type Module string

const (
	ModuleMembers       Module = "MEMBERS"
	ModuleTreasury      Module = "TREASURY"
	ModuleSecretariat   Module = "SECRETARIAT"
	ModuleDepartments   Module = "DEPARTMENTS"
	ModuleAnnouncements Module = "ANNOUNCEMENTS"
	ModuleReports       Module = "REPORTS"
	ModuleSettings      Module = "SETTINGS"
)

func (m Module) Valid() bool {
	switch m {
	case ModuleMembers, ModuleTreasury, ModuleSecretariat, ModuleDepartments,
		ModuleAnnouncements, ModuleReports, ModuleSettings:
		return true
	}
	return false
}

type Permission struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Code        string         `json:"code" gorm:"size:100;not null;uniqueIndex:idx_permissions_code,where:deleted_at IS NULL"`
	Module      Module         `json:"module" gorm:"size:50;not null;index"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// RolePermission grants a permission to a role.
type RolePermission struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RoleID       uuid.UUID `json:"role_id" gorm:"type:uuid;not null;uniqueIndex:idx_role_permission"`
	PermissionID uuid.UUID `json:"permission_id" gorm:"type:uuid;not null;uniqueIndex:idx_role_permission;index"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountRole binds an account to a role within the account's church.
type AccountRole struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AccountID  uuid.UUID `json:"account_id" gorm:"type:uuid;not null;uniqueIndex:idx_account_role_tenant"`
	RoleID     uuid.UUID `json:"role_id" gorm:"type:uuid;not null;uniqueIndex:idx_account_role_tenant;index"`
	TenantID   uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_account_role_tenant;index"`
	AssignedAt time.Time `json:"assigned_at" gorm:"autoCreateTime"`

	Role *Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}
