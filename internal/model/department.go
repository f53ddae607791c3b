package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Department struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_departments_tenant_code,priority:1,where:deleted_at IS NULL"`
	Name        string         `json:"name" gorm:"size:100;not null"`
	Code        string         `json:"code" gorm:"size:20;not null;uniqueIndex:idx_departments_tenant_code,priority:2"`
	Description string         `json:"description" gorm:"type:text"`
	Icon        string         `json:"icon" gorm:"size:50"`
	Color       string         `json:"color" gorm:"size:7"`
	IsActive    bool           `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Color == "" {
		d.Color = "#000000"
	}
	return nil
}

// MemberDepartment assigns a member to a department of the same church.
type MemberDepartment struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	MemberID         uuid.UUID `json:"member_id" gorm:"type:uuid;not null;uniqueIndex:idx_member_department"`
	DepartmentID     uuid.UUID `json:"department_id" gorm:"type:uuid;not null;uniqueIndex:idx_member_department;index"`
	TenantID         uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	RoleInDepartment string    `json:"role_in_department" gorm:"size:100"`
	AssignedAt       time.Time `json:"assigned_at" gorm:"autoCreateTime"`
}
