package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantStatus is the lifecycle state of a church.
type TenantStatus string

const (
	TenantActive    TenantStatus = "ACTIVE"
	TenantSuspended TenantStatus = "SUSPENDED"
	TenantTrial     TenantStatus = "TRIAL"
	TenantInactive  TenantStatus = "INACTIVE"
)

func (s TenantStatus) Valid() bool {
	switch s {
	case TenantActive, TenantSuspended, TenantTrial, TenantInactive:
		return true
	}
	return false
}

// Tenant is a church, the isolation boundary for every other record.
type Tenant struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string         `json:"name" gorm:"size:200;not null"`
	Denomination string         `json:"denomination" gorm:"size:100"`
	Country      string         `json:"country" gorm:"size:100"`
	Region       string         `json:"region" gorm:"size:100"`
	City         string         `json:"city" gorm:"size:100"`
	Address      string         `json:"address" gorm:"type:text"`
	Timezone     string         `json:"timezone" gorm:"size:64;not null"`
	Currency     string         `json:"currency" gorm:"size:3;not null"`
	Status       TenantStatus   `json:"status" gorm:"size:20;not null;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Tenant) TableName() string {
	return "churches"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Timezone == "" {
		t.Timezone = "UTC"
	}
	if t.Currency == "" {
		t.Currency = "USD"
	}
	if t.Status == "" {
		t.Status = TenantActive
	}
	return nil
}
