package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "SINGLE"
	MaritalMarried  MaritalStatus = "MARRIED"
	MaritalWidowed  MaritalStatus = "WIDOWED"
	MaritalDivorced MaritalStatus = "DIVORCED"
)

func (m MaritalStatus) Valid() bool {
	switch m {
	case "", MaritalSingle, MaritalMarried, MaritalWidowed, MaritalDivorced:
		return true
	}
	return false
}

type MembershipStatus string

const (
	MembershipActive     MembershipStatus = "ACTIVE"
	MembershipTransfer   MembershipStatus = "TRANSFER"
	MembershipNewConvert MembershipStatus = "NEW_CONVERT"
	MembershipVisitor    MembershipStatus = "VISITOR"
	MembershipInactive   MembershipStatus = "INACTIVE"
)

func (m MembershipStatus) Valid() bool {
	switch m {
	case MembershipActive, MembershipTransfer, MembershipNewConvert, MembershipVisitor, MembershipInactive:
		return true
	}
	return false
}

type EducationLevel string

const (
	EducationPrimary      EducationLevel = "PRIMARY"
	EducationSecondary    EducationLevel = "SECONDARY"
	EducationTertiary     EducationLevel = "TERTIARY"
	EducationGraduate     EducationLevel = "GRADUATE"
	EducationPostgraduate EducationLevel = "POSTGRADUATE"
)

func (e EducationLevel) Valid() bool {
	switch e {
	case "", EducationPrimary, EducationSecondary, EducationTertiary, EducationGraduate, EducationPostgraduate:
		return true
	}
	return false
}

// Member is a registered person of a church.
type Member struct {
	ID               uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID        `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Title            string           `json:"title" gorm:"size:20"`
	FirstName        string           `json:"first_name" gorm:"size:100;not null"`
	MiddleName       string           `json:"middle_name" gorm:"size:100"`
	LastName         string           `json:"last_name" gorm:"size:100;not null"`
	Gender           Gender           `json:"gender" gorm:"size:10;not null"`
	DateOfBirth      *Date            `json:"date_of_birth" gorm:"type:date"`
	MaritalStatus    MaritalStatus    `json:"marital_status" gorm:"size:20"`
	NationalID       string           `json:"national_id" gorm:"size:50"`
	MembershipStatus MembershipStatus `json:"membership_status" gorm:"size:20;not null;index"`
	MemberSince      Date             `json:"member_since" gorm:"type:date;not null"`
	EducationLevel   EducationLevel   `json:"education_level" gorm:"size:20"`
	Occupation       string           `json:"occupation" gorm:"size:100"`
	Employer         string           `json:"employer" gorm:"size:200"`
	ProfilePhoto     string           `json:"profile_photo" gorm:"size:255"`
	Notes            string           `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `json:"-" gorm:"index"`

	Location *MemberLocation `json:"location,omitempty" gorm:"foreignKey:MemberID"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.MembershipStatus == "" {
		m.MembershipStatus = MembershipActive
	}
	return nil
}

func (m *Member) FullName() string {
	if m.MiddleName != "" {
		return m.FirstName + " " + m.MiddleName + " " + m.LastName
	}
	return m.FirstName + " " + m.LastName
}

// MemberLocation holds contact details, one per member.
type MemberLocation struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	MemberID       uuid.UUID      `json:"member_id" gorm:"type:uuid;not null;uniqueIndex:idx_member_locations_member,where:deleted_at IS NULL"`
	TenantID       uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	PhonePrimary   string         `json:"phone_primary" gorm:"size:20;not null"`
	PhoneSecondary string         `json:"phone_secondary" gorm:"size:20"`
	Email          string         `json:"email" gorm:"size:255"`
	Address        string         `json:"address" gorm:"type:text;not null"`
	City           string         `json:"city" gorm:"size:100;not null"`
	Region         string         `json:"region" gorm:"size:100"`
	Country        string         `json:"country" gorm:"size:100"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (l *MemberLocation) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Visitor is a first-time attendee who may later convert to a member.
type Visitor struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID          uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	FullName          string         `json:"full_name" gorm:"size:200;not null"`
	Gender            Gender         `json:"gender" gorm:"size:10"`
	Phone             string         `json:"phone" gorm:"size:20;not null"`
	Email             string         `json:"email" gorm:"size:255"`
	City              string         `json:"city" gorm:"size:100"`
	FirstVisitDate    Date           `json:"first_visit_date" gorm:"type:date;not null"`
	ReferralSource    string         `json:"referral_source" gorm:"size:200"`
	ReceiveUpdates    bool           `json:"receive_updates" gorm:"not null"`
	ConvertedToMember bool           `json:"converted_to_member" gorm:"not null;index"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

func (v *Visitor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
