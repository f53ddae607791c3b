package service

import (
	"context"
	"strings"
	"time"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/internal/repository"
	"church-service/internal/scope"
	"church-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MemberService struct {
	store *repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewMemberService(store *repository.Store, log *zap.Logger) *MemberService {
	return &MemberService{store: store, log: log, now: time.Now}
}

type MemberFilter struct {
	Status model.MembershipStatus
	Search string
}

func (s *MemberService) query(ctx context.Context, sc scope.Scope, f MemberFilter) *gorm.DB {
	q := s.store.DB(ctx).Model(&model.Member{}).Preload("Location").Scopes(sc.Apply("tenant_id"))
	if f.Status != "" {
		q = q.Where("membership_status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(national_id) LIKE ?)", like, like, like)
	}
	return q
}

func (s *MemberService) List(ctx context.Context, sc scope.Scope, f MemberFilter, page repository.Page) (*repository.List[model.Member], error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	return repository.FindPage[model.Member](s.query(ctx, sc, f), page, "last_name, first_name")
}

// All returns every visible member matching f, for exports.
func (s *MemberService) All(ctx context.Context, sc scope.Scope, f MemberFilter) ([]model.Member, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var members []model.Member
	if err := s.query(ctx, sc, f).Order("last_name, first_name").Find(&members).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	return members, nil
}

func (s *MemberService) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.Member, error) {
	var m model.Member
	err := s.store.DB(ctx).Preload("Location").Scopes(sc.Apply("tenant_id")).Where("id = ?", id).First(&m).Error
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("member")
		}
		return nil, repository.TranslateError(err)
	}
	return &m, nil
}

type LocationInput struct {
	PhonePrimary   *string `json:"phone_primary"`
	PhoneSecondary *string `json:"phone_secondary"`
	Email          *string `json:"email"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	Region         *string `json:"region"`
	Country        *string `json:"country"`
}

func (in LocationInput) apply(l *model.MemberLocation) error {
	set(&l.PhonePrimary, in.PhonePrimary)
	set(&l.PhoneSecondary, in.PhoneSecondary)
	set(&l.Email, in.Email)
	set(&l.Address, in.Address)
	set(&l.City, in.City)
	set(&l.Region, in.Region)
	set(&l.Country, in.Country)

	if err := required("location.phone_primary", l.PhonePrimary); err != nil {
		return err
	}
	if err := required("location.address", l.Address); err != nil {
		return err
	}
	return required("location.city", l.City)
}

type MemberInput struct {
	Title            *string                 `json:"title"`
	FirstName        *string                 `json:"first_name"`
	MiddleName       *string                 `json:"middle_name"`
	LastName         *string                 `json:"last_name"`
	Gender           *model.Gender           `json:"gender"`
	DateOfBirth      *model.Date             `json:"date_of_birth"`
	MaritalStatus    *model.MaritalStatus    `json:"marital_status"`
	NationalID       *string                 `json:"national_id"`
	MembershipStatus *model.MembershipStatus `json:"membership_status"`
	MemberSince      *model.Date             `json:"member_since"`
	EducationLevel   *model.EducationLevel   `json:"education_level"`
	Occupation       *string                 `json:"occupation"`
	Employer         *string                 `json:"employer"`
	ProfilePhoto     *string                 `json:"profile_photo"`
	Notes            *string                 `json:"notes"`
	Location         *LocationInput          `json:"location"`
}

func (in MemberInput) apply(m *model.Member) error {
	set(&m.Title, in.Title)
	set(&m.FirstName, in.FirstName)
	set(&m.MiddleName, in.MiddleName)
	set(&m.LastName, in.LastName)
	set(&m.Gender, in.Gender)
	set(&m.MaritalStatus, in.MaritalStatus)
	set(&m.NationalID, in.NationalID)
	set(&m.MembershipStatus, in.MembershipStatus)
	set(&m.MemberSince, in.MemberSince)
	set(&m.EducationLevel, in.EducationLevel)
	set(&m.Occupation, in.Occupation)
	set(&m.Employer, in.Employer)
	set(&m.ProfilePhoto, in.ProfilePhoto)
	set(&m.Notes, in.Notes)
	if in.DateOfBirth != nil {
		dob := *in.DateOfBirth
		m.DateOfBirth = &dob
	}

	if err := required("first_name", m.FirstName); err != nil {
		return err
	}
	if err := required("last_name", m.LastName); err != nil {
		return err
	}
	if !m.Gender.Valid() {
		return apperr.Validation("gender must be MALE or FEMALE")
	}
	if !m.MaritalStatus.Valid() {
		return apperr.Validation("invalid marital_status %q", m.MaritalStatus)
	}
	if !m.MembershipStatus.Valid() {
		return apperr.Validation("invalid membership_status %q", m.MembershipStatus)
	}
	if !m.EducationLevel.Valid() {
		return apperr.Validation("invalid education_level %q", m.EducationLevel)
	}
	return nil
}

// Create registers a member in the caller's own church. Platform admins
// have no church and cannot create members.
func (s *MemberService) Create(ctx context.Context, sc scope.Scope, in MemberInput) (*model.Member, error) {
	if sc.IsGlobal() {
		return nil, apperr.Validation("user must belong to a church to create members")
	}
	tenantID := *sc.TenantID()

	m := &model.Member{
		TenantID:         tenantID,
		MembershipStatus: model.MembershipActive,
		MemberSince:      model.NewDate(s.now()),
	}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	var loc *model.MemberLocation
	if in.Location != nil {
		loc = &model.MemberLocation{TenantID: tenantID}
		if err := in.Location.apply(loc); err != nil {
			return nil, err
		}
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)
		if err := db.Omit("Location").Create(m).Error; err != nil {
			return err
		}
		if loc != nil {
			loc.MemberID = m.ID
			if err := db.Create(loc).Error; err != nil {
				return err
			}
			m.Location = loc
		}
		return nil
	})
	if err != nil {
		return nil, repository.TranslateError(err)
	}

	prometheus.RecordOperation("member", "create")
	s.log.Info("Member created", zap.String("member_id", m.ID.String()), zap.String("tenant_id", tenantID.String()))
	return m, nil
}

// Update applies a partial update. A location block creates the location
// when the member has none yet.
func (s *MemberService) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, in MemberInput) (*model.Member, error) {
	m, err := s.Get(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	loc := m.Location
	if in.Location != nil {
		if loc == nil {
			loc = &model.MemberLocation{MemberID: m.ID, TenantID: m.TenantID}
		}
		if err := in.Location.apply(loc); err != nil {
			return nil, err
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)
		if err := db.Omit("Location").Save(m).Error; err != nil {
			return err
		}
		if in.Location != nil {
			return db.Save(loc).Error
		}
		return nil
	})
	if err != nil {
		return nil, repository.TranslateError(err)
	}
	m.Location = loc

	prometheus.RecordOperation("member", "update")
	return m, nil
}

// Delete soft-deletes a member and its location. Platform admins only.
func (s *MemberService) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if err := sc.RequireGlobal("delete members"); err != nil {
		return err
	}
	m, err := s.Get(ctx, sc, id)
	if err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)
		if err := db.Where("member_id = ?", m.ID).Delete(&model.MemberLocation{}).Error; err != nil {
			return err
		}
		if err := db.Where("member_id = ?", m.ID).Delete(&model.MemberDepartment{}).Error; err != nil {
			return err
		}
		return db.Delete(m).Error
	})
	if err != nil {
		return repository.TranslateError(err)
	}
	prometheus.RecordOperation("member", "delete")
	return nil
}
