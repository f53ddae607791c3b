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
)

type VisitorService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewVisitorService(store *repository.Store, log *zap.Logger) *VisitorService {
	return &VisitorService{store: store, log: log}
}

type VisitorFilter struct {
	Converted *bool
}

func (s *VisitorService) List(ctx context.Context, sc scope.Scope, f VisitorFilter, page repository.Page) (*repository.List[model.Visitor], error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.store.DB(ctx).Model(&model.Visitor{}).Scopes(sc.Apply("tenant_id"))
	if f.Converted != nil {
		q = q.Where("converted_to_member = ?", *f.Converted)
	}
	return repository.FindPage[model.Visitor](q, page, "first_visit_date DESC, full_name")
}

func (s *VisitorService) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.Visitor, error) {
	var v model.Visitor
	if err := s.store.DB(ctx).Scopes(sc.Apply("tenant_id")).Where("id = ?", id).First(&v).Error; err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("visitor")
		}
		return nil, repository.TranslateError(err)
	}
	return &v, nil
}

type VisitorInput struct {
	FullName       *string       `json:"full_name"`
	Gender         *model.Gender `json:"gender"`
	Phone          *string       `json:"phone"`
	Email          *string       `json:"email"`
	City           *string       `json:"city"`
	FirstVisitDate *model.Date   `json:"first_visit_date"`
	ReferralSource *string       `json:"referral_source"`
	ReceiveUpdates *bool         `json:"receive_updates"`
}

func (in VisitorInput) apply(v *model.Visitor) error {
	set(&v.FullName, in.FullName)
	set(&v.Gender, in.Gender)
	set(&v.Phone, in.Phone)
	set(&v.Email, in.Email)
	set(&v.City, in.City)
	set(&v.FirstVisitDate, in.FirstVisitDate)
	set(&v.ReferralSource, in.ReferralSource)
	set(&v.ReceiveUpdates, in.ReceiveUpdates)

	if err := required("full_name", v.FullName); err != nil {
		return err
	}
	if err := required("phone", v.Phone); err != nil {
		return err
	}
	if v.FirstVisitDate.IsZero() {
		return apperr.Validation("first_visit_date is required")
	}
	if v.Gender != "" && !v.Gender.Valid() {
		return apperr.Validation("gender must be MALE or FEMALE")
	}
	return nil
}

// Create records a visitor in the caller's own church.
func (s *VisitorService) Create(ctx context.Context, sc scope.Scope, in VisitorInput) (*model.Visitor, error) {
	if sc.IsGlobal() {
		return nil, apperr.Validation("user must belong to a church to create visitors")
	}
	v := &model.Visitor{TenantID: *sc.TenantID(), ReceiveUpdates: true}
	if err := in.apply(v); err != nil {
		return nil, err
	}
	if err := s.store.DB(ctx).Create(v).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("visitor", "create")
	return v, nil
}

func (s *VisitorService) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, in VisitorInput) (*model.Visitor, error) {
	v, err := s.Get(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(v); err != nil {
		return nil, err
	}
	if err := s.store.DB(ctx).Save(v).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("visitor", "update")
	return v, nil
}

func (s *VisitorService) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if err := sc.RequireGlobal("delete visitors"); err != nil {
		return err
	}
	v, err := s.Get(ctx, sc, id)
	if err != nil {
		return err
	}
	if err := s.store.DB(ctx).Delete(v).Error; err != nil {
		return repository.TranslateError(err)
	}
	prometheus.RecordOperation("visitor", "delete")
	return nil
}

type ConvertInput struct {
	VisitorID   uuid.UUID   `json:"visitor_id"`
	MemberSince *model.Date `json:"member_since"`
	Occupation  string      `json:"occupation"`
	Notes       string      `json:"notes"`
}

// SplitFullName returns the first word as first name and the rest as last
// name. A single word is used for both.
func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// Convert turns a visitor into a NEW_CONVERT member with a location, in one
// transaction. A visitor converts at most once.
func (s *VisitorService) Convert(ctx context.Context, sc scope.Scope, in ConvertInput) (*model.Member, error) {
	if in.VisitorID == uuid.Nil {
		return nil, apperr.Validation("visitor_id is required")
	}
	if in.MemberSince == nil || in.MemberSince.IsZero() {
		return nil, apperr.Validation("member_since is required")
	}

	var member *model.Member
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)

		var v model.Visitor
		if err := db.Scopes(sc.Apply("tenant_id")).Where("id = ?", in.VisitorID).First(&v).Error; err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("visitor")
			}
			return repository.TranslateError(err)
		}
		if v.ConvertedToMember {
			return apperr.Validation("visitor already converted")
		}

		first, last := SplitFullName(v.FullName)
		gender := v.Gender
		if gender == "" {
			gender = model.GenderMale
		}
		member = &model.Member{
			TenantID:         v.TenantID,
			FirstName:        first,
			LastName:         last,
			Gender:           gender,
			MemberSince:      *in.MemberSince,
			MembershipStatus: model.MembershipNewConvert,
			Occupation:       in.Occupation,
			Notes:            in.Notes,
		}
		if err := db.Omit("Location").Create(member).Error; err != nil {
			return repository.TranslateError(err)
		}

		address := v.City
		if address == "" {
			address = "Unknown"
		}
		loc := &model.MemberLocation{
			MemberID:     member.ID,
			TenantID:     v.TenantID,
			PhonePrimary: v.Phone,
			Email:        v.Email,
			City:         v.City,
			Address:      address,
		}
		if err := db.Create(loc).Error; err != nil {
			return repository.TranslateError(err)
		}
		member.Location = loc

		// the predicate guards against a concurrent conversion
		res := db.Model(&model.Visitor{}).
			Where("id = ? AND converted_to_member = ?", v.ID, false).
			Update("converted_to_member", true)
		if res.Error != nil {
			return repository.TranslateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Validation("visitor already converted")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordOperation("visitor", "convert")
	s.log.Info("Visitor converted",
		zap.String("visitor_id", in.VisitorID.String()),
		zap.String("member_id", member.ID.String()))
	return member, nil
}
