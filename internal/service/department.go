package service

import (
	"context"
	"strings"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/internal/repository"
	"church-service/internal/scope"
	"church-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DepartmentService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewDepartmentService(store *repository.Store, log *zap.Logger) *DepartmentService {
	return &DepartmentService{store: store, log: log}
}

type DepartmentFilter struct {
	IsActive *bool
}

func (s *DepartmentService) List(ctx context.Context, sc scope.Scope, f DepartmentFilter, page repository.Page) (*repository.List[model.Department], error) {
	q := s.store.DB(ctx).Model(&model.Department{}).Scopes(sc.Apply("tenant_id"))
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return repository.FindPage[model.Department](q, page, "name")
}

func (s *DepartmentService) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.Department, error) {
	var d model.Department
	if err := s.store.DB(ctx).Scopes(sc.Apply("tenant_id")).Where("id = ?", id).First(&d).Error; err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("department")
		}
		return nil, repository.TranslateError(err)
	}
	return &d, nil
}

type DepartmentInput struct {
	TenantID    *uuid.UUID `json:"tenant_id"`
	Name        *string    `json:"name"`
	Code        *string    `json:"code"`
	Description *string    `json:"description"`
	Icon        *string    `json:"icon"`
	Color       *string    `json:"color"`
	IsActive    *bool      `json:"is_active"`
}

func (in DepartmentInput) apply(d *model.Department) error {
	set(&d.Name, in.Name)
	set(&d.Code, in.Code)
	set(&d.Description, in.Description)
	set(&d.Icon, in.Icon)
	set(&d.Color, in.Color)
	set(&d.IsActive, in.IsActive)
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))

	if err := required("name", d.Name); err != nil {
		return err
	}
	if err := required("code", d.Code); err != nil {
		return err
	}
	if d.Color != "" && (len(d.Color) != 7 || d.Color[0] != '#') {
		return apperr.Validation("color must be a hex value like #1A2B3C")
	}
	return nil
}

func (s *DepartmentService) ensureCodeFree(db *gorm.DB, tenantID uuid.UUID, code string, exclude uuid.UUID) error {
	q := db.Model(&model.Department{}).Where("tenant_id = ? AND code = ?", tenantID, code)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return repository.TranslateError(err)
	}
	if n > 0 {
		return apperr.Conflict("department code %q already exists in this church", code)
	}
	return nil
}

func (s *DepartmentService) Create(ctx context.Context, sc scope.Scope, in DepartmentInput) (*model.Department, error) {
	tenantID, err := scope.Target(sc, in.TenantID)
	if err != nil {
		return nil, err
	}
	d := &model.Department{TenantID: tenantID, IsActive: true}
	if err := in.apply(d); err != nil {
		return nil, err
	}

	db := s.store.DB(ctx)
	if err := mustExist(db, &model.Tenant{}, tenantID, "church"); err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(db, tenantID, d.Code, uuid.Nil); err != nil {
		return nil, err
	}
	if err := db.Create(d).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("department", "create")
	return d, nil
}

func (s *DepartmentService) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, in DepartmentInput) (*model.Department, error) {
	d, err := s.Get(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if in.TenantID != nil && *in.TenantID != d.TenantID {
		return nil, apperr.Validation("departments cannot move between churches")
	}
	if err := in.apply(d); err != nil {
		return nil, err
	}

	db := s.store.DB(ctx)
	if err := s.ensureCodeFree(db, d.TenantID, d.Code, d.ID); err != nil {
		return nil, err
	}
	if err := db.Save(d).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("department", "update")
	return d, nil
}

// Delete soft-deletes a department and drops its member assignments.
func (s *DepartmentService) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	d, err := s.Get(ctx, sc, id)
	if err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)
		if err := db.Where("department_id = ?", d.ID).Delete(&model.MemberDepartment{}).Error; err != nil {
			return err
		}
		return db.Delete(d).Error
	})
	if err != nil {
		return repository.TranslateError(err)
	}
	prometheus.RecordOperation("department", "delete")
	return nil
}

// MemberDepartmentService assigns members to departments of their church.
type MemberDepartmentService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewMemberDepartmentService(store *repository.Store, log *zap.Logger) *MemberDepartmentService {
	return &MemberDepartmentService{store: store, log: log}
}

type MemberDepartmentFilter struct {
	MemberID     *uuid.UUID
	DepartmentID *uuid.UUID
}

func (s *MemberDepartmentService) List(ctx context.Context, sc scope.Scope, f MemberDepartmentFilter, page repository.Page) (*repository.List[model.MemberDepartment], error) {
	q := s.store.DB(ctx).Model(&model.MemberDepartment{}).Scopes(sc.Apply("tenant_id"))
	if f.MemberID != nil {
		q = q.Where("member_id = ?", *f.MemberID)
	}
	if f.DepartmentID != nil {
		q = q.Where("department_id = ?", *f.DepartmentID)
	}
	return repository.FindPage[model.MemberDepartment](q, page, "id")
}

type MemberDepartmentInput struct {
	MemberID         uuid.UUID `json:"member_id"`
	DepartmentID     uuid.UUID `json:"department_id"`
	RoleInDepartment string    `json:"role_in_department"`
}

func (s *MemberDepartmentService) Create(ctx context.Context, sc scope.Scope, in MemberDepartmentInput) (*model.MemberDepartment, error) {
	db := s.store.DB(ctx)

	var member model.Member
	if err := db.Scopes(sc.Apply("tenant_id")).Where("id = ?", in.MemberID).First(&member).Error; err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("member")
		}
		return nil, repository.TranslateError(err)
	}
	var dept model.Department
	if err := db.Scopes(sc.Apply("tenant_id")).Where("id = ?", in.DepartmentID).First(&dept).Error; err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("department")
		}
		return nil, repository.TranslateError(err)
	}
	if member.TenantID != dept.TenantID {
		return nil, apperr.Validation("member and department belong to different churches")
	}

	var n int64
	if err := db.Model(&model.MemberDepartment{}).
		Where("member_id = ? AND department_id = ?", in.MemberID, in.DepartmentID).
		Count(&n).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	if n > 0 {
		return nil, apperr.Conflict("member is already in this department")
	}

	md := &model.MemberDepartment{
		MemberID:         member.ID,
		DepartmentID:     dept.ID,
		TenantID:         member.TenantID,
		RoleInDepartment: in.RoleInDepartment,
	}
	if err := db.Create(md).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("member_department", "create")
	return md, nil
}

func (s *MemberDepartmentService) Delete(ctx context.Context, sc scope.Scope, id uint) error {
	res := s.store.DB(ctx).Scopes(sc.Apply("tenant_id")).Delete(&model.MemberDepartment{}, id)
	if res.Error != nil {
		return repository.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("member department")
	}
	prometheus.RecordOperation("member_department", "delete")
	return nil
}
