package service

import (
	"context"
	"time"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/internal/repository"
	"church-service/internal/scope"
	"church-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PermissionService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewPermissionService(store *repository.Store, log *zap.Logger) *PermissionService {
	return &PermissionService{store: store, log: log}
}

type PermissionFilter struct {
	Module model.Module
}

func (s *PermissionService) List(ctx context.Context, f PermissionFilter, page repository.Page) (*repository.List[model.Permission], error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.store.DB(ctx).Model(&model.Permission{})
	if f.Module != "" {
		q = q.Where("module = ?", f.Module)
	}
	return repository.FindPage[model.Permission](q, page, "module, code")
}

func (s *PermissionService) Get(ctx context.Context, id uuid.UUID) (*model.Permission, error) {
	var p model.Permission
	if err := s.store.DB(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("permission")
		}
		return nil, repository.TranslateError(err)
	}
	return &p, nil
}

type PermissionInput struct {
	Code        *string       `json:"code"`
	Module      *model.Module `json:"module"`
	Description *string       `json:"description"`
}

func (in PermissionInput) apply(p *model.Permission) error {
	set(&p.Code, in.Code)
	set(&p.Module, in.Module)
	set(&p.Description, in.Description)

	if err := required("code", p.Code); err != nil {
		return err
	}
	if !p.Module.Valid() {
		return apperr.Validation("invalid module %q", p.Module)
	}
	return nil
}

func (s *PermissionService) Create(ctx context.Context, sc scope.Scope, in PermissionInput) (*model.Permission, error) {
	if err := sc.RequireGlobal("manage permissions"); err != nil {
		return nil, err
	}
	p := &model.Permission{}
	if err := in.apply(p); err != nil {
		return nil, err
	}

	db := s.store.DB(ctx)
	if err := ensureUnique(db, &model.Permission{}, "code", p.Code, uuid.Nil, "permission"); err != nil {
		return nil, err
	}
	if err := db.Create(p).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("permission", "create")
	return p, nil
}

func (s *PermissionService) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, in PermissionInput) (*model.Permission, error) {
	if err := sc.RequireGlobal("manage permissions"); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}

	db := s.store.DB(ctx)
	if err := ensureUnique(db, &model.Permission{}, "code", p.Code, p.ID, "permission"); err != nil {
		return nil, err
	}
	if err := db.Save(p).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("permission", "update")
	return p, nil
}

// Delete soft-deletes a permission and revokes it from every role.
func (s *PermissionService) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if err := sc.RequireGlobal("delete permissions"); err != nil {
		return err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)
		if err := db.Where("permission_id = ?", id).Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}
		return db.Delete(p).Error
	})
	if err != nil {
		return repository.TranslateError(err)
	}
	prometheus.RecordOperation("permission", "delete")
	return nil
}

// RolePermissionService manages grants of permissions to roles.
type RolePermissionService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewRolePermissionService(store *repository.Store, log *zap.Logger) *RolePermissionService {
	return &RolePermissionService{store: store, log: log}
}

type RolePermissionFilter struct {
	RoleID       *uuid.UUID
	PermissionID *uuid.UUID
}

func (s *RolePermissionService) List(ctx context.Context, f RolePermissionFilter, page repository.Page) (*repository.List[model.RolePermission], error) {
	q := s.store.DB(ctx).Model(&model.RolePermission{})
	if f.RoleID != nil {
		q = q.Where("role_id = ?", *f.RoleID)
	}
	if f.PermissionID != nil {
		q = q.Where("permission_id = ?", *f.PermissionID)
	}
	return repository.FindPage[model.RolePermission](q, page, "id")
}

type RolePermissionInput struct {
	RoleID       uuid.UUID `json:"role_id"`
	PermissionID uuid.UUID `json:"permission_id"`
}

func (s *RolePermissionService) Create(ctx context.Context, sc scope.Scope, in RolePermissionInput) (*model.RolePermission, error) {
	if err := sc.RequireGlobal("grant permissions"); err != nil {
		return nil, err
	}
	db := s.store.DB(ctx)

	if err := mustExist(db, &model.Role{}, in.RoleID, "role"); err != nil {
		return nil, err
	}
	if err := mustExist(db, &model.Permission{}, in.PermissionID, "permission"); err != nil {
		return nil, err
	}

	var n int64
	if err := db.Model(&model.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", in.RoleID, in.PermissionID).
		Count(&n).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	if n > 0 {
		return nil, apperr.Conflict("role already has this permission")
	}

	rp := &model.RolePermission{RoleID: in.RoleID, PermissionID: in.PermissionID}
	if err := db.Create(rp).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("role_permission", "create")
	return rp, nil
}

func (s *RolePermissionService) Delete(ctx context.Context, sc scope.Scope, id uint) error {
	if err := sc.RequireGlobal("revoke permissions"); err != nil {
		return err
	}
	res := s.store.DB(ctx).Delete(&model.RolePermission{}, id)
	if res.Error != nil {
		return repository.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("role permission")
	}
	prometheus.RecordOperation("role_permission", "delete")
	return nil
}
