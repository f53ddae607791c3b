package service

import (
	"context"
	"errors"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/internal/repository"
	"church-service/internal/scope"
	"church-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountRoleService binds accounts to roles inside a church.
type AccountRoleService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewAccountRoleService(store *repository.Store, log *zap.Logger) *AccountRoleService {
	return &AccountRoleService{store: store, log: log}
}

type AccountRoleFilter struct {
	AccountID *uuid.UUID
	RoleID    *uuid.UUID
}

func (s *AccountRoleService) List(ctx context.Context, sc scope.Scope, f AccountRoleFilter, page repository.Page) (*repository.List[model.AccountRole], error) {
	q := s.store.DB(ctx).Model(&model.AccountRole{}).Preload("Role").Scopes(sc.Apply("tenant_id"))
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.RoleID != nil {
		q = q.Where("role_id = ?", *f.RoleID)
	}
	return repository.FindPage[model.AccountRole](q, page, "id")
}

type AccountRoleInput struct {
	AccountID uuid.UUID  `json:"account_id"`
	RoleID    uuid.UUID  `json:"role_id"`
	TenantID  *uuid.UUID `json:"tenant_id"`
}

// Create assigns a role. The assignment church must be the account's own
// church whatever the caller's scope; the scope check comes after that.
func (s *AccountRoleService) Create(ctx context.Context, sc scope.Scope, in AccountRoleInput) (*model.AccountRole, error) {
	db := s.store.DB(ctx)

	var acc model.Account
	if err := db.Where("id = ?", in.AccountID).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("account")
		}
		return nil, repository.TranslateError(err)
	}
	if err := mustExist(db, &model.Role{}, in.RoleID, "role"); err != nil {
		return nil, err
	}

	tenantID, err := s.assignmentTenant(sc, in.TenantID, &acc)
	if err != nil {
		return nil, err
	}
	if acc.TenantID == nil || *acc.TenantID != tenantID {
		return nil, apperr.Validation("role assignment church must match the account's church")
	}
	if err := sc.CheckTarget(tenantID); err != nil {
		return nil, err
	}

	var n int64
	if err := db.Model(&model.AccountRole{}).
		Where("account_id = ? AND role_id = ? AND tenant_id = ?", in.AccountID, in.RoleID, tenantID).
		Count(&n).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	if n > 0 {
		return nil, apperr.Conflict("account already has this role in this church")
	}

	ar := &model.AccountRole{AccountID: in.AccountID, RoleID: in.RoleID, TenantID: tenantID}
	if err := db.Create(ar).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	if err := db.Preload("Role").First(ar, ar.ID).Error; err != nil {
		return nil, repository.TranslateError(err)
	}

	prometheus.RecordOperation("account_role", "create")
	s.log.Info("Role assigned",
		zap.String("account_id", in.AccountID.String()),
		zap.String("role_id", in.RoleID.String()),
		zap.String("tenant_id", tenantID.String()))
	return ar, nil
}

// assignmentTenant picks the church of the assignment: the explicit one,
// else the caller's church context, else the account's own church.
func (s *AccountRoleService) assignmentTenant(sc scope.Scope, requested *uuid.UUID, acc *model.Account) (uuid.UUID, error) {
	if requested != nil {
		return *requested, nil
	}
	if t := sc.TenantID(); t != nil {
		return *t, nil
	}
	if acc.TenantID == nil {
		return uuid.Nil, apperr.Validation("platform admins cannot hold church roles")
	}
	return *acc.TenantID, nil
}

func (s *AccountRoleService) Delete(ctx context.Context, sc scope.Scope, id uint) error {
	if err := sc.RequireGlobal("remove role assignments"); err != nil {
		return err
	}
	res := s.store.DB(ctx).Scopes(sc.Apply("tenant_id")).Delete(&model.AccountRole{}, id)
	if res.Error != nil {
		return repository.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("account role")
	}
	prometheus.RecordOperation("account_role", "delete")
	return nil
}
