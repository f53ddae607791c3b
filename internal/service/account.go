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
	"gorm.io/gorm"
)

type AccountService struct {
	store  *repository.Store
	policy PasswordPolicy
	log    *zap.Logger
}

func NewAccountService(store *repository.Store, policy PasswordPolicy, log *zap.Logger) *AccountService {
	return &AccountService{store: store, policy: policy, log: log}
}

type AccountFilter struct {
	IsActive *bool
}

func (s *AccountService) List(ctx context.Context, sc scope.Scope, f AccountFilter, page repository.Page) (*repository.List[model.Account], error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.store.DB(ctx).Model(&model.Account{}).Scopes(sc.Apply("tenant_id"))
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return repository.FindPage[model.Account](q, page, "email")
}

func (s *AccountService) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.Account, error) {
	var acc model.Account
	if err := s.store.DB(ctx).Scopes(sc.Apply("tenant_id")).Where("id = ?", id).First(&acc).Error; err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("account")
		}
		return nil, repository.TranslateError(err)
	}
	return &acc, nil
}

type CreateAccountInput struct {
	TenantID        *uuid.UUID `json:"tenant_id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	PasswordConfirm string     `json:"password_confirm"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Phone           string     `json:"phone"`
	IsStaff         bool       `json:"is_staff"`
}

// Create adds a tenant-scoped account. Tenant-scoped callers may only
// create accounts in their own church.
func (s *AccountService) Create(ctx context.Context, sc scope.Scope, in CreateAccountInput) (*model.Account, error) {
	tenantID, err := scope.Target(sc, in.TenantID)
	if err != nil {
		return nil, err
	}

	email := model.NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.policy.Validate(in.Password, in.PasswordConfirm, true); err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	db := s.store.DB(ctx)

	var tenantCount int64
	if err := db.Model(&model.Tenant{}).Where("id = ?", tenantID).Count(&tenantCount).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	if tenantCount == 0 {
		return nil, apperr.Validation("church does not exist")
	}

	if err := s.ensureEmailFree(db, email, &tenantID, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	username := in.Username
	if username == "" {
		username = email
	}
	acc := &model.Account{
		TenantID:     &tenantID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		IsStaff:      in.IsStaff,
		IsActive:     true,
	}
	if err := db.Create(acc).Error; err != nil {
		return nil, repository.TranslateError(err)
	}

	prometheus.RecordOperation("account", "create")
	s.log.Info("Account created",
		zap.String("account_id", acc.ID.String()),
		zap.String("tenant_id", tenantID.String()))
	return acc, nil
}

// CreatePlatformAdmin provisions an account with no church. It is only
// reachable from the operator CLI.
func (s *AccountService) CreatePlatformAdmin(ctx context.Context, email, username, password string) (*model.Account, error) {
	email = model.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.policy.Validate(password, "", false); err != nil {
		return nil, err
	}

	db := s.store.DB(ctx)
	var taken int64
	if err := db.Model(&model.Account{}).Where("email = ?", email).Count(&taken).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	if taken > 0 {
		return nil, apperr.Conflict("a user with email %s already exists", email)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	if username == "" {
		username = email
	}
	acc := &model.Account{
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		IsPlatformAdmin: true,
		IsStaff:         true,
		IsActive:        true,
	}
	if err := db.Create(acc).Error; err != nil {
		return nil, repository.TranslateError(err)
	}

	s.log.Info("Platform admin created", zap.String("account_id", acc.ID.String()))
	return acc, nil
}

type UpdateAccountInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	IsStaff   *bool   `json:"is_staff"`
	IsActive  *bool   `json:"is_active"`
}

func (s *AccountService) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, in UpdateAccountInput) (*model.Account, error) {
	acc, err := s.Get(ctx, sc, id)
	if err != nil {
		return nil, err
	}

	db := s.store.DB(ctx)
	if in.Email != nil {
		email := model.NormalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != acc.Email {
			if err := s.ensureEmailFree(db, email, acc.TenantID, acc.ID); err != nil {
				return nil, err
			}
		}
		acc.Email = email
	}
	set(&acc.Username, in.Username)
	set(&acc.FirstName, in.FirstName)
	set(&acc.LastName, in.LastName)
	set(&acc.Phone, in.Phone)
	set(&acc.IsStaff, in.IsStaff)
	set(&acc.IsActive, in.IsActive)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Save(acc).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("account", "update")
	return acc, nil
}

// Delete soft-deletes an account and deactivates it. Nobody may delete
// their own account.
func (s *AccountService) Delete(ctx context.Context, sc scope.Scope, caller *model.Account, id uuid.UUID) error {
	if caller.ID == id {
		return apperr.Validation("you cannot delete your own account")
	}
	if err := sc.RequireGlobal("delete accounts"); err != nil {
		return err
	}
	acc, err := s.Get(ctx, sc, id)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)
		if err := db.Model(acc).Update("is_active", false).Error; err != nil {
			return err
		}
		return db.Delete(acc).Error
	})
	if err != nil {
		return repository.TranslateError(err)
	}

	prometheus.RecordOperation("account", "delete")
	s.log.Info("Account deleted",
		zap.String("account_id", id.String()),
		zap.String("deleted_by", caller.ID.String()))
	return nil
}

// ensureEmailFree checks the uniqueness rule: per church for tenant-scoped
// accounts, among platform admins otherwise.
func (s *AccountService) ensureEmailFree(db *gorm.DB, email string, tenantID *uuid.UUID, exclude uuid.UUID) error {
	q := db.Model(&model.Account{}).Where("email = ?", email)
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	} else {
		q = q.Where("is_platform_admin = ?", true)
	}
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return repository.TranslateError(err)
	}
	if n > 0 {
		return apperr.Conflict("a user with this email already exists in this church")
	}
	return nil
}
