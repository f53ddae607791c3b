package service

import (
	"context"
	"errors"
	"time"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/internal/repository"
	"church-service/internal/tokenstore"
	"church-service/pkg/jwtutil"
	"church-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OnboardingRole is granted to the first account of a self-registered church
// when the role exists in the catalog.
const OnboardingRole = "Pastor"

type AuthService struct {
	store    *repository.Store
	jwt      *jwtutil.JWTUtil
	denylist tokenstore.Denylist
	policy   PasswordPolicy
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(store *repository.Store, jwt *jwtutil.JWTUtil, denylist tokenstore.Denylist, policy PasswordPolicy, log *zap.Logger) *AuthService {
	return &AuthService{
		store:    store,
		jwt:      jwt,
		denylist: denylist,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// Authenticate resolves credentials to an active account.
//
// Platform admins are tried first and ignore tenantID. Otherwise the
// (email, tenantID) pair identifies the account, so the same address may
// exist in several churches.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, tenantID *uuid.UUID) (*model.Account, error) {
	defer prometheus.TrackDBOperation("authenticate")(time.Now())
	email = model.NormalizeEmail(email)
	db := s.store.DB(ctx)

	var admin model.Account
	err := db.Where("email = ? AND is_platform_admin = ? AND is_active = ?", email, true, true).First(&admin).Error
	switch {
	case err == nil:
		if checkPassword(admin.PasswordHash, password) {
			return &admin, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, repository.TranslateError(err)
	}

	if tenantID == nil {
		return nil, apperr.InvalidCredentials()
	}

	var tenantCount int64
	if err := db.Model(&model.Tenant{}).Where("id = ?", *tenantID).Count(&tenantCount).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	if tenantCount == 0 {
		return nil, apperr.InvalidCredentials()
	}

	var acc model.Account
	err = db.Where("email = ? AND tenant_id = ? AND is_platform_admin = ? AND is_active = ?", email, *tenantID, false, true).
		First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, repository.TranslateError(err)
	}
	if !checkPassword(acc.PasswordHash, password) {
		return nil, apperr.InvalidCredentials()
	}
	return &acc, nil
}

type LoginInput struct {
	Email    string
	Password string
	TenantID *uuid.UUID
}

type AuthResult struct {
	Account *model.Account     `json:"account"`
	Tenant  *model.Tenant      `json:"tenant,omitempty"`
	Tokens  *jwtutil.TokenPair `json:"tokens"`
}

// Login authenticates, stamps last_login_at and issues a token pair.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	prometheus.LoginCounter.Inc()

	acc, err := s.Authenticate(ctx, in.Email, in.Password, in.TenantID)
	if err != nil {
		prometheus.RecordAuthError("login_failure")
		return nil, err
	}

	now := s.now()
	if err := s.store.DB(ctx).Model(acc).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	acc.LastLoginAt = &now

	tokens, err := s.issue(acc)
	if err != nil {
		return nil, err
	}

	s.log.Info("Account logged in",
		zap.String("account_id", acc.ID.String()),
		zap.Bool("platform_admin", acc.IsPlatformAdmin))
	return &AuthResult{Account: acc, Tokens: tokens}, nil
}

type RegisterInput struct {
	TenantName   string `json:"tenant_name"`
	Denomination string `json:"denomination"`
	Country      string `json:"country"`
	Region       string `json:"region"`
	City         string `json:"city"`
	Address      string `json:"address"`
	Timezone     string `json:"timezone"`
	Currency     string `json:"currency"`

	AdminUsername        string `json:"admin_username"`
	AdminEmail           string `json:"admin_email"`
	AdminPassword        string `json:"admin_password"`
	AdminPasswordConfirm string `json:"admin_password_confirm"`
	AdminFirstName       string `json:"admin_first_name"`
	AdminLastName        string `json:"admin_last_name"`
	AdminPhone           string `json:"admin_phone"`
}

// Register onboards a new church with its first admin account. The church
// starts in TRIAL. Every write happens in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	prometheus.RegisterCounter.Inc()

	email := model.NormalizeEmail(in.AdminEmail)
	if err := required("tenant_name", in.TenantName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.policy.Validate(in.AdminPassword, in.AdminPasswordConfirm, false); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.AdminPassword)
	if err != nil {
		return nil, err
	}

	username := in.AdminUsername
	if username == "" {
		username = email
	}

	tenant := &model.Tenant{
		Name:         in.TenantName,
		Denomination: in.Denomination,
		Country:      in.Country,
		Region:       in.Region,
		City:         in.City,
		Address:      in.Address,
		Timezone:     in.Timezone,
		Currency:     in.Currency,
		Status:       model.TenantTrial,
	}
	var acc *model.Account
	var tokens *jwtutil.TokenPair

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)

		var taken int64
		if err := db.Model(&model.Account{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			return repository.TranslateError(err)
		}
		if taken > 0 {
			return apperr.Validation("a user with this email already exists")
		}

		if err := db.Create(tenant).Error; err != nil {
			return repository.TranslateError(err)
		}

		acc = &model.Account{
			TenantID:     &tenant.ID,
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			FirstName:    in.AdminFirstName,
			LastName:     in.AdminLastName,
			Phone:        in.AdminPhone,
			IsStaff:      true,
			IsActive:     true,
		}
		if err := db.Create(acc).Error; err != nil {
			return repository.TranslateError(err)
		}

		var role model.Role
		err := db.Where("name = ?", OnboardingRole).First(&role).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.log.Warn("Onboarding role missing, admin created without role",
				zap.String("role", OnboardingRole),
				zap.String("tenant_id", tenant.ID.String()))
		case err != nil:
			return repository.TranslateError(err)
		default:
			assignment := &model.AccountRole{AccountID: acc.ID, RoleID: role.ID, TenantID: tenant.ID}
			if err := db.Create(assignment).Error; err != nil {
				return repository.TranslateError(err)
			}
		}

		// signing failures undo the registration
		tokens, err = s.issue(acc)
		return err
	})
	if err != nil {
		prometheus.RecordAuthError("register_failure")
		return nil, err
	}

	prometheus.RecordOperation("tenant", "register")
	s.log.Info("Church registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("account_id", acc.ID.String()))
	return &AuthResult{Account: acc, Tenant: tenant, Tokens: tokens}, nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, acc *model.Account, oldPassword, newPassword, confirm string) error {
	if !checkPassword(acc.PasswordHash, oldPassword) {
		prometheus.RecordAuthError("wrong_old_password")
		return apperr.Validation("old password is incorrect")
	}
	if err := s.policy.Validate(newPassword, confirm, true); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.DB(ctx).Model(acc).Update("password_hash", hash).Error; err != nil {
		return repository.TranslateError(err)
	}
	acc.PasswordHash = hash

	prometheus.RecordAuthOperation("password_change")
	return nil
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
// Only the caller that claims the old token's id gets a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwtutil.TokenPair, error) {
	claims, err := s.validateRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	acc, err := s.LoadActive(ctx, claims.AccountID)
	if err != nil {
		return nil, err
	}

	if err := s.claimRefresh(ctx, claims); err != nil {
		return nil, err
	}

	prometheus.RecordAuthOperation("token_refresh")
	return s.issue(acc)
}

// Logout revokes a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.validateRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.claimRefresh(ctx, claims); err != nil {
		return err
	}
	prometheus.RecordAuthOperation("logout")
	return nil
}

// claimRefresh moves the token id onto the denylist. It fails when another
// request got there first.
func (s *AuthService) claimRefresh(ctx context.Context, claims *jwtutil.AccountClaims) error {
	claimed, err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return apperr.Internal(err)
	}
	if !claimed {
		prometheus.RecordAuthError("revoked_refresh_token")
		return apperr.Unauthorized("refresh token has been revoked")
	}
	prometheus.DecreaseActiveTokens()
	return nil
}

// ResolveAccessToken validates a bearer token and loads its active account.
func (s *AuthService) ResolveAccessToken(ctx context.Context, token string) (*model.Account, error) {
	claims, err := s.jwt.ValidateToken(token, jwtutil.TokenTypeAccess)
	if err != nil {
		prometheus.RecordAuthError("invalid_token")
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return s.LoadActive(ctx, claims.AccountID)
}

// LoadActive loads an account that is neither deleted nor deactivated.
func (s *AuthService) LoadActive(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var acc model.Account
	err := s.store.DB(ctx).Where("id = ? AND is_active = ?", id, true).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prometheus.RecordAuthError("inactive_account")
		return nil, apperr.Unauthorized("account is disabled or no longer exists")
	}
	if err != nil {
		return nil, repository.TranslateError(err)
	}
	return &acc, nil
}

func (s *AuthService) validateRefresh(ctx context.Context, token string) (*jwtutil.AccountClaims, error) {
	claims, err := s.jwt.ValidateToken(token, jwtutil.TokenTypeRefresh)
	if err != nil {
		prometheus.RecordAuthError("invalid_refresh_token")
		return nil, apperr.Unauthorized("invalid or expired refresh token")
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if revoked {
		prometheus.RecordAuthError("revoked_refresh_token")
		return nil, apperr.Unauthorized("refresh token has been revoked")
	}
	return claims, nil
}

func (s *AuthService) issue(acc *model.Account) (*jwtutil.TokenPair, error) {
	tokens, err := s.jwt.GeneratePair(jwtutil.Subject{
		AccountID:       acc.ID,
		Email:           acc.Email,
		TenantID:        acc.TenantID,
		IsPlatformAdmin: acc.IsPlatformAdmin,
	})
	if err != nil {
		prometheus.RecordAuthError("token_generation_failed")
		return nil, apperr.Internal(err)
	}
	prometheus.IncreaseActiveTokens()
	return tokens, nil
}
