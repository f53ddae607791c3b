package service

import (
	"sync"
	"testing"
	"time"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/internal/tokenstore"
	"church-service/pkg/config"
	"church-service/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoginPlatformAdminIgnoresTenant(t *testing.T) {
	f := newFixture(t)
	church := f.tenant("Grace")
	admin := f.admin("root@example.com")

	for _, tenantID := range []*uuid.UUID{nil, &church.ID, ptr(uuid.New())} {
		res, err := f.svcs.Auth.Login(f.ctx, LoginInput{Email: "ROOT@example.com", Password: testPassword, TenantID: tenantID})
		require.NoError(t, err)
		assert.Equal(t, admin.ID, res.Account.ID)
		assert.NotNil(t, res.Account.LastLoginAt)
		assert.NotEmpty(t, res.Tokens.Access)
		assert.NotEmpty(t, res.Tokens.Refresh)
	}
}

func TestLoginTenantAccountIsBoundToItsChurch(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	hope := f.tenant("Hope")
	a := f.account(&grace.ID, "jane@example.com")
	b := f.account(&hope.ID, "jane@example.com")

	res, err := f.svcs.Auth.Login(f.ctx, LoginInput{Email: "jane@example.com", Password: testPassword, TenantID: &grace.ID})
	require.NoError(t, err)
	assert.Equal(t, a.ID, res.Account.ID)

	res, err = f.svcs.Auth.Login(f.ctx, LoginInput{Email: "jane@example.com", Password: testPassword, TenantID: &hope.ID})
	require.NoError(t, err)
	assert.Equal(t, b.ID, res.Account.ID)

	// a Hope account with the same email but another password
	other := f.account(&hope.ID, "john@example.com")
	hash, err := hashPassword("otherpass1")
	require.NoError(t, err)
	require.NoError(t, f.store.DB(f.ctx).Model(other).Update("password_hash", hash).Error)
	f.account(&grace.ID, "john@example.com")

	_, err = f.svcs.Auth.Login(f.ctx, LoginInput{Email: "john@example.com", Password: "otherpass1", TenantID: &grace.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredentials))

	f.account(&hope.ID, "only-hope@example.com")
	_, err = f.svcs.Auth.Login(f.ctx, LoginInput{Email: "only-hope@example.com", Password: testPassword, TenantID: &grace.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredentials))
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	f.account(&grace.ID, "jane@example.com")
	inactive := f.account(&grace.ID, "old@example.com")
	require.NoError(t, f.store.DB(f.ctx).Model(inactive).Update("is_active", false).Error)

	tests := []struct {
		name string
		in   LoginInput
	}{
		{"missing tenant", LoginInput{Email: "jane@example.com", Password: testPassword}},
		{"unknown tenant", LoginInput{Email: "jane@example.com", Password: testPassword, TenantID: ptr(uuid.New())}},
		{"wrong password", LoginInput{Email: "jane@example.com", Password: "wrong-password", TenantID: &grace.ID}},
		{"unknown email", LoginInput{Email: "nobody@example.com", Password: testPassword, TenantID: &grace.ID}},
		{"inactive account", LoginInput{Email: "old@example.com", Password: testPassword, TenantID: &grace.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svcs.Auth.Login(f.ctx, tt.in)
			assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredentials), "got %v", err)
		})
	}
}

func TestLoginRejectsDeletedChurch(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	f.account(&grace.ID, "jane@example.com")
	require.NoError(t, f.store.DB(f.ctx).Delete(grace).Error)

	_, err := f.svcs.Auth.Login(f.ctx, LoginInput{Email: "jane@example.com", Password: testPassword, TenantID: &grace.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidCredentials))
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	pastor := f.role(OnboardingRole, model.LevelSuperAdmin)

	res, err := f.svcs.Auth.Register(f.ctx, RegisterInput{
		TenantName:    "X",
		AdminEmail:    "a@b.com",
		AdminPassword: "longpass1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TenantTrial, res.Tenant.Status)
	require.NotNil(t, res.Account.TenantID)
	assert.Equal(t, res.Tenant.ID, *res.Account.TenantID)
	assert.False(t, res.Account.IsPlatformAdmin)
	assert.NotEmpty(t, res.Tokens.Access)

	var assignment model.AccountRole
	require.NoError(t, f.store.DB(f.ctx).Where("account_id = ?", res.Account.ID).First(&assignment).Error)
	assert.Equal(t, pastor.ID, assignment.RoleID)
	assert.Equal(t, res.Tenant.ID, assignment.TenantID)

	_, err = f.svcs.Auth.Register(f.ctx, RegisterInput{
		TenantName:    "Y",
		AdminEmail:    "a@b.com",
		AdminPassword: "longpass1",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	var churches int64
	require.NoError(t, f.store.DB(f.ctx).Model(&model.Tenant{}).Count(&churches).Error)
	assert.Equal(t, int64(1), churches)
}

func TestRegisterRollsBackWhenRoleAssignmentFails(t *testing.T) {
	f := newFixture(t)
	f.role(OnboardingRole, model.LevelSuperAdmin)
	f.failOn("create", "account_roles")

	_, err := f.svcs.Auth.Register(f.ctx, RegisterInput{
		TenantName:    "X",
		AdminEmail:    "a@b.com",
		AdminPassword: "longpass1",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
	assert.ErrorIs(t, err, errInjected)

	assert.Zero(t, f.count(&model.Tenant{}), "church insert must roll back")
	assert.Zero(t, f.count(&model.Account{}), "admin insert must roll back")
	assert.Zero(t, f.count(&model.AccountRole{}))
}

func TestRegisterRollsBackWhenSigningFails(t *testing.T) {
	f := newFixture(t)
	unsigned := jwtutil.New(config.JWTConfig{Issuer: "church-service-test", AccessTTL: time.Hour, RefreshTTL: time.Hour})
	auth := NewAuthService(f.store, unsigned, tokenstore.NewMemory(), PasswordPolicy{MinLength: 8}, zap.NewNop())

	_, err := auth.Register(f.ctx, RegisterInput{
		TenantName:    "X",
		AdminEmail:    "a@b.com",
		AdminPassword: "longpass1",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))

	assert.Zero(t, f.count(&model.Tenant{}))
	assert.Zero(t, f.count(&model.Account{}))

	_, err = f.svcs.Auth.Register(f.ctx, RegisterInput{
		TenantName:    "X",
		AdminEmail:    "a@b.com",
		AdminPassword: "longpass1",
	})
	assert.NoError(t, err, "the email stays free after a failed registration")
}

func TestRegisterWithoutOnboardingRole(t *testing.T) {
	f := newFixture(t)

	res, err := f.svcs.Auth.Register(f.ctx, RegisterInput{
		TenantName:    "X",
		AdminEmail:    "a@b.com",
		AdminPassword: "longpass1",
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, f.store.DB(f.ctx).Model(&model.AccountRole{}).Where("account_id = ?", res.Account.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing church name", RegisterInput{AdminEmail: "a@b.com", AdminPassword: "longpass1"}},
		{"bad email", RegisterInput{TenantName: "X", AdminEmail: "not-an-email", AdminPassword: "longpass1"}},
		{"short password", RegisterInput{TenantName: "X", AdminEmail: "a@b.com", AdminPassword: "short"}},
		{"confirm mismatch", RegisterInput{TenantName: "X", AdminEmail: "a@b.com", AdminPassword: "longpass1", AdminPasswordConfirm: "longpass2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svcs.Auth.Register(f.ctx, tt.in)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	acc := f.account(&grace.ID, "jane@example.com")

	err := f.svcs.Auth.ChangePassword(f.ctx, acc, "wrong-password", "newpassword", "newpassword")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = f.svcs.Auth.ChangePassword(f.ctx, acc, testPassword, "newpassword", "different")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	require.NoError(t, f.svcs.Auth.ChangePassword(f.ctx, acc, testPassword, "newpassword", "newpassword"))

	_, err = f.svcs.Auth.Login(f.ctx, LoginInput{Email: acc.Email, Password: "newpassword", TenantID: &grace.ID})
	assert.NoError(t, err)
}

func TestRefreshRotatesAndRevokes(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	acc := f.account(&grace.ID, "jane@example.com")

	res, err := f.svcs.Auth.Login(f.ctx, LoginInput{Email: acc.Email, Password: testPassword, TenantID: &grace.ID})
	require.NoError(t, err)

	_, err = f.svcs.Auth.Refresh(f.ctx, res.Tokens.Access)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized), "access token must not refresh")

	pair, err := f.svcs.Auth.Refresh(f.ctx, res.Tokens.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, res.Tokens.Refresh, pair.Refresh)

	_, err = f.svcs.Auth.Refresh(f.ctx, res.Tokens.Refresh)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized), "old refresh token must be revoked")

	require.NoError(t, f.svcs.Auth.Logout(f.ctx, pair.Refresh))
	_, err = f.svcs.Auth.Refresh(f.ctx, pair.Refresh)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestResolveAccessToken(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	acc := f.account(&grace.ID, "jane@example.com")

	res, err := f.svcs.Auth.Login(f.ctx, LoginInput{Email: acc.Email, Password: testPassword, TenantID: &grace.ID})
	require.NoError(t, err)

	got, err := f.svcs.Auth.ResolveAccessToken(f.ctx, res.Tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	_, err = f.svcs.Auth.ResolveAccessToken(f.ctx, res.Tokens.Refresh)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	require.NoError(t, f.store.DB(f.ctx).Model(acc).Update("is_active", false).Error)
	_, err = f.svcs.Auth.ResolveAccessToken(f.ctx, res.Tokens.Access)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestIssuedClaimsCarryScope(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	acc := f.account(&grace.ID, "jane@example.com")

	res, err := f.svcs.Auth.Login(f.ctx, LoginInput{Email: acc.Email, Password: testPassword, TenantID: &grace.ID})
	require.NoError(t, err)

	claims, err := f.svcs.Auth.jwt.ValidateToken(res.Tokens.Access, jwtutil.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.AccountID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, grace.ID, *claims.TenantID)
	assert.False(t, claims.IsPlatformAdmin)
}

func TestRefreshConcurrentUseIssuesOnePair(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	acc := f.account(&grace.ID, "jane@example.com")

	res, err := f.svcs.Auth.Login(f.ctx, LoginInput{Email: acc.Email, Password: testPassword, TenantID: &grace.ID})
	require.NoError(t, err)

	const callers = 8
	errs := make(chan error, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svcs.Auth.Refresh(f.ctx, res.Tokens.Refresh)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var issued, rejected int
	for err := range errs {
		switch {
		case err == nil:
			issued++
		case apperr.IsKind(err, apperr.KindUnauthorized):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, issued)
	assert.Equal(t, callers-1, rejected)
}

func TestLogoutTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	acc := f.account(&grace.ID, "jane@example.com")

	res, err := f.svcs.Auth.Login(f.ctx, LoginInput{Email: acc.Email, Password: testPassword, TenantID: &grace.ID})
	require.NoError(t, err)

	require.NoError(t, f.svcs.Auth.Logout(f.ctx, res.Tokens.Refresh))
	err = f.svcs.Auth.Logout(f.ctx, res.Tokens.Refresh)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}
