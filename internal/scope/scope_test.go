package scope

import (
	"testing"

	"church-service/internal/apperr"
	"church-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForAccount(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	t.Run("platform admin honors requested tenant", func(t *testing.T) {
		s := ForAccount(&model.Account{IsPlatformAdmin: true}, &other)
		assert.True(t, s.IsGlobal())
		require.NotNil(t, s.TenantID())
		assert.Equal(t, other, *s.TenantID())
	})

	t.Run("platform admin without tenant sees everything", func(t *testing.T) {
		s := ForAccount(&model.Account{IsPlatformAdmin: true}, nil)
		assert.Nil(t, s.TenantID())
	})

	t.Run("tenant account ignores requested tenant", func(t *testing.T) {
		s := ForAccount(&model.Account{TenantID: &own}, &other)
		assert.False(t, s.IsGlobal())
		assert.Equal(t, own, *s.TenantID())
	})
}

func TestCheckTarget(t *testing.T) {
	own := uuid.New()

	assert.NoError(t, GlobalScope{}.CheckTarget(uuid.New()))
	assert.NoError(t, TenantScope{Tenant: own}.CheckTarget(own))

	err := TenantScope{Tenant: own}.CheckTarget(uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestRequireGlobal(t *testing.T) {
	assert.NoError(t, GlobalScope{}.RequireGlobal("delete churches"))

	err := TenantScope{Tenant: uuid.New()}.RequireGlobal("delete churches")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	assert.Contains(t, err.Error(), "delete churches")
}

func TestTarget(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	got, err := Target(TenantScope{Tenant: own}, nil)
	require.NoError(t, err)
	assert.Equal(t, own, got)

	_, err = Target(TenantScope{Tenant: own}, &other)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	got, err = Target(GlobalScope{}, &other)
	require.NoError(t, err)
	assert.Equal(t, other, got)

	got, err = Target(GlobalScope{Tenant: &own}, nil)
	require.NoError(t, err)
	assert.Equal(t, own, got)

	_, err = Target(GlobalScope{}, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
