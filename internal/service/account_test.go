package service

import (
	"testing"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccountUniquePerChurch(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	hope := f.tenant("Hope")

	in := CreateAccountInput{Email: "jane@example.com", Password: "longpass1", PasswordConfirm: "longpass1"}

	acc, err := f.svcs.Accounts.Create(f.ctx, within(grace), in)
	require.NoError(t, err)
	assert.Equal(t, grace.ID, *acc.TenantID)
	assert.Equal(t, "jane@example.com", acc.Username)

	_, err = f.svcs.Accounts.Create(f.ctx, within(grace), in)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	in.TenantID = &hope.ID
	_, err = f.svcs.Accounts.Create(f.ctx, global(), in)
	assert.NoError(t, err, "same email in another church is allowed")
}

func TestCreateAccountScope(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	hope := f.tenant("Hope")

	in := CreateAccountInput{TenantID: &hope.ID, Email: "jane@example.com", Password: "longpass1", PasswordConfirm: "longpass1"}
	_, err := f.svcs.Accounts.Create(f.ctx, within(grace), in)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	in.TenantID = nil
	_, err = f.svcs.Accounts.Create(f.ctx, global(), in)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "platform admin must name a church")
}

func TestCreatePlatformAdminUnique(t *testing.T) {
	f := newFixture(t)

	_, err := f.svcs.Accounts.CreatePlatformAdmin(f.ctx, "root@example.com", "root", "longpass1")
	require.NoError(t, err)

	_, err = f.svcs.Accounts.CreatePlatformAdmin(f.ctx, "Root@Example.com", "root2", "longpass1")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestPlatformAdminEmailIndex(t *testing.T) {
	f := newFixture(t)
	f.admin("root@example.com")

	dup := &model.Account{Email: "root@example.com", PasswordHash: "x", IsPlatformAdmin: true, IsActive: true}
	err := repository.TranslateError(f.store.DB(f.ctx).Create(dup).Error)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestListAccountsIsScoped(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	hope := f.tenant("Hope")
	f.account(&grace.ID, "a@example.com")
	f.account(&grace.ID, "b@example.com")
	f.account(&hope.ID, "c@example.com")
	f.admin("root@example.com")

	list, err := f.svcs.Accounts.List(f.ctx, within(grace), AccountFilter{}, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Count)
	for _, acc := range list.Results {
		assert.Equal(t, grace.ID, *acc.TenantID)
	}

	list, err = f.svcs.Accounts.List(f.ctx, global(), AccountFilter{}, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), list.Count)
}

func TestGetAccountInOtherChurchIsNotFound(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	hope := f.tenant("Hope")
	acc := f.account(&hope.ID, "c@example.com")

	_, err := f.svcs.Accounts.Get(f.ctx, within(grace), acc.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateAccount(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	acc := f.account(&grace.ID, "a@example.com")
	f.account(&grace.ID, "b@example.com")

	_, err := f.svcs.Accounts.Update(f.ctx, within(grace), acc.ID, UpdateAccountInput{Email: ptr("b@example.com")})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	got, err := f.svcs.Accounts.Update(f.ctx, within(grace), acc.ID, UpdateAccountInput{FirstName: ptr("Ama"), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Ama", got.FirstName)
	assert.False(t, got.IsActive)
	assert.Equal(t, "a@example.com", got.Email)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	root := f.admin("root@example.com")
	member := f.account(&grace.ID, "a@example.com")

	err := f.svcs.Accounts.Delete(f.ctx, global(), root, root.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "self deletion is refused even for platform admins")

	err = f.svcs.Accounts.Delete(f.ctx, within(grace), member, member.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	other := f.account(&grace.ID, "b@example.com")
	err = f.svcs.Accounts.Delete(f.ctx, within(grace), member, other.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, f.svcs.Accounts.Delete(f.ctx, global(), root, member.ID))

	_, err = f.svcs.Accounts.Get(f.ctx, global(), member.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	var stored model.Account
	require.NoError(t, f.store.DB(f.ctx).Unscoped().Where("id = ?", member.ID).First(&stored).Error)
	assert.False(t, stored.IsActive)
	assert.True(t, stored.DeletedAt.Valid)
}
