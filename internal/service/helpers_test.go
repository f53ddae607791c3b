package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"church-service/internal/model"
	"church-service/internal/repository"
	"church-service/internal/scope"
	"church-service/internal/tokenstore"
	"church-service/pkg/config"
	"church-service/pkg/database"
	"church-service/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "longpass1"

var errInjected = errors.New("injected write failure")

func init() {
	bcryptCost = bcrypt.MinCost
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *repository.Store
	svcs  *Services
}

// newFixture opens a private in-memory database with the full schema.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(config.DBConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
		LogLevel:   logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	store := repository.New(db)
	jwt := jwtutil.New(config.JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "church-service-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	svcs := New(store, jwt, tokenstore.NewMemory(), PasswordPolicy{MinLength: 8}, zap.NewNop())

	return &fixture{t: t, ctx: context.Background(), store: store, svcs: svcs}
}

func (f *fixture) tenant(name string) *model.Tenant {
	f.t.Helper()
	t := &model.Tenant{Name: name, Status: model.TenantActive}
	require.NoError(f.t, f.store.DB(f.ctx).Create(t).Error)
	return t
}

func (f *fixture) account(tenantID *uuid.UUID, email string) *model.Account {
	f.t.Helper()
	hash, err := hashPassword(testPassword)
	require.NoError(f.t, err)
	acc := &model.Account{
		TenantID:        tenantID,
		Username:        email,
		Email:           email,
		PasswordHash:    hash,
		IsPlatformAdmin: tenantID == nil,
		IsActive:        true,
	}
	require.NoError(f.t, f.store.DB(f.ctx).Create(acc).Error)
	return acc
}

func (f *fixture) admin(email string) *model.Account {
	return f.account(nil, email)
}

func (f *fixture) role(name string, level int) *model.Role {
	f.t.Helper()
	r := &model.Role{Name: name, Level: level}
	require.NoError(f.t, f.store.DB(f.ctx).Create(r).Error)
	return r
}

func (f *fixture) member(tenantID uuid.UUID, first, last string) *model.Member {
	f.t.Helper()
	m := &model.Member{
		TenantID:    tenantID,
		FirstName:   first,
		LastName:    last,
		Gender:      model.GenderFemale,
		MemberSince: model.NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(f.t, f.store.DB(f.ctx).Omit("Location").Create(m).Error)
	return m
}

// before runs fn ahead of every create or update statement against table.
func (f *fixture) before(op, table string, fn func(tx *gorm.DB)) {
	f.t.Helper()
	hook := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			fn(tx)
		}
	}
	name := "test:before_" + op + "_" + table
	cb := f.store.DB(f.ctx).Callback()

	var err error
	switch op {
	case "create":
		err = cb.Create().Before("gorm:create").Register(name, hook)
	case "update":
		err = cb.Update().Before("gorm:update").Register(name, hook)
	default:
		f.t.Fatalf("unknown op %q", op)
	}
	require.NoError(f.t, err)
}

// failOn makes writes of kind op against table fail.
func (f *fixture) failOn(op, table string) {
	f.before(op, table, func(tx *gorm.DB) {
		_ = tx.AddError(errInjected)
	})
}

// count returns the number of rows for m, soft deleted rows included.
func (f *fixture) count(m interface{}) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.store.DB(f.ctx).Unscoped().Model(m).Count(&n).Error)
	return n
}

func global() scope.Scope {
	return scope.GlobalScope{}
}

func within(t *model.Tenant) scope.Scope {
	return scope.TenantScope{Tenant: t.ID}
}

func ptr[T any](v T) *T {
	return &v
}

func date(s string) *model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}
