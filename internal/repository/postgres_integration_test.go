//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgres starts a PostgreSQL container and returns a migrated Store.
// Tests are skipped if Docker is not available.
func setupPostgres(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()
	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("church_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return New(db)
}

func TestPostgresAccountEmailIndexes(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()
	db := store.DB(ctx)

	grace := &model.Tenant{Name: "Grace"}
	hope := &model.Tenant{Name: "Hope"}
	require.NoError(t, db.Create(grace).Error)
	require.NoError(t, db.Create(hope).Error)

	account := func(tenant *model.Tenant, email string) *model.Account {
		acc := &model.Account{Email: email, PasswordHash: "x", IsActive: true}
		if tenant == nil {
			acc.IsPlatformAdmin = true
		} else {
			acc.TenantID = &tenant.ID
		}
		return acc
	}

	require.NoError(t, db.Create(account(grace, "jane@example.com")).Error)
	require.NoError(t, db.Create(account(hope, "jane@example.com")).Error, "same email in another church")

	err := TranslateError(db.Create(account(grace, "jane@example.com")).Error)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "got %v", err)

	require.NoError(t, db.Create(account(nil, "root@example.com")).Error)
	err = TranslateError(db.Create(account(nil, "root@example.com")).Error)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "got %v", err)
}

func TestPostgresSoftDeleteFreesEmail(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()
	db := store.DB(ctx)

	grace := &model.Tenant{Name: "Grace"}
	require.NoError(t, db.Create(grace).Error)

	first := &model.Account{TenantID: &grace.ID, Email: "jane@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Delete(first).Error)

	second := &model.Account{TenantID: &grace.ID, Email: "jane@example.com", PasswordHash: "x", IsActive: true}
	assert.NoError(t, db.Create(second).Error)
}

func TestPostgresTransactionRollback(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx *Store) error {
		if err := tx.DB(ctx).Create(&model.Tenant{Name: "Grace"}).Error; err != nil {
			return err
		}
		return apperr.Validation("abort")
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	var n int64
	require.NoError(t, store.DB(ctx).Model(&model.Tenant{}).Count(&n).Error)
	assert.Zero(t, n)
}
