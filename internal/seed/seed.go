// Package seed loads the default role and permission catalog.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"church-service/internal/model"
	"church-service/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	DefaultTenant TenantSeed       `yaml:"default_tenant"`
	Roles         []RoleSeed       `yaml:"roles"`
	Permissions   []PermissionSeed `yaml:"permissions"`
}

type TenantSeed struct {
	Name         string `yaml:"name"`
	Denomination string `yaml:"denomination"`
	Country      string `yaml:"country"`
	Region       string `yaml:"region"`
	City         string `yaml:"city"`
	Timezone     string `yaml:"timezone"`
	Currency     string `yaml:"currency"`
}

type RoleSeed struct {
	Name        string   `yaml:"name"`
	Level       int      `yaml:"level"`
	Description string   `yaml:"description"`
	Permissions []string `yaml:"permissions"`
}

type PermissionSeed struct {
	Code        string       `yaml:"code"`
	Module      model.Module `yaml:"module"`
	Description string       `yaml:"description"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	codes := make(map[string]bool, len(c.Permissions))
	for _, p := range c.Permissions {
		if p.Code == "" {
			return nil, errors.New("catalog permission without code")
		}
		if !p.Module.Valid() {
			return nil, fmt.Errorf("permission %s: invalid module %q", p.Code, p.Module)
		}
		codes[p.Code] = true
	}
	for _, r := range c.Roles {
		if r.Level < model.LevelSuperAdmin || r.Level > model.LevelVisitor {
			return nil, fmt.Errorf("role %s: level %d out of range", r.Name, r.Level)
		}
		for _, code := range r.Permissions {
			if code != "*" && !codes[code] {
				return nil, fmt.Errorf("role %s: unknown permission %s", r.Name, code)
			}
		}
	}
	return &c, nil
}

// Result counts what Apply created.
type Result struct {
	TenantCreated      bool
	RolesCreated       int
	PermissionsCreated int
	GrantsCreated      int
}

// Apply inserts whatever part of the catalog is missing. Running it twice
// creates nothing the second time.
func Apply(ctx context.Context, store *repository.Store, c *Catalog, withTenant bool, log *zap.Logger) (*Result, error) {
	res := &Result{}
	err := store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)

		if withTenant {
			created, err := ensureTenant(db, c.DefaultTenant)
			if err != nil {
				return err
			}
			res.TenantCreated = created
		}

		perms := make(map[string]model.Permission, len(c.Permissions))
		for _, p := range c.Permissions {
			perm := model.Permission{Code: p.Code, Module: p.Module, Description: p.Description}
			created, err := firstOrCreate(db.Where("code = ?", p.Code), &perm)
			if err != nil {
				return err
			}
			if created {
				res.PermissionsCreated++
			}
			perms[p.Code] = perm
		}

		for _, r := range c.Roles {
			role := model.Role{Name: r.Name, Level: r.Level, Description: r.Description}
			created, err := firstOrCreate(db.Where("name = ?", r.Name), &role)
			if err != nil {
				return err
			}
			if created {
				res.RolesCreated++
			}

			codes := r.Permissions
			if len(codes) == 1 && codes[0] == "*" {
				codes = codes[:0]
				for _, p := range c.Permissions {
					codes = append(codes, p.Code)
				}
			}
			for _, code := range codes {
				grant := model.RolePermission{RoleID: role.ID, PermissionID: perms[code].ID}
				created, err := firstOrCreate(db.Where("role_id = ? AND permission_id = ?", grant.RoleID, grant.PermissionID), &grant)
				if err != nil {
					return err
				}
				if created {
					res.GrantsCreated++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, repository.TranslateError(err)
	}

	log.Info("Catalog applied",
		zap.Bool("tenant_created", res.TenantCreated),
		zap.Int("roles_created", res.RolesCreated),
		zap.Int("permissions_created", res.PermissionsCreated),
		zap.Int("grants_created", res.GrantsCreated))
	return res, nil
}

func ensureTenant(db *gorm.DB, t TenantSeed) (bool, error) {
	var n int64
	if err := db.Model(&model.Tenant{}).Where("name = ?", t.Name).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	tenant := &model.Tenant{
		Name:         t.Name,
		Denomination: t.Denomination,
		Country:      t.Country,
		Region:       t.Region,
		City:         t.City,
		Timezone:     t.Timezone,
		Currency:     t.Currency,
		Status:       model.TenantActive,
	}
	if err := db.Create(tenant).Error; err != nil {
		return false, err
	}
	return true, nil
}

// firstOrCreate loads the row matched by query into dest, or inserts dest
// when there is none. It reports whether a row was inserted.
func firstOrCreate[T any](query *gorm.DB, dest *T) (bool, error) {
	var existing T
	err := query.First(&existing).Error
	if err == nil {
		*dest = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := query.Session(&gorm.Session{NewDB: true}).Create(dest).Error; err != nil {
		return false, err
	}
	return true, nil
}
