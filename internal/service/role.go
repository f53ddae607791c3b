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

// RoleService manages the global role catalog. Any authenticated account
// may read it, only platform admins may change it.
type RoleService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewRoleService(store *repository.Store, log *zap.Logger) *RoleService {
	return &RoleService{store: store, log: log}
}

func (s *RoleService) List(ctx context.Context, page repository.Page) (*repository.List[model.Role], error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	db := s.store.DB(ctx)
	list, err := repository.FindPage[model.Role](db.Model(&model.Role{}), page, "level, name")
	if err != nil {
		return nil, err
	}
	if err := attachPermissions(db, list.Results); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *RoleService) Get(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	db := s.store.DB(ctx)
	var role model.Role
	if err := db.Where("id = ?", id).First(&role).Error; err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("role")
		}
		return nil, repository.TranslateError(err)
	}
	roles := []model.Role{role}
	if err := attachPermissions(db, roles); err != nil {
		return nil, err
	}
	return &roles[0], nil
}

type RoleInput struct {
	Name        *string `json:"name"`
	Level       *int    `json:"level"`
	Description *string `json:"description"`
}

func (in RoleInput) apply(r *model.Role) error {
	set(&r.Name, in.Name)
	set(&r.Level, in.Level)
	set(&r.Description, in.Description)

	if err := required("name", r.Name); err != nil {
		return err
	}
	if r.Level < model.LevelSuperAdmin || r.Level > model.LevelVisitor {
		return apperr.Validation("level must be between %d and %d", model.LevelSuperAdmin, model.LevelVisitor)
	}
	return nil
}

func (s *RoleService) Create(ctx context.Context, sc scope.Scope, in RoleInput) (*model.Role, error) {
	if err := sc.RequireGlobal("manage roles"); err != nil {
		return nil, err
	}
	role := &model.Role{}
	if err := in.apply(role); err != nil {
		return nil, err
	}

	db := s.store.DB(ctx)
	if err := ensureUnique(db, &model.Role{}, "name", role.Name, uuid.Nil, "role"); err != nil {
		return nil, err
	}
	if err := db.Create(role).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("role", "create")
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, in RoleInput) (*model.Role, error) {
	if err := sc.RequireGlobal("manage roles"); err != nil {
		return nil, err
	}
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(role); err != nil {
		return nil, err
	}

	db := s.store.DB(ctx)
	if err := ensureUnique(db, &model.Role{}, "name", role.Name, role.ID, "role"); err != nil {
		return nil, err
	}
	if err := db.Save(role).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("role", "update")
	return role, nil
}

// Delete removes a role that no account holds, along with its grants.
func (s *RoleService) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if err := sc.RequireGlobal("delete roles"); err != nil {
		return err
	}
	role, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		db := tx.DB(ctx)

		var assigned int64
		if err := db.Model(&model.AccountRole{}).Where("role_id = ?", id).Count(&assigned).Error; err != nil {
			return repository.TranslateError(err)
		}
		if assigned > 0 {
			return apperr.Conflict("cannot delete role: it is assigned to %d user(s)", assigned)
		}
		if err := db.Where("role_id = ?", id).Delete(&model.RolePermission{}).Error; err != nil {
			return repository.TranslateError(err)
		}
		return repository.TranslateError(db.Delete(role).Error)
	})
	if err != nil {
		return err
	}

	prometheus.RecordOperation("role", "delete")
	s.log.Info("Role deleted", zap.String("role_id", id.String()), zap.String("name", role.Name))
	return nil
}

// attachPermissions fills Permissions and PermissionCount on each role.
func attachPermissions(db *gorm.DB, roles []model.Role) error {
	if len(roles) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
	}

	var grants []model.RolePermission
	if err := db.Where("role_id IN ?", ids).Find(&grants).Error; err != nil {
		return repository.TranslateError(err)
	}
	if len(grants) == 0 {
		return nil
	}

	permIDs := make([]uuid.UUID, 0, len(grants))
	for _, g := range grants {
		permIDs = append(permIDs, g.PermissionID)
	}
	var perms []model.Permission
	if err := db.Where("id IN ?", permIDs).Order("module, code").Find(&perms).Error; err != nil {
		return repository.TranslateError(err)
	}
	byID := make(map[uuid.UUID]model.Permission, len(perms))
	for _, p := range perms {
		byID[p.ID] = p
	}

	byRole := make(map[uuid.UUID][]model.Permission)
	for _, g := range grants {
		if p, ok := byID[g.PermissionID]; ok {
			byRole[g.RoleID] = append(byRole[g.RoleID], p)
		}
	}
	for i := range roles {
		roles[i].Permissions = byRole[roles[i].ID]
		roles[i].PermissionCount = len(roles[i].Permissions)
	}
	return nil
}

// ensureUnique fails with Conflict when another live row of m has the value.
func ensureUnique(db *gorm.DB, m interface{}, column, value string, exclude uuid.UUID, resource string) error {
	q := db.Model(m).Where(column+" = ?", value)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return repository.TranslateError(err)
	}
	if n > 0 {
		return apperr.Conflict("%s with %s %q already exists", resource, column, value)
	}
	return nil
}
