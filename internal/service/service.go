// Package service holds the business rules. Every call that touches
// tenant-bound data receives the caller's scope.Scope explicitly.
package service

import (
	"net/mail"
	"strings"

	"church-service/internal/apperr"
	"church-service/internal/repository"
	"church-service/internal/tokenstore"
	"church-service/pkg/jwtutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles every service sharing one store.
type Services struct {
	Auth           *AuthService
	Tenants        *TenantService
	Accounts       *AccountService
	Roles          *RoleService
	Permissions    *PermissionService
	RolePerms      *RolePermissionService
	AccountRoles   *AccountRoleService
	Members        *MemberService
	Visitors       *VisitorService
	Departments    *DepartmentService
	MemberDepts    *MemberDepartmentService
	Dashboard      *DashboardService
	PasswordPolicy PasswordPolicy
}

func New(store *repository.Store, jwt *jwtutil.JWTUtil, denylist tokenstore.Denylist, policy PasswordPolicy, log *zap.Logger) *Services {
	return &Services{
		Auth:           NewAuthService(store, jwt, denylist, policy, log),
		Tenants:        NewTenantService(store, log),
		Accounts:       NewAccountService(store, policy, log),
		Roles:          NewRoleService(store, log),
		Permissions:    NewPermissionService(store, log),
		RolePerms:      NewRolePermissionService(store, log),
		AccountRoles:   NewAccountRoleService(store, log),
		Members:        NewMemberService(store, log),
		Visitors:       NewVisitorService(store, log),
		Departments:    NewDepartmentService(store, log),
		MemberDepts:    NewMemberDepartmentService(store, log),
		Dashboard:      NewDashboardService(store),
		PasswordPolicy: policy,
	}
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Validation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("invalid email address")
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}

// set copies v into dst when the optional update field was supplied.
func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// mustExist fails with NotFound unless a live row of m has the id.
func mustExist(db *gorm.DB, m interface{}, id uuid.UUID, resource string) error {
	var n int64
	if err := db.Model(m).Where("id = ?", id).Count(&n).Error; err != nil {
		return repository.TranslateError(err)
	}
	if n == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}
