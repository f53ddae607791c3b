package handler

import (
	"net/http"

	"church-service/internal/middleware"
	"church-service/internal/service"

	"github.com/labstack/echo/v4"
)

// Updates are partial, so PUT and PATCH behave the same.
var updateMethods = []string{http.MethodPut, http.MethodPatch}

// Register mounts every route on e. Global middleware is left to the caller.
func Register(e *echo.Echo, s *service.Services) {
	authH := NewAuthHandler(s.Auth)
	tenantH := NewTenantHandler(s.Tenants)
	accountH := NewAccountHandler(s.Accounts)
	roleH := NewRoleHandler(s)
	memberH := NewMemberHandler(s.Members, s.Visitors)
	deptH := NewDepartmentHandler(s.Departments, s.MemberDepts)
	dashH := NewDashboardHandler(s.Dashboard)

	requireAuth := middleware.Auth(s.Auth)

	e.GET("/health", HealthCheck)
	e.GET("/metrics", MetricsHandler)

	// Authentication routes live outside /api since they grant access to it
	auth := e.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/register", authH.Register)
	auth.POST("/token/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)
	auth.POST("/change-password", authH.ChangePassword, requireAuth)
	auth.GET("/me", authH.Me, requireAuth)

	api := e.Group("/api")
	api.Use(requireAuth)
	api.Use(middleware.Scope(s.Tenants))

	tenants := api.Group("/tenants")
	tenants.GET("", tenantH.List)
	tenants.POST("", tenantH.Create)
	tenants.GET("/:id", tenantH.Get)
	tenants.Match(updateMethods, "/:id", tenantH.Update)
	tenants.DELETE("/:id", tenantH.Delete)

	accounts := api.Group("/accounts")
	accounts.GET("", accountH.List)
	accounts.POST("", accountH.Create)
	accounts.GET("/:id", accountH.Get)
	accounts.Match(updateMethods, "/:id", accountH.Update)
	accounts.DELETE("/:id", accountH.Delete)

	roles := api.Group("/roles")
	roles.GET("", roleH.ListRoles)
	roles.POST("", roleH.CreateRole)
	roles.GET("/:id", roleH.GetRole)
	roles.Match(updateMethods, "/:id", roleH.UpdateRole)
	roles.DELETE("/:id", roleH.DeleteRole)

	perms := api.Group("/permissions")
	perms.GET("", roleH.ListPermissions)
	perms.POST("", roleH.CreatePermission)
	perms.GET("/:id", roleH.GetPermission)
	perms.Match(updateMethods, "/:id", roleH.UpdatePermission)
	perms.DELETE("/:id", roleH.DeletePermission)

	grants := api.Group("/role-permissions")
	grants.GET("", roleH.ListRolePermissions)
	grants.POST("", roleH.CreateRolePermission)
	grants.DELETE("/:id", roleH.DeleteRolePermission)

	accountRoles := api.Group("/account-roles")
	accountRoles.GET("", roleH.ListAccountRoles)
	accountRoles.POST("", roleH.CreateAccountRole)
	accountRoles.DELETE("/:id", roleH.DeleteAccountRole)

	members := api.Group("/members")
	members.GET("", memberH.ListMembers)
	members.GET("/export", memberH.ExportMembers)
	members.POST("", memberH.CreateMember)
	members.GET("/:id", memberH.GetMember)
	members.Match(updateMethods, "/:id", memberH.UpdateMember)
	members.DELETE("/:id", memberH.DeleteMember)

	visitors := api.Group("/visitors")
	visitors.GET("", memberH.ListVisitors)
	visitors.POST("", memberH.CreateVisitor)
	visitors.POST("/convert-to-member", memberH.ConvertVisitor)
	visitors.GET("/:id", memberH.GetVisitor)
	visitors.Match(updateMethods, "/:id", memberH.UpdateVisitor)
	visitors.DELETE("/:id", memberH.DeleteVisitor)

	depts := api.Group("/departments")
	depts.GET("", deptH.List)
	depts.POST("", deptH.Create)
	depts.GET("/:id", deptH.Get)
	depts.Match(updateMethods, "/:id", deptH.Update)
	depts.DELETE("/:id", deptH.Delete)

	memberDepts := api.Group("/member-departments")
	memberDepts.GET("", deptH.ListAssignments)
	memberDepts.POST("", deptH.CreateAssignment)
	memberDepts.DELETE("/:id", deptH.DeleteAssignment)

	api.GET("/dashboard/stats", dashH.Stats)
}
