package model

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&Account{},
		&Role{},
		&Permission{},
		&RolePermission{},
		&AccountRole{},
		&Member{},
		&MemberLocation{},
		&Visitor{},
		&Department{},
		&MemberDepartment{},
	}
}
