package commands

import (
	"context"
	"fmt"

	"church-service/internal/service"
)

type CreatePlatformAdminCmd struct {
	Email    string `help:"Admin email address" required:""`
	Username string `help:"Admin username" required:""`
	Password string `help:"Admin password" required:"" env:"CHURCH_ADMIN_PASSWORD"`
}

func (a *CreatePlatformAdminCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := open(globals)
	if err != nil {
		return err
	}
	defer e.Close()

	policy := service.PasswordPolicy{MinLength: e.cfg.Auth.PasswordMinLength}
	accounts := service.NewAccountService(e.store, policy, e.log)

	acc, err := accounts.CreatePlatformAdmin(ctx, a.Email, a.Username, a.Password)
	if err != nil {
		return err
	}

	fmt.Printf("created platform admin %s (%s)\n", acc.Email, acc.ID)
	return nil
}
