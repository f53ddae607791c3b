package main

import (
	"context"

	"church-service/cmd/churchctl/internal/commands"

	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	cli     struct {
		Migrate             commands.MigrateCmd             `cmd:"" help:"Create or update the database schema"`
		CreatePlatformAdmin commands.CreatePlatformAdminCmd `cmd:"" help:"Create a platform admin account"`
		SetupInitialData    commands.SetupInitialDataCmd    `cmd:"" help:"Seed roles, permissions and optionally a default church"`
		Debug               bool                            `help:"Enable debug logging."`
		Version             kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("churchctl"),
		kong.Description("Administration commands for the church service."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
