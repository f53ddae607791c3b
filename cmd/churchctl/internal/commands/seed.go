package commands

import (
	"context"
	"fmt"
	"os"

	"church-service/internal/seed"
)

type SetupInitialDataCmd struct {
	WithTenant bool   `help:"Also create the default church if it does not exist."`
	Catalog    string `help:"YAML catalog to apply instead of the built-in one." type:"existingfile"`
}

func (s *SetupInitialDataCmd) Run(ctx context.Context, globals *Globals) error {
	catalog, err := s.load()
	if err != nil {
		return err
	}

	e, err := open(globals)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := seed.Apply(ctx, e.store, catalog, s.WithTenant, e.log)
	if err != nil {
		return err
	}

	fmt.Printf("permissions created: %d\n", res.PermissionsCreated)
	fmt.Printf("roles created: %d\n", res.RolesCreated)
	fmt.Printf("role permissions created: %d\n", res.GrantsCreated)
	if s.WithTenant {
		fmt.Printf("default church created: %t\n", res.TenantCreated)
	}
	return nil
}

func (s *SetupInitialDataCmd) load() (*seed.Catalog, error) {
	if s.Catalog == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(s.Catalog)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return seed.Parse(data)
}
