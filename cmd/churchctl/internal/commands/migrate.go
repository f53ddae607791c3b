package commands

import (
	"context"
	"fmt"
)

type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := open(globals)
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Println("schema is up to date")
	return nil
}
