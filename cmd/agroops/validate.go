package main

import (
	"context"
	"fmt"

	"github.com/dukex/agroops/pkg/cmd"
	"github.com/urfave/cli/v3"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate a catalog file",
		ArgsUsage: "[catalog]",
		Action: func(_ context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				path = command.String("catalog")
			}

			catalog, err := cmd.LoadCatalog(path, command.String("profiles-xlsx"))
			if err != nil {
				return err
			}

			name := path
			if name == "" {
				name = "built-in catalog"
			}

			_, err = fmt.Fprintf(command.Root().Writer,
				"%s is valid: %d sensors, %d profiles, %d templates, %d readings, %d task types\n",
				name, len(catalog.Sensors), len(catalog.Profiles), len(catalog.Templates),
				len(catalog.Readings), len(catalog.TaskTypes))

			return err
		},
	}
}
