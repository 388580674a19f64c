package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/agroops/pkg/catalog"
	"github.com/dukex/agroops/pkg/cmd"
	"github.com/urfave/cli/v3"
)

func NewExportProfilesCommand() *cli.Command {
	return &cli.Command{
		Name:      "export-profiles",
		Usage:     "Write the catalog profiles to a spreadsheet that --profiles-xlsx accepts",
		ArgsUsage: "<output.xlsx>",
		Action: func(_ context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				path = "profiles.xlsx"
			}

			c, err := cmd.LoadCatalog(command.String("catalog"), command.String("profiles-xlsx"))
			if err != nil {
				return err
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}

			err = catalog.WriteProfilesXLSX(f, c.Profiles)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(command.Root().Writer, "Wrote %d profiles to %s\n", len(c.Profiles), path)

			return err
		},
	}
}
