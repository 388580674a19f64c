// Package main provides the agroops command line: catalog checks, ad hoc
// classification and advisory reports without running the API.
package main

import (
	"context"
	"os"

	"github.com/dukex/agroops/pkg/log"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	err := newCommand().Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                  "agroops",
		Usage:                 "Check catalogs and evaluate field conditions",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewClassifyCommand(),
			NewAdviseCommand(),
			NewReportCommand(),
			NewExportProfilesCommand(),
			NewWatchCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Catalog file (.json, .yaml); the built-in catalog when empty",
				Sources: cli.EnvVars("CATALOG_PATH"),
			},
			&cli.StringFlag{
				Name:    "profiles-xlsx",
				Usage:   "Spreadsheet of optimal condition profiles merged into the catalog",
				Sources: cli.EnvVars("PROFILES_XLSX"),
			},
			&cli.StringFlag{
				Name:    "readings-url",
				Usage:   "Field reading feed (static:// serves the catalog readings, redis://)",
				Value:   "static://",
				Sources: cli.EnvVars("READINGS_URL"),
			},
			&cli.StringFlag{
				Name:    "locale",
				Usage:   "Language of advisory messages (en, ru)",
				Value:   "en",
				Sources: cli.EnvVars("LOCALE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"), "text")

			return ctx, nil
		},
	}
}
