package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/dukex/agroops/pkg/cmd"
	"github.com/dukex/agroops/pkg/evaluation"
	"github.com/dukex/agroops/pkg/log"
	"github.com/dukex/agroops/pkg/readings"
	"github.com/dukex/agroops/pkg/threshold"
	"github.com/urfave/cli/v3"
)

func NewAdviseCommand() *cli.Command {
	return &cli.Command{
		Name:      "advise",
		Aliases:   []string{"a"},
		Usage:     "List the advisories of a field for a crop kind",
		ArgsUsage: "<field-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "crop-kind", Usage: "Profile to evaluate against", Required: true},
			&cli.BoolFlag{Name: "json", Usage: "Print the diagnostics as JSON"},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			fieldID := command.Args().First()
			if fieldID == "" {
				return errors.New("advise needs a field id")
			}

			logger := log.WithModule("agroops").With("action", "advise")

			evaluator, source, err := newEvaluator(ctx, logger, command)
			if err != nil {
				return err
			}
			defer func() {
				_ = source.Close()
			}()

			diagnostics, err := evaluator.ListAdvisories(ctx, fieldID, command.String("crop-kind"))
			if err != nil {
				return err
			}

			out := command.Root().Writer

			if command.Bool("json") {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(diagnostics)
			}

			return printDiagnostics(out, diagnostics)
		},
	}
}

// newEvaluator builds an evaluator over the configured catalog and reading
// feed. The caller closes the source.
func newEvaluator(ctx context.Context, logger *slog.Logger, command *cli.Command) (*evaluation.Evaluator, readings.Source, error) {
	catalog, err := cmd.LoadCatalog(command.String("catalog"), command.String("profiles-xlsx"))
	if err != nil {
		return nil, nil, err
	}

	profiles, err := catalog.ProfileStore()
	if err != nil {
		return nil, nil, err
	}

	source, err := cmd.NewReadings(ctx, logger, command.String("readings-url"), catalog)
	if err != nil {
		return nil, nil, err
	}

	advisor := threshold.NewAdvisor(threshold.NewClassifier(), threshold.MatchLanguage(command.String("locale")))

	return evaluation.NewEvaluator(source, profiles, advisor, logger), source, nil
}

func printDiagnostics(w io.Writer, diagnostics *evaluation.Diagnostics) error {
	_, err := fmt.Fprintf(w, "%s (%s) against %s\n", diagnostics.FieldName, diagnostics.FieldID, diagnostics.ProfileName)
	if err != nil {
		return err
	}

	for _, advisory := range diagnostics.Advisories {
		value := "n/a"
		if !math.IsNaN(advisory.Value) {
			value = fmt.Sprintf("%.1f", advisory.Value)
		}

		_, err = fmt.Fprintf(w, "  %-13s %-6s %-10s [%g..%g] %s\n",
			advisory.Parameter, value, advisory.Status, advisory.Range.Min, advisory.Range.Max, advisory.Message)
		if err != nil {
			return err
		}
	}

	if diagnostics.Blocking {
		_, err = fmt.Fprintln(w, "Blocking: critical conditions must be resolved before work starts")
	}

	return err
}
