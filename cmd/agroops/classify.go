package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/threshold"
	"github.com/urfave/cli/v3"
)

func NewClassifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Rate a value against a range",
		ArgsUsage: "<value>",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "min", Usage: "Lower bound", Required: true},
			&cli.FloatFlag{Name: "max", Usage: "Upper bound", Required: true},
			&cli.FloatFlag{Name: "optimal", Usage: "Optimal value; the middle of the range when unset"},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return errors.New("classify takes exactly one value")
			}

			value, err := threshold.ParseValue(command.Args().First())
			if err != nil {
				return err
			}

			r := models.Range{
				Min: command.Float("min"),
				Max: command.Float("max"),
			}

			r.Optimal = (r.Min + r.Max) / 2
			if command.IsSet("optimal") {
				r.Optimal = command.Float("optimal")
			}

			err = r.Validate()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(command.Root().Writer, threshold.Classify(value, r))

			return err
		},
	}
}
