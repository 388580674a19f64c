package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dukex/agroops/pkg/evaluation"
	"github.com/dukex/agroops/pkg/log"
	"github.com/urfave/cli/v3"
	"github.com/xuri/excelize/v2"
)

// ReportSheet is the sheet holding one advisory per row.
const ReportSheet = "advisories"

var reportColumns = []string{
	"field_id", "field", "crop_kind", "parameter", "value",
	"min", "optimal", "max", "status", "severity", "message",
}

func NewReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Write the advisories of every field for a crop kind to a spreadsheet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "crop-kind", Usage: "Profile to evaluate against", Required: true},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Spreadsheet to write", Value: "advisories.xlsx"},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("agroops").With("action", "report")

			evaluator, source, err := newEvaluator(ctx, logger, command)
			if err != nil {
				return err
			}

			defer func() {
				_ = source.Close()
			}()

			list, err := source.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list readings: %w", err)
			}

			report := make([]*evaluation.Diagnostics, 0, len(list))

			for _, reading := range list {
				diagnostics, err := evaluator.ListAdvisories(ctx, reading.FieldID, command.String("crop-kind"))
				if err != nil {
					return err
				}

				report = append(report, diagnostics)
			}

			path := command.String("output")

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create report: %w", err)
			}

			err = writeReport(f, report)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(command.Root().Writer, "Wrote %d fields to %s\n", len(report), path)

			return err
		},
	}
}

func writeReport(w io.Writer, report []*evaluation.Diagnostics) error {
	book := excelize.NewFile()
	defer book.Close()

	err := book.SetSheetName(book.GetSheetName(0), ReportSheet)
	if err != nil {
		return fmt.Errorf("failed to name report sheet: %w", err)
	}

	header := make([]any, len(reportColumns))
	for idx, name := range reportColumns {
		header[idx] = name
	}

	err = book.SetSheetRow(ReportSheet, "A1", &header)
	if err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	row := 2

	for _, diagnostics := range report {
		for _, advisory := range diagnostics.Advisories {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}

			var value any = advisory.Value
			if math.IsNaN(advisory.Value) {
				value = ""
			}

			err = book.SetSheetRow(ReportSheet, cell, &[]any{
				diagnostics.FieldID, diagnostics.FieldName, diagnostics.CropKind,
				string(advisory.Parameter), value,
				advisory.Range.Min, advisory.Range.Optimal, advisory.Range.Max,
				string(advisory.Status), string(advisory.Severity), advisory.Message,
			})
			if err != nil {
				return fmt.Errorf("failed to write report row %d: %w", row, err)
			}

			row++
		}
	}

	return book.Write(w)
}
