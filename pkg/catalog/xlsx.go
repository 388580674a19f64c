package catalog

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dukex/agroops/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ProfilesSheet is the sheet read by ReadProfilesXLSX when present;
// otherwise the first sheet is used.
const ProfilesSheet = "profiles"

var profileColumns = []string{
	"kind", "name",
	"soil_temp_min", "soil_temp_max", "soil_temp_optimal",
	"soil_moisture_min", "soil_moisture_max", "soil_moisture_optimal",
	"ph_min", "ph_max", "ph_optimal",
	"description",
}

// LoadProfilesXLSX reads optimal condition profiles from a spreadsheet file.
func LoadProfilesXLSX(path string) ([]models.OptimalConditionProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile sheet %s: %w", path, err)
	}
	defer f.Close()

	return ReadProfilesXLSX(f)
}

// ReadProfilesXLSX reads one profile per row. The header row names the
// columns; case, spaces, dashes and underscores in headers are ignored.
// Rows without a kind are skipped.
func ReadProfilesXLSX(r io.Reader) ([]models.OptimalConditionProfile, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile sheet: %w", err)
	}
	defer book.Close()

	sheet := ProfilesSheet
	if idx, _ := book.GetSheetIndex(sheet); idx < 0 {
		sheet = book.GetSheetName(0)
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %s: %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: profile sheet %s is empty", ErrInvalidCatalog, sheet)
	}

	columns := make(map[string]int, len(rows[0]))
	for idx, header := range rows[0] {
		columns[normalizeHeader(header)] = idx
	}

	// Every column but the trailing description is required.
	for _, name := range profileColumns[:len(profileColumns)-1] {
		if _, ok := columns[normalizeHeader(name)]; !ok {
			return nil, fmt.Errorf("%w: profile sheet is missing column %q", ErrInvalidCatalog, name)
		}
	}

	result := make([]models.OptimalConditionProfile, 0, len(rows)-1)

	for line, row := range rows[1:] {
		get := func(name string) string {
			idx, ok := columns[normalizeHeader(name)]
			if !ok || idx >= len(row) {
				return ""
			}

			return strings.TrimSpace(row[idx])
		}

		if get("kind") == "" {
			continue
		}

		profile, err := profileFromRow(get)
		if err != nil {
			return nil, fmt.Errorf("%w: profile sheet row %d: %w", ErrInvalidCatalog, line+2, err)
		}

		result = append(result, profile)
	}

	return result, nil
}

func profileFromRow(get func(string) string) (models.OptimalConditionProfile, error) {
	profile := models.OptimalConditionProfile{
		Kind:        get("kind"),
		Name:        get("name"),
		Description: get("description"),
	}

	for _, target := range []struct {
		prefix string
		r      *models.Range
	}{
		{"soil_temp", &profile.SoilTemp},
		{"soil_moisture", &profile.SoilMoisture},
		{"ph", &profile.Ph},
	} {
		for _, bound := range []struct {
			suffix string
			value  *float64
		}{
			{"min", &target.r.Min},
			{"max", &target.r.Max},
			{"optimal", &target.r.Optimal},
		} {
			column := target.prefix + "_" + bound.suffix

			value, err := strconv.ParseFloat(strings.ReplaceAll(get(column), ",", "."), 64)
			if err != nil {
				return profile, fmt.Errorf("column %s: %w", column, err)
			}

			*bound.value = value
		}
	}

	return profile, profile.Validate()
}

// WriteProfilesXLSX writes profiles in the layout ReadProfilesXLSX reads.
func WriteProfilesXLSX(w io.Writer, list []models.OptimalConditionProfile) error {
	book := excelize.NewFile()
	defer book.Close()

	err := book.SetSheetName(book.GetSheetName(0), ProfilesSheet)
	if err != nil {
		return fmt.Errorf("failed to name profile sheet: %w", err)
	}

	header := make([]any, len(profileColumns))
	for idx, name := range profileColumns {
		header[idx] = name
	}

	err = book.SetSheetRow(ProfilesSheet, "A1", &header)
	if err != nil {
		return fmt.Errorf("failed to write profile header: %w", err)
	}

	for idx, profile := range list {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}

		row := []any{
			profile.Kind, profile.Name,
			profile.SoilTemp.Min, profile.SoilTemp.Max, profile.SoilTemp.Optimal,
			profile.SoilMoisture.Min, profile.SoilMoisture.Max, profile.SoilMoisture.Optimal,
			profile.Ph.Min, profile.Ph.Max, profile.Ph.Optimal,
			profile.Description,
		}

		err = book.SetSheetRow(ProfilesSheet, cell, &row)
		if err != nil {
			return fmt.Errorf("failed to write profile %s: %w", profile.Kind, err)
		}
	}

	return book.Write(w)
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "\uFEFF")
	s = strings.ToLower(s)

	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}
