// =============================================================================
// Customs to DCE Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It turns one customs
// export into the in-memory DCE table; it never writes anything.
//
// CONVERSION PIPELINE:
//   1. Check the source file exists
//   2. Load the table (CSV, or xlsx by extension), every cell as text
//   3. Check the TARIFF, DES and PERCENT columns are present
//   4. Parse every PERCENT value into a fraction
//   5. Project each row onto the 16-column DCE record
//
// The first failing row stops the conversion; there are no partial
// results.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/customs-to-dce/internal/config"
	"github.com/ginjaninja78/customs-to-dce/internal/csvparser"
	"github.com/ginjaninja78/customs-to-dce/internal/logging"
	"github.com/ginjaninja78/customs-to-dce/internal/types"
	"github.com/ginjaninja78/customs-to-dce/internal/validation"
	"github.com/ginjaninja78/customs-to-dce/internal/xlsxparser"
)

// Options controls Convert. The zero value is usable.
type Options struct {
	// Encoding is the character encoding of a CSV source. Empty means UTF-8.
	Encoding string

	// Now supplies the current time for Start Date and End Date.
	// Nil means time.Now.
	Now func() time.Time

	Logger *zap.Logger
}

// =============================================================================
// MAIN CONVERSION FUNCTION
// =============================================================================

// Convert reads sourcePath and returns the DCE records in source order.
//
// ERRORS:
//   - types.ErrSourceNotFound if sourcePath does not exist
//   - types.ErrSourceSchema if a required column is missing or the file
//     has no header row
//   - types.ErrMalformedPercent for the first unparseable PERCENT value
func Convert(sourcePath string, opts Options) (*types.ConversionResult, error) {
	logger := logging.OrNop(opts.Logger).With(zap.String("op", "converter.Convert"), zap.String("source", sourcePath))

	if _, err := os.Stat(sourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &types.Error{Kind: types.ErrSourceNotFound, Path: sourcePath}
		}
		return nil, &types.Error{Kind: types.ErrSourceNotFound, Path: sourcePath, Err: err}
	}

	// =========================================================================
	// STEP 1: LOAD TABLE
	// =========================================================================

	table, err := loadTable(sourcePath, opts.Encoding)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded source table", zap.Int("rows", len(table.Rows)), zap.Strings("headers", table.Headers))

	// =========================================================================
	// STEP 2: VALIDATE SCHEMA
	// =========================================================================

	if err := validation.RequireColumns(table); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 3: PROJECT ROWS
	// =========================================================================

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	startDate, endDate := ValidityDates(now())

	result := &types.ConversionResult{
		SourcePath: sourcePath,
		StartDate:  startDate,
		EndDate:    endDate,
		Records:    make([]types.OutputRecord, 0, len(table.Rows)),
	}

	for _, src := range sourceRecords(table) {
		value, err := validation.ParsePercent(src.Percent)
		if err != nil {
			return nil, validation.PercentError(sourcePath, src.Row, src.Percent, err)
		}

		result.Records = append(result.Records, types.OutputRecord{
			HSCode:      src.Tariff,
			Description: src.Description,
			TariffValue: value,
			StartDate:   startDate,
			EndDate:     endDate,
		})
	}

	logger.Info("converted source", zap.Int("records", result.Len()))
	return result, nil
}

// ValidityDates returns Start Date and End Date for a run at now:
// January 1st of the current year and January 1st five years later.
func ValidityDates(now time.Time) (start, end string) {
	year := now.Year()
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
	return first.Format(types.DateLayout), first.AddDate(types.ValidityYears, 0, 0).Format(types.DateLayout)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadTable reads the source with the parser matching its extension and
// maps parser failures onto the converter's error kinds.
func loadTable(sourcePath, encoding string) (*types.Table, error) {
	var (
		table *types.Table
		err   error
	)

	if strings.EqualFold(filepath.Ext(sourcePath), "."+config.FormatXLSX) {
		table, err = xlsxparser.Parse(sourcePath)
	} else {
		table, err = csvparser.Parse(sourcePath, csvparser.Settings{Encoding: encoding})
	}

	switch {
	case err == nil:
		return table, nil
	case errors.Is(err, csvparser.ErrEmptyFile),
		errors.Is(err, xlsxparser.ErrEmptySheet),
		errors.Is(err, xlsxparser.ErrNoSheets):
		return nil, &types.Error{Kind: types.ErrSourceSchema, Path: sourcePath, Columns: types.RequiredColumns, Err: err}
	default:
		return nil, &types.Error{Kind: types.ErrSourceSchema, Path: sourcePath, Err: fmt.Errorf("reading source: %w", err)}
	}
}

// sourceRecords picks the three required columns out of every row.
// RequireColumns must have passed.
func sourceRecords(table *types.Table) []types.SourceRecord {
	tariff := table.ColumnIndex(types.ColumnTariff)
	des := table.ColumnIndex(types.ColumnDES)
	percent := table.ColumnIndex(types.ColumnPercent)

	records := make([]types.SourceRecord, len(table.Rows))
	for i, row := range table.Rows {
		records[i] = types.SourceRecord{
			Row:         row.Line,
			Tariff:      row.Cells[tariff],
			Description: row.Cells[des],
			Percent:     row.Cells[percent],
		}
	}
	return records
}
