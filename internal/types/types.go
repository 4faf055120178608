// =============================================================================
// Customs to DCE Converter - Shared Types
// =============================================================================
//
// This package contains the record types shared by the converter, the
// chunked writer and the command shell. Keeping them here avoids import
// cycles between:
//   - converter
//   - chunkwriter
//   - validation
//
// =============================================================================

package types

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SOURCE COLUMNS
// =============================================================================

// Column names that must be present in the source header row.
const (
	ColumnTariff  = "TARIFF"
	ColumnDES     = "DES"
	ColumnPercent = "PERCENT"
)

// RequiredColumns lists the source columns the conversion reads.
// Any other column in the source file is ignored.
var RequiredColumns = []string{ColumnTariff, ColumnDES, ColumnPercent}

// =============================================================================
// OUTPUT SCHEMA
// =============================================================================

// Header is the fixed DCE header row, in output order.
var Header = []string{
	"HS Code",
	"Tariff Type",
	"Part Number",
	"Related HS Code",
	"CALC Modifier",
	"Description",
	"Local Description",
	"Notes 1",
	"Notes 2",
	"Unit of Measure",
	"Country Groups",
	"Country Exemptions",
	"Tariff Value",
	"Tariff UOM Value",
	"Start Date",
	"End Date",
}

// Literal values written on every output row.
const (
	TariffTypeValue     = "TARIFF"
	UnitOfMeasureValue  = "KGM"
	TariffUOMValueValue = "0"
)

// DateLayout is the DD/MM/YYYY layout used by Start Date and End Date.
const DateLayout = "02/01/2006"

// ValidityYears is the distance between Start Date and End Date.
const ValidityYears = 5

// =============================================================================
// RECORDS
// =============================================================================

// SourceRecord is one data row of the customs export.
type SourceRecord struct {
	// Row is the 1-based line number in the source file.
	// The header is row 1, so the first data row is row 2.
	Row int

	// Tariff is the HS code, read as text so leading zeros survive.
	Tariff string

	// Description is the tariff description.
	Description string

	// Percent is the raw duty rate, e.g. "12.5%".
	Percent string
}

// OutputRecord is one DCE row.
// Only the non-literal columns are stored; the literal columns are
// produced by Values so they can never drift from the schema.
type OutputRecord struct {
	HSCode      string
	Description string

	// TariffValue is the percentage expressed as a fraction (12.5% -> 0.125).
	TariffValue decimal.Decimal

	StartDate string
	EndDate   string
}

// Values renders the record in Header order.
func (r OutputRecord) Values() []string {
	return []string{
		r.HSCode,
		TariffTypeValue,
		"", // Part Number
		"", // Related HS Code
		"", // CALC Modifier
		r.Description,
		"", // Local Description
		"", // Notes 1
		"", // Notes 2
		UnitOfMeasureValue,
		"", // Country Groups
		"", // Country Exemptions
		r.TariffValue.String(),
		TariffUOMValueValue,
		r.StartDate,
		r.EndDate,
	}
}

// ConversionResult is the converted table held in memory until written.
type ConversionResult struct {
	// SourcePath is the file the records were read from.
	SourcePath string

	// Records keeps the source row order.
	Records []OutputRecord

	// StartDate and EndDate are the values stamped on every record.
	StartDate string
	EndDate   string
}

// Len returns the number of data rows.
func (c *ConversionResult) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// =============================================================================
// RAW TABLE
// =============================================================================

// Table is a source sheet as read from disk, before projection.
// Every cell is text.
type Table struct {
	// SourceFile is the path the table was read from.
	SourceFile string

	// Headers are the cleaned header names, in column order.
	Headers []string

	// Rows holds the non-empty data rows.
	Rows []TableRow
}

// TableRow is one data row with its position in the source.
type TableRow struct {
	// Line is the 1-based line (or sheet row) number.
	Line int

	// Cells holds one value per header; short rows are padded with "".
	Cells []string
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}
