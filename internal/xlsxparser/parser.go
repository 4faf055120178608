// =============================================================================
// Customs to DCE Converter - XLSX Source Parser
// =============================================================================
//
// Some customs systems hand out the tariff export as a workbook instead of
// a CSV file. This module reads such a workbook into the same types.Table
// the CSV parser produces, so the converter does not care which one it got.
//
// SHEET LAYOUT (Expected):
//
//   | Column A   | Column B     | Column C | ... |
//   |------------|--------------|----------|-----|
//   | TARIFF     | DES          | PERCENT  | ... |
//   | 0101.21.00 | Live horses  | 0%       | ... |
//
// Cells are read with their display formatting applied, so a numeric cell
// formatted as a percentage comes back as "12.5%" and an HS code stored as
// text keeps its leading zeros.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/customs-to-dce/internal/types"
)

// ErrNoSheets is returned for a workbook without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// ErrEmptySheet is returned when the selected sheet has no header row.
var ErrEmptySheet = errors.New("sheet is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the first sheet of an XLSX workbook.
func Parse(path string) (*types.Table, error) {
	return ParseSheet(path, "")
}

// ParseSheet reads the named sheet of an XLSX workbook.
// An empty sheetName selects the first sheet.
func ParseSheet(path, sheetName string) (*types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, ErrNoSheets
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	table, err := buildTable(rows)
	if err != nil {
		return nil, err
	}
	table.SourceFile = path
	return table, nil
}

// buildTable turns raw sheet rows into a Table.
// The first non-empty row is the header row.
func buildTable(rows [][]string) (*types.Table, error) {
	headerIndex := -1
	for i, row := range rows {
		if !isRowEmpty(row) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil, ErrEmptySheet
	}

	headers := make([]string, len(rows[headerIndex]))
	for i, h := range rows[headerIndex] {
		headers[i] = strings.TrimSpace(h)
	}

	table := &types.Table{Headers: headers}
	for i := headerIndex + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		cells := make([]string, len(headers))
		copy(cells, row)

		table.Rows = append(table.Rows, types.TableRow{
			// Sheet rows are 1-based.
			Line:  i + 1,
			Cells: cells,
		})
	}

	return table, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
