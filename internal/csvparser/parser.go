// =============================================================================
// Customs to DCE Converter - CSV Parser Module
// =============================================================================
//
// This module reads the customs CSV export into a types.Table. It handles:
//   - Source encodings other than UTF-8 (Thai exports are often windows-874)
//   - A UTF-8 byte order mark in front of the first header
//   - Blank lines, which are skipped
//   - Ragged rows, which are padded to the header width
//
// Every cell is kept as text. The first column carries HS codes such as
// "0101.21.00" whose leading zeros must survive, so no numeric coercion
// happens anywhere in this package.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/customs-to-dce/internal/types"
)

// ErrEmptyFile is returned when the source has no header row.
var ErrEmptyFile = errors.New("CSV file is empty")

const utf8BOM = "\ufeff"

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how the CSV is read.
type Settings struct {
	// Encoding is a WHATWG encoding label. Empty means UTF-8.
	Encoding string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns its header and data rows.
func Parse(filePath string, settings Settings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := Read(file, settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// Read parses CSV content from r.
//
// PARSING PROCESS:
//  1. Decode the source encoding to UTF-8
//  2. Read the header row and strip a leading BOM
//  3. Read data rows, skipping blank ones and padding short ones
func Read(r io.Reader, settings Settings) (*types.Table, error) {
	decoded, err := decode(bufio.NewReader(r), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader)

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := &types.Table{Headers: cleanHeaders(header)}

	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if isRowEmpty(row) {
			continue
		}

		line, _ := csvReader.FieldPos(0)
		table.Rows = append(table.Rows, types.TableRow{
			Line:  line,
			Cells: padRow(row, len(table.Headers)),
		})
	}

	return table, nil
}

// decode wraps r with a decoder for the named encoding.
func decode(r io.Reader, encoding string) (io.Reader, error) {
	name := strings.TrimSpace(encoding)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return r, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported source encoding %q: %w", encoding, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// configureReader configures the CSV reader for customs exports.
func configureReader(reader *csv.Reader) {
	reader.Comma = ','

	// Exports are not always rectangular; short rows are padded later.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.ReuseRecord = false
}

// cleanHeaders trims header names.
// Values are left untouched; only header names are normalised so that
// " PERCENT" still matches the required column.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// padRow returns row with exactly width cells.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
