// =============================================================================
// Customs to DCE Converter - Validation Engine
// =============================================================================
//
// The converter validates exactly what the transform needs and nothing
// more:
//   1. Schema: the source header row carries TARIFF, DES and PERCENT
//   2. Percent: every PERCENT value is "<number>%"
//
// Range checks are deliberately absent: a 250% duty passes through as 2.5.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/customs-to-dce/internal/types"
)

// errNoPercentSign and errNotNumeric describe why a percent value failed.
var (
	errNoPercentSign = errors.New("missing trailing %")
	errNotNumeric    = errors.New("not a number")
)

// =============================================================================
// SCHEMA VALIDATION
// =============================================================================

// RequireColumns checks that the table has every required source column.
// The returned error lists all missing columns at once.
func RequireColumns(table *types.Table) error {
	var missing []string
	for _, name := range types.RequiredColumns {
		if table.ColumnIndex(name) < 0 {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return &types.Error{
		Kind:    types.ErrSourceSchema,
		Path:    table.SourceFile,
		Columns: missing,
	}
}

// =============================================================================
// PERCENT VALIDATION
// =============================================================================

// ParsePercent converts a percentage string to a fraction.
//
// EXAMPLES:
//
//	"12.5%"  -> 0.125
//	" 7 %"   -> 0.07
//	"0%"     -> 0
//	"12.5"   -> error (no %)
//	"abc%"   -> error (not numeric)
//
// Trailing percent signs are all stripped, so "5%%" reads as 5%.
func ParsePercent(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasSuffix(s, "%") {
		return decimal.Zero, errNoPercentSign
	}

	number := strings.TrimSpace(strings.TrimRight(s, "%"))
	if number == "" {
		return decimal.Zero, errNotNumeric
	}

	value, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errNotNumeric, err)
	}

	// Shifting the exponent divides by 100 without rounding.
	return value.Shift(-2), nil
}

// PercentError wraps a ParsePercent failure with its source position.
func PercentError(path string, row int, raw string, cause error) error {
	return &types.Error{
		Kind:  types.ErrMalformedPercent,
		Path:  path,
		Row:   row,
		Value: raw,
		Err:   cause,
	}
}
