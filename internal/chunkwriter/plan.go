// =============================================================================
// Customs to DCE Converter - Split Planning
// =============================================================================
//
// A split plan decides how many part files a result is written to and
// which rows go into each part.
//
// PART COUNT:
//   The part count is total/chunkSize ROUNDED, not ceiled. That matches the
//   conversion tool this replaces, and it means trailing rows can fall off
//   the end: 100001 rows in chunks of 100000 round to a single part of
//   100000 rows. The rounding rule is selectable so operators can choose:
//
//   | Mode       | 250000 / 100000 | 100001 / 100000   |
//   |------------|-----------------|-------------------|
//   | half-up    | 3 parts         | 1 part, 1 dropped |
//   | half-even  | 2 parts, 50000  | 1 part, 1 dropped |
//   |            | dropped         |                   |
//   | ceil       | 3 parts         | 2 parts           |
//
//   half-even reproduces the legacy tool exactly (banker's rounding).
//   Any dropped rows are reported in SplitPlan.Dropped.
//
// =============================================================================

package chunkwriter

import (
	"fmt"
	"strings"
)

// RoundingMode selects how total/chunkSize becomes a part count.
type RoundingMode string

const (
	// HalfUp rounds x.5 up. This is the default.
	HalfUp RoundingMode = "half-up"

	// HalfEven rounds x.5 to the nearest even integer.
	HalfEven RoundingMode = "half-even"

	// Ceil never drops rows.
	Ceil RoundingMode = "ceil"
)

// ParseRoundingMode converts a config or flag value to a RoundingMode.
// An empty value yields HalfUp.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch RoundingMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", HalfUp:
		return HalfUp, nil
	case HalfEven:
		return HalfEven, nil
	case Ceil:
		return Ceil, nil
	default:
		return "", fmt.Errorf("unknown rounding mode %q (want %s, %s or %s)", s, HalfUp, HalfEven, Ceil)
	}
}

// PartRange is a contiguous slice of result rows, [Start, End).
type PartRange struct {
	// Index is the 1-based part number; 0 means the unsplit single file.
	Index int
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (p PartRange) Len() int {
	return p.End - p.Start
}

// SplitPlan is the derived layout of the output files.
type SplitPlan struct {
	Total     int
	ChunkSize int
	Mode      RoundingMode

	// Split is false when everything goes into a single unsuffixed file.
	Split bool

	// Parts lists the ranges in write order.
	Parts []PartRange

	// Dropped is the number of trailing rows no part covers.
	Dropped int
}

// Covered returns the number of rows that will be written.
func (p SplitPlan) Covered() int {
	return p.Total - p.Dropped
}

// Plan derives the split layout for total rows.
//
// When total <= chunkSize the result is a single unsplit file. Otherwise
// the part count is total/chunkSize rounded per mode, and part i holds rows
// [chunkSize*(i-1), min(chunkSize*i, total)).
func Plan(total, chunkSize int, mode RoundingMode) (SplitPlan, error) {
	if chunkSize < 1 {
		return SplitPlan{}, fmt.Errorf("chunk size must be a positive integer, got %d", chunkSize)
	}
	if total < 0 {
		return SplitPlan{}, fmt.Errorf("row count must not be negative, got %d", total)
	}
	if mode == "" {
		mode = HalfUp
	}

	plan := SplitPlan{Total: total, ChunkSize: chunkSize, Mode: mode}

	if total <= chunkSize {
		plan.Parts = []PartRange{{Index: 0, Start: 0, End: total}}
		return plan, nil
	}

	count, err := partCount(total, chunkSize, mode)
	if err != nil {
		return SplitPlan{}, err
	}

	plan.Split = true
	plan.Parts = make([]PartRange, 0, count)
	for i := 0; i < count; i++ {
		start := chunkSize * i
		end := min(start+chunkSize, total)
		plan.Parts = append(plan.Parts, PartRange{Index: i + 1, Start: start, End: end})
	}

	plan.Dropped = total - plan.Parts[len(plan.Parts)-1].End
	return plan, nil
}

// partCount rounds total/chunkSize in integer arithmetic.
func partCount(total, chunkSize int, mode RoundingMode) (int, error) {
	q, r := total/chunkSize, total%chunkSize

	switch mode {
	case Ceil:
		if r > 0 {
			q++
		}
	case HalfUp:
		if 2*r >= chunkSize {
			q++
		}
	case HalfEven:
		switch {
		case 2*r > chunkSize:
			q++
		case 2*r == chunkSize && q%2 == 1:
			q++
		}
	default:
		return 0, fmt.Errorf("unknown rounding mode %q", mode)
	}

	return q, nil
}
