// =============================================================================
// Customs to DCE Converter - Chunked Writer
// =============================================================================
//
// This module writes a ConversionResult to disk, either as one file or as
// numbered part files laid out by Plan.
//
// FILE NAMES:
//   {YYYY-MM-DD}_{stem}.csv            single file
//   {YYYY-MM-DD}_{stem}_Part_{i}.csv   part i, starting at 1
//
// Every file carries the full DCE header row and no index column.
//
// FAILURE BEHAVIOUR:
//   Parts are written in order. If part i fails, parts 1..i-1 stay on disk
//   and are returned alongside the error; nothing is rolled back.
//
// =============================================================================

package chunkwriter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/customs-to-dce/internal/config"
	"github.com/ginjaninja78/customs-to-dce/internal/logging"
	"github.com/ginjaninja78/customs-to-dce/internal/types"
	"github.com/ginjaninja78/customs-to-dce/pkg/utils"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls Write.
type Options struct {
	// Split enables part files. When false, everything goes into one file.
	Split bool

	// ChunkSize is the row bound per part. Zero means config.DefaultChunkSize.
	ChunkSize int

	// Mode is the part-count rounding rule. Empty means HalfUp.
	Mode RoundingMode

	// Format is config.FormatCSV or config.FormatXLSX. Empty means CSV.
	Format string

	// FileStem is the fixed part of the file name. Empty means the default.
	FileStem string

	// SheetName is the worksheet name for xlsx output.
	SheetName string

	// Today supplies the date in file names. Nil means time.Now.
	Today func() time.Time

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.ChunkSize == 0 {
		o.ChunkSize = config.DefaultChunkSize
	}
	if o.Mode == "" {
		o.Mode = HalfUp
	}
	if o.Format == "" {
		o.Format = config.FormatCSV
	}
	if o.FileStem == "" {
		o.FileStem = config.DefaultFileStem
	}
	if o.SheetName == "" {
		o.SheetName = config.DefaultSheetName
	}
	if o.Today == nil {
		o.Today = time.Now
	}
	o.Logger = logging.OrNop(o.Logger)
	return o
}

// =============================================================================
// WRITE
// =============================================================================

// Write writes result into destinationDir and returns the written paths in
// part order. The directory is created if it does not exist.
func Write(result *types.ConversionResult, destinationDir string, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.With(zap.String("op", "chunkwriter.Write"))

	if result == nil {
		return nil, &types.Error{Kind: types.ErrInvalidRequest, Err: fmt.Errorf("no conversion result to write")}
	}
	if destinationDir == "" {
		return nil, &types.Error{Kind: types.ErrInvalidRequest, Err: fmt.Errorf("destination directory is empty")}
	}
	if opts.Format != config.FormatCSV && opts.Format != config.FormatXLSX {
		return nil, &types.Error{Kind: types.ErrInvalidRequest, Err: fmt.Errorf("unknown output format %q", opts.Format)}
	}

	plan, err := layout(result.Len(), opts)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrInvalidRequest, Err: err}
	}

	if err := utils.EnsureDirectory(destinationDir); err != nil {
		return nil, &types.Error{Kind: types.ErrDestinationUnwritable, Path: destinationDir, Err: err}
	}

	if plan.Dropped > 0 {
		logger.Warn("split rounding leaves trailing rows unwritten",
			zap.Int("total", plan.Total),
			zap.Int("chunk_size", plan.ChunkSize),
			zap.String("rounding", string(plan.Mode)),
			zap.Int("dropped", plan.Dropped),
		)
	}

	today := opts.Today()
	written := make([]string, 0, len(plan.Parts))

	for _, part := range plan.Parts {
		name := utils.OutputFileName(today, opts.FileStem, part.Index, opts.Format)
		path := filepath.Join(destinationDir, name)
		rows := result.Records[part.Start:part.End]

		var werr error
		if opts.Format == config.FormatXLSX {
			werr = writeXLSX(path, opts.SheetName, rows)
		} else {
			werr = writeCSV(path, rows)
		}
		if werr != nil {
			return written, &types.Error{Kind: types.ErrWriteFailure, Path: path, Part: part.Index, Err: werr}
		}

		logger.Debug("wrote output file",
			zap.String("path", path),
			zap.Int("part", part.Index),
			zap.Int("rows", len(rows)),
		)
		written = append(written, path)
	}

	return written, nil
}

// layout returns the plan Write follows for the given options.
func layout(total int, opts Options) (SplitPlan, error) {
	if !opts.Split {
		return SplitPlan{
			Total:     total,
			ChunkSize: opts.ChunkSize,
			Mode:      opts.Mode,
			Parts:     []PartRange{{Index: 0, Start: 0, End: total}},
		}, nil
	}
	return Plan(total, opts.ChunkSize, opts.Mode)
}

// =============================================================================
// FILE FORMATS
// =============================================================================

// writeCSV writes the header and rows as comma-separated values.
func writeCSV(path string, rows []types.OutputRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	buffered := bufio.NewWriter(file)
	cw := csv.NewWriter(buffered)

	if err := cw.Write(types.Header); err != nil {
		file.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range rows {
		if err := cw.Write(rec.Values()); err != nil {
			file.Close()
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flushing rows: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flushing file: %w", err)
	}
	return file.Close()
}

// writeXLSX writes the header and rows to a single-sheet workbook.
// All cells are written as text so codes and fractions are not reformatted.
func writeXLSX(path, sheet string, rows []types.OutputRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	if err := sw.SetRow("A1", toCells(types.Header)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(rec.Values())); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
