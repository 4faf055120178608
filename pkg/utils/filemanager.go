// =============================================================================
// Customs to DCE Converter - File Manager Utility
// =============================================================================
//
// This module provides the file helpers shared by the writer and the shell:
//   - Output file naming ({YYYY-MM-DD}_{stem}[_Part_{i}].{ext})
//   - Destination directory creation
//   - Processing summary generation
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileDateLayout is the date prefix of every output file name.
const FileDateLayout = "2006-01-02"

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputFileName builds the name of an output file.
//
// PARAMETERS:
//   - today: The date stamped into the name.
//   - stem:  The fixed part of the name, e.g. "TH-Tariff-HScode".
//   - part:  The 1-based part index, or 0 for an unsplit file.
//   - ext:   The extension without dot, e.g. "csv".
//
// EXAMPLE:
//
//	OutputFileName(2024-03-01, "TH-Tariff-HScode", 2, "csv")
//	-> "2024-03-01_TH-Tariff-HScode_Part_2.csv"
func OutputFileName(today time.Time, stem string, part int, ext string) string {
	name := today.Format(FileDateLayout) + "_" + stem
	if part > 0 {
		name += fmt.Sprintf("_Part_%d", part)
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectory creates dir (and parents) if it does not exist.
// It fails if dir exists but is not a directory.
func EnsureDirectory(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		return nil
	default:
		return fmt.Errorf("failed to access directory %s: %w", dir, err)
	}
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a conversion run.
type ProcessingSummary struct {
	RunID        string
	StartTime    time.Time
	EndTime      time.Time
	SourceFile   string
	RowsRead     int
	RowsWritten  int
	RowsDropped  int
	Split        bool
	ChunkSize    int
	Rounding     string
	OutputFiles  []string
	ErrorMessage string
}

// SummaryFileName returns the summary file name for a run.
func SummaryFileName(start time.Time) string {
	return fmt.Sprintf("processing_summary_%s.txt", start.Format("20060102_150405"))
}

// WriteSummaryLog writes a processing summary into outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, SummaryFileName(summary.StartTime))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	status := "SUCCESS"
	if summary.ErrorMessage != "" {
		status = "FAILED"
	}

	fmt.Fprintf(writer, "Customs to DCE Converter - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Status:         %s\n\n"+
		"Statistics:\n"+
		"  Source File:    %s\n"+
		"  Rows Read:      %d\n"+
		"  Rows Written:   %d\n"+
		"  Rows Dropped:   %d\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		status,
		summary.SourceFile,
		summary.RowsRead,
		summary.RowsWritten,
		summary.RowsDropped)

	if summary.Split {
		fmt.Fprintf(writer, "  Chunk Size:     %d\n  Rounding:       %s\n", summary.ChunkSize, summary.Rounding)
	}

	if len(summary.OutputFiles) > 0 {
		writer.WriteString("\nOutput Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.OutputFiles {
			fmt.Fprintf(writer, "  %s\n", filepath.Base(f))
		}
	}

	if summary.ErrorMessage != "" {
		fmt.Fprintf(writer, "\nError:\n  %s\n", summary.ErrorMessage)
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
