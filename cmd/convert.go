// =============================================================================
// Customs to DCE Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, the shell around converter.Run.
// It collects the source file, the destination folder and the split
// settings, runs the conversion and prints the outcome. It owns no
// conversion logic.
//
// COMMAND USAGE:
//   customs2dce convert --source FILE --dest DIR [flags]
//
// FLAGS:
//   --source      : Customs export to convert (CSV or xlsx)
//   --dest        : Destination folder, created if missing
//   --split       : Split the output into part files
//   --chunk-size  : Maximum rows per part file
//   --rounding    : Part-count rounding: half-up, half-even or ceil
//   --format      : Output format: csv or xlsx
//
// Flags override the configuration file only when they are given.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/customs-to-dce/internal/config"
	"github.com/ginjaninja78/customs-to-dce/internal/converter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	sourcePath     string
	destinationDir string
	splitOutput    bool
	chunkSize      int
	rounding       string
	outputFormat   string
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a customs tariff export to DCE files",
	Long: `The convert command reads the source export, converts every row to the DCE
tariff format and writes the result into the destination folder.

Output files are named {YYYY-MM-DD}_TH-Tariff-HScode.csv, or
{YYYY-MM-DD}_TH-Tariff-HScode_Part_{i}.csv when splitting. Existing files
with the same names are overwritten; other files are left alone.

On error nothing is rolled back: parts written before a failure stay on
disk and are listed in the output.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&sourcePath, "source", "s", "", "Customs export to convert (CSV or xlsx)")
	convertCmd.Flags().StringVarP(&destinationDir, "dest", "d", "", "Destination folder for the DCE files")
	convertCmd.Flags().BoolVar(&splitOutput, "split", false, "Split the output into part files")
	convertCmd.Flags().IntVar(&chunkSize, "chunk-size", config.DefaultChunkSize, "Maximum rows per part file")
	convertCmd.Flags().StringVar(&rounding, "rounding", config.RoundingHalfUp, "Part-count rounding: half-up, half-even or ceil")
	convertCmd.Flags().StringVar(&outputFormat, "format", config.FormatCSV, "Output format: csv or xlsx")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConvert applies the flags on top of the configuration and runs the
// conversion on a background goroutine while reporting progress.
func runConvert(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	req := converter.Request{
		SourcePath:     sourcePath,
		DestinationDir: destinationDir,
		Split:          cfg.Split.Enabled,
		ChunkSize:      cfg.Split.ChunkSize,
	}

	progress := func(stage converter.Stage, percent int) {
		fmt.Fprintf(out, "[%3d%%] %s\n", percent, stage)
	}

	result := <-converter.Start(context.Background(), req,
		converter.WithConfig(cfg),
		converter.WithLogger(logger),
		converter.WithProgress(progress),
	)

	for _, path := range result.WrittenFiles {
		fmt.Fprintf(out, "  ✓ %s\n", filepath.Base(path))
	}
	if result.Stats.RowsDropped > 0 {
		fmt.Fprintf(out, "  ! %d trailing row(s) not written (rounding %s)\n", result.Stats.RowsDropped, cfg.Split.Rounding)
	}

	if !result.Success {
		logger.Debug("convert command failed", zap.String("run_id", result.RunID))
		return fmt.Errorf("%s", result.Message)
	}

	fmt.Fprintln(out, result.Message)
	return nil
}

// effectiveConfig returns a copy of the loaded configuration with the
// explicitly given flags applied.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	base := appConfig
	if base == nil {
		base = config.Default()
	}
	cfg := *base

	flags := cmd.Flags()
	if flags.Changed("split") {
		cfg.Split.Enabled = splitOutput
	}
	if flags.Changed("chunk-size") {
		cfg.Split.ChunkSize = chunkSize
	}
	if flags.Changed("rounding") {
		cfg.Split.Rounding = strings.ToLower(rounding)
	}
	if flags.Changed("format") {
		cfg.Output.Format = strings.ToLower(outputFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &cfg, nil
}
