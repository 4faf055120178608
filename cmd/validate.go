// =============================================================================
// Customs to DCE Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command: a dry run that converts the
// source in memory and reports what would be written, without touching
// any destination.
//
// COMMAND USAGE:
//   customs2dce validate --source FILE [--split] [--chunk-size N]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/customs-to-dce/internal/chunkwriter"
	"github.com/ginjaninja78/customs-to-dce/internal/config"
	"github.com/ginjaninja78/customs-to-dce/internal/converter"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a customs export without writing any files",
	Long: `The validate command reads the source export and checks that it has the
TARIFF, DES and PERCENT columns and that every PERCENT value parses. It
prints the row count and, with --split, the part files that convert would
write.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&sourcePath, "source", "s", "", "Customs export to check (CSV or xlsx)")
	validateCmd.Flags().BoolVar(&splitOutput, "split", false, "Report the split layout")
	validateCmd.Flags().IntVar(&chunkSize, "chunk-size", config.DefaultChunkSize, "Maximum rows per part file")
	validateCmd.Flags().StringVar(&rounding, "rounding", config.RoundingHalfUp, "Part-count rounding: half-up, half-even or ceil")
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	if sourcePath == "" {
		return fmt.Errorf("please specify the source file")
	}

	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	result, err := converter.Convert(sourcePath, converter.Options{
		Encoding: cfg.SourceEncoding,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d row(s) OK\n", sourcePath, result.Len())
	fmt.Fprintf(out, "Start Date: %s  End Date: %s\n", result.StartDate, result.EndDate)

	if !cfg.Split.Enabled {
		return nil
	}

	mode, err := chunkwriter.ParseRoundingMode(cfg.Split.Rounding)
	if err != nil {
		return err
	}
	plan, err := chunkwriter.Plan(result.Len(), cfg.Split.ChunkSize, mode)
	if err != nil {
		return err
	}

	if !plan.Split {
		fmt.Fprintln(out, "Split: not needed, one file")
		return nil
	}

	fmt.Fprintf(out, "Split: %d part(s) of up to %d row(s)\n", len(plan.Parts), plan.ChunkSize)
	for _, p := range plan.Parts {
		fmt.Fprintf(out, "  Part %d: rows %d-%d\n", p.Index, p.Start+1, p.End)
	}
	if plan.Dropped > 0 {
		logger.Warn("split rounding leaves trailing rows unwritten", zap.Int("dropped", plan.Dropped))
		fmt.Fprintf(out, "  ! %d trailing row(s) would not be written (rounding %s)\n", plan.Dropped, plan.Mode)
	}
	return nil
}
