// =============================================================================
// Customs to DCE Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (customs2dce)
//   ├── convertCmd  (customs2dce convert)
//   ├── validateCmd (customs2dce validate)
//   └── versionCmd  (customs2dce version)
//
// The root command loads the optional YAML configuration and builds the
// zap logger before any subcommand runs.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/customs-to-dce/internal/config"
	"github.com/ginjaninja78/customs-to-dce/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// A missing file is not an error; the defaults apply.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig and logger are set by loadRuntime before a subcommand runs.
var (
	appConfig *config.Config
	logger    = zap.NewNop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "customs2dce",
	Short: "Customs to DCE Converter - Turn customs tariff exports into DCE import files",
	Long: `Customs to DCE Converter reads a customs tariff export (CSV or xlsx with
TARIFF, DES and PERCENT columns) and writes it in the 16-column DCE tariff
import format, optionally split into several part files.

Example Usage:
  customs2dce convert --source tariffs.csv --dest ./out
  customs2dce convert --source tariffs.csv --dest ./out --split --chunk-size 50000
  customs2dce validate --source tariffs.csv`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadRuntime()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime reads the configuration file and builds the logger.
func loadRuntime() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	level := ""
	if verbose {
		level = "debug"
	}

	l, err := logging.New(cfg.Logging, level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appConfig = cfg
	logger = l
	logger.Debug("configuration loaded", zap.String("config", cfgFile))
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file; defaults apply if it does not exist",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
