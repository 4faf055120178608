// =============================================================================
// Customs to DCE Converter - Config Command
// =============================================================================
//
// This file defines the 'config' command group.
//
// COMMAND USAGE:
//   customs2dce config init [--force]   Write the default configuration
//                                       to the --config path
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/customs-to-dce/internal/config"
	"github.com/ginjaninja78/customs-to-dce/pkg/utils"
)

// forceInit allows 'config init' to replace an existing file.
var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with every default filled in",
	Long: `The init command writes the default configuration to the path given by
--config (config.yaml unless set), so the settings can be edited by hand.
An existing file is kept unless --force is given.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigInit(cmd)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
}

func runConfigInit(cmd *cobra.Command) error {
	if cfgFile == "" {
		return fmt.Errorf("please specify the configuration file with --config")
	}
	if utils.FileExists(cfgFile) && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}

	if err := config.Save(cfgFile, config.Default()); err != nil {
		return err
	}

	logger.Debug("wrote default configuration", zap.String("path", cfgFile))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgFile)
	return nil
}
