// =============================================================================
// Customs to DCE Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Customs to DCE Converter CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   customs2dce convert   - Convert a customs export to DCE files
//   customs2dce validate  - Check a customs export without writing
//   customs2dce version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Conversion, writing, parsing and configuration
//   - pkg/       : Shared file helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/customs-to-dce/cmd"
)

func main() {
	cmd.Execute()
}
