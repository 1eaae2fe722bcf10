package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2026-10-19T00:00+0000"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use:   "bp",
	Short: "Biopipe loads biosignal waveform metadata into an OMOP CDM observation table.",
	Long: `Biopipe extracts waveform metadata from a biosignal database, remaps patient identifiers and
wave types to CDM persons and concepts, stages the result in the CDM database and appends it to
the observation table. It also cleans CSV extracts of CDM domain rows using a YAML schema.

Flag defaults can be set with environment variables BP_<FLAG> or saved with "bp config defaults add".
Database settings can be overridden with BP_SOURCE_<KEY> and BP_TARGET_<KEY>, e.g. BP_TARGET_PASSWORD.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump with errors")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
