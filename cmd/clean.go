package cmd

import (
	"github.com/relloyd/biopipe/actions"
	"github.com/spf13/cobra"
)

var cleanCfg = actions.CleanConfig{}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean a CSV file of CDM domain rows using a YAML schema",
	Long: `Read rows from the input CSV file, lower case the column names, drop rows that are missing
required columns, coerce each column to the type in the schema, then drop rows outside the time
window, rows whose concept id is 0 and rows that fail the domain's JSON Logic rule.
The remaining rows are written to the output CSV file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cleanCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunClean(&cleanCfg)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().SortFlags = false
	cleanCmd.SilenceUsage = true
	switches.addFlag(cleanCmd, &cleanCfg.SchemaFile, "schema", "", true, "")
	switches.addFlag(cleanCmd, &cleanCfg.Domain, "domain", "", true, "")
	switches.addFlag(cleanCmd, &cleanCfg.InputFile, "input", "", true, "")
	switches.addFlag(cleanCmd, &cleanCfg.OutputFile, "output", "", true, "")
	switches.addFlag(cleanCmd, &cleanCfg.FullTime, "full-time", "false", false, "")
	switches.addFlag(cleanCmd, &cleanCfg.LogLevel, "log-level", "warn", false, "")
}
