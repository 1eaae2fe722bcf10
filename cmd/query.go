package cmd

import (
	"github.com/relloyd/biopipe/actions"
	"github.com/relloyd/biopipe/constants"
	"github.com/spf13/cobra"
)

const queryArgsDefinitionTxt string = "<source|target> <SQL-optionally-quoted>"

var queryCmd = &cobra.Command{
	Use:   "query " + queryArgsDefinitionTxt,
	Short: "Run a SQL query against the source or target database",
	Long: `Execute a query by supplying the connection (source or target) and the SQL as plain arguments. 
It's only necessary to wrap the statement in quotes if it contains special characters 
that will be interpreted by your shell. You can use a dry-run to check formatting.
Results are returned as CSV lines, optionally enclosed by quotes '"'`,
	Args: getQueryFromArgsFunc(&queryCfg.Connection, &queryCfg.Query, ""),
	RunE: func(cmd *cobra.Command, args []string) error {
		queryCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunQuery(&queryCfg)
	},
}

var queryCfg = actions.QueryConfig{}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().SortFlags = false
	queryCmd.SilenceUsage = true // avoid dumping command help when a SQL syntax error occurs.
	switches.addFlag(queryCmd, &queryCfg.SourceConfigFile, "source-config", constants.DefaultSourceConfigFile, false, "")
	switches.addFlag(queryCmd, &queryCfg.TargetConfigFile, "target-config", constants.DefaultTargetConfigFile, false, "")
	switches.addFlag(queryCmd, &queryCfg.LogLevel, "log-level", "error", false, "")
	switches.addFlag(queryCmd, &queryCfg.DryRun, "dry-run", "false", false, "")
	switches.addFlag(queryCmd, &queryCfg.PrintHeader, "print-header", "false", false, "")
}
