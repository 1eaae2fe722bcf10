package cmd

import (
	"fmt"

	"github.com/relloyd/biopipe/actions"
	"github.com/relloyd/biopipe/constants"
	"github.com/spf13/cobra"
)

var runCfg = actions.BiosignalConfig{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load biosignal waveform metadata into the CDM observation table",
	Long: `Extract waveform metadata from the source database, map patients using the id-map and wave types
to CDM concepts, replace the staging table in the target database and append the staged rows that
have a known person to the observation table.

Use dry-run to print the SQL that would be executed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunBiosignal(&runCfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().SortFlags = false
	runCmd.SilenceUsage = true
	switches.addFlag(runCmd, &runCfg.SourceConfigFile, "source-config", constants.DefaultSourceConfigFile, false, "")
	switches.addFlag(runCmd, &runCfg.TargetConfigFile, "target-config", constants.DefaultTargetConfigFile, false, "")
	switches.addFlag(runCmd, &runCfg.IdentifierMap, "id-map", constants.DefaultIdentifierMapFile, false, "")
	switches.addFlag(runCmd, &runCfg.S3Region, "s3-region", "", false, "")
	switches.addFlag(runCmd, &runCfg.StagingTable, "staging-table", constants.DefaultStagingTable, false, "")
	switches.addFlag(runCmd, &runCfg.ObservationTable, "observation-table", constants.DefaultObservationTable, false, "")
	switches.addFlag(runCmd, &runCfg.BulkMode, "bulk-mode", constants.BulkModeCopy, false, "")
	switches.addFlag(runCmd, &runCfg.BatchSize, "batch-size", fmt.Sprint(constants.BulkBatchSizeDefault), false, "")
	switches.addFlag(runCmd, &runCfg.RejectsFile, "rejects-file", "", false, "")
	switches.addFlag(runCmd, &runCfg.DryRun, "dry-run", "false", false, "")
	switches.addFlag(runCmd, &runCfg.LogLevel, "log-level", "warn", false, "")
}
