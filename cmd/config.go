package cmd

import (
	"fmt"

	"github.com/relloyd/biopipe/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure default flag values",
	Long: fmt.Sprintf(`Configure default flag values where:

- Default flag values are stored in file %q
- Database connections are read from the files named by flags source-config and target-config
`, config.Main.FullPath),
}

func init() {
	rootCmd.AddCommand(configCmd)
}
