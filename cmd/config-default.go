package cmd

import (
	"fmt"

	"github.com/relloyd/biopipe/actions"
	"github.com/relloyd/biopipe/config"
	"github.com/spf13/cobra"
)

var defaultCmd = &cobra.Command{
	Use:     "defaults",
	Aliases: []string{"default"},
	Short:   "Configure default values for command flags",
	Long: fmt.Sprintf(`Configure default values for command flags, where:

- Defaults are stored in config file %q
- Environment variables BP_<FLAG> take priority over saved defaults
- Flags supplied on the command line take priority over both`, config.Main.FullPath),
}

var (
	defaultAddCfg    = actions.DefaultAddConfig{}
	defaultRemoveCfg = actions.DefaultRemoveConfig{}
)

// warnUnknownKey tells the user when a saved default will never be picked up by a flag.
func warnUnknownKey(cmd *cobra.Command, key string) {
	if _, ok := switches[key]; !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %q is not the name of a bp flag so it will be ignored by commands\n", key)
	}
}

func newDefaultAddCmd() *cobra.Command {
	c := &cobra.Command{
		Use:          "add",
		Aliases:      []string{"set"},
		Short:        "Add or set a default flag value",
		Long:         fmt.Sprintf("Add a default flag value to config file %q", config.Main.FullPath),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			warnUnknownKey(cmd, defaultAddCfg.Key)
			defaultAddCfg.ConfigFile = config.Main
			defaultAddCfg.Out = cmd.OutOrStdout()
			return actions.RunDefaultAdd(&defaultAddCfg)
		},
	}
	c.Flags().SortFlags = false
	c.Flags().StringVarP(&defaultAddCfg.Key, "key", "k", "", "* Name of the flag to set a default for, e.g. log-level or bulk-mode")
	c.Flags().StringVarP(&defaultAddCfg.Value, "value", "v", "", "* Default value for the flag")
	c.Flags().BoolVarP(&defaultAddCfg.Force, "force", "f", false, "Overwrite an existing default")
	_ = c.MarkFlagRequired("key")
	_ = c.MarkFlagRequired("value")
	return c
}

func newDefaultRemoveCmd() *cobra.Command {
	c := &cobra.Command{
		Use:          "remove",
		Aliases:      []string{"rm", "del", "delete"},
		Short:        "Remove a default flag value",
		Long:         fmt.Sprintf("Remove a default flag value from config file %q", config.Main.FullPath),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultRemoveCfg.ConfigFile = config.Main
			defaultRemoveCfg.Out = cmd.OutOrStdout()
			return actions.RunDefaultRemove(&defaultRemoveCfg)
		},
	}
	c.Flags().StringVarP(&defaultRemoveCfg.Key, "key", "k", "", "* Name of the flag whose default is removed")
	_ = c.MarkFlagRequired("key")
	return c
}

func newDefaultListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print all default flag values",
		Long:    fmt.Sprintf("Print the default flag values stored in config file %q", config.Main.FullPath),
		RunE: func(cmd *cobra.Command, args []string) error {
			return actions.RunDefaultList(&actions.DefaultListConfig{ConfigFile: config.Main, Out: cmd.OutOrStdout()})
		},
	}
}

func init() {
	configCmd.AddCommand(defaultCmd)
	defaultCmd.AddCommand(newDefaultAddCmd(), newDefaultRemoveCmd(), newDefaultListCmd())
}
