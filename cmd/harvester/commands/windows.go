package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"waybackseller/internal/config"
	"waybackseller/internal/report"
)

func init() {
	rootCmd.AddCommand(windowsCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Lists the time frame selector values; the configured one is starred.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		_, index, _ := cfg.TimeFrameKey()
		fmt.Fprintln(cmd.OutOrStdout(), report.Windows(index))

		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers.",
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Writes the default configuration to a YAML file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Defaults()
		if err := cfg.SaveConfig(args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])

		return nil
	},
}
