package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"waybackseller/internal/harvester"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Runs the sink pre-flight (connection self-test, table creation) without fetching.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadValidConfig(cmd)
		if err != nil {
			return err
		}

		pipeline, err := harvester.FromConfig(cfg, log)
		if err != nil {
			return err
		}
		defer pipeline.Close()

		if err := pipeline.Prepare(cmd.Context()); err != nil {
			return fmt.Errorf("pre-flight failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s sink ready\n", cfg.Sink.Kind)

		return nil
	},
}
