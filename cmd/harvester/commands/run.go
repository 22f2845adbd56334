package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"waybackseller/internal/harvester"
	"waybackseller/internal/report"
)

func init() {
	rootCmd.AddCommand(runCmd)
	// A bare "harvester" behaves like "harvester run".
	rootCmd.RunE = runCmd.RunE
}

var runCmd = &cobra.Command{
	Use:   "run [--sink csv|d1|sql] [--domain <pattern>] [--time-frame <index>]",
	Short: "Fetches captures from the CDX index and stores the extracted records.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadValidConfig(cmd)
		if err != nil {
			return err
		}

		actor := os.Getenv("GITHUB_ACTOR")
		if actor == "" {
			actor = "local user"
		}

		log.Info("harvester started", "by", actor, "at", time.Now().UTC().Format(time.RFC3339), "config", cfg.String())

		pipeline, err := harvester.FromConfig(cfg, log)
		if err != nil {
			return err
		}

		defer func() {
			if closeErr := pipeline.Close(); closeErr != nil {
				log.Warn("failed to close sink", "error", closeErr)
			}
		}()

		ctx := cmd.Context()
		if err := pipeline.Prepare(ctx); err != nil {
			return fmt.Errorf("pre-flight failed: %w", err)
		}

		res, err := pipeline.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), report.Summary(cfg.Harvest.Domain, cfg.Sink.Kind, res))

		return nil
	},
}
