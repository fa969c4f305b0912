package main

import (
	"fmt"

	"github.com/nanoreddit-ui-autotests/internal/report"
	"github.com/spf13/cobra"
)

var resetResults bool

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Write environment.properties into the results directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if resetResults {
			if err := report.NewCollector(cfg.Report, log).Reset(); err != nil {
				return err
			}
		}
		path, err := report.WriteEnvironment(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	envCmd.Flags().BoolVar(&resetResults, "reset", false, "Remove artifacts of the previous run first")
}
