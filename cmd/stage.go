package main

import (
	"github.com/spf13/cobra"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// Each pipeline stage is also exposed as its own subcommand so stages
// can be re-run individually against existing artifacts.

func stageCommand(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStages(cmd.Context(), []string{name})
		},
	}
}

func init() {
	rootCmd.AddCommand(
		stageCommand(model.StageCollect, "Collect raw job offers into the raw data directory"),
		stageCommand(model.StageNormalize, "Normalize raw offers into the canonical dataset"),
		stageCommand(model.StageExtract, "Extract feature vectors from the canonical dataset"),
		stageCommand(model.StageStats, "Compute descriptive and inferential salary statistics"),
		stageCommand(model.StageTrain, "Train the salary prediction model"),
	)
}
