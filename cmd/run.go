package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

var (
	runStages []string
	runOut    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline end to end",
	Long:  "Runs the requested stages in pipeline order. With no --stages flag, all stages run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runOut != "" {
			cfg.Data.ProcessedDir = runOut
		}
		return executeStages(cmd.Context(), runStages)
	},
}

// executeStages runs the named stages (all when empty) and prints the
// per-stage outcome table. A hard stage failure is returned as the
// command error so the process exits non-zero with the stage named.
func executeStages(ctx context.Context, stages []string) error {
	runner, st, err := initRunner(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	run, results, runErr := runner.Run(ctx, stages)
	if run != nil {
		formatStageResults(os.Stdout, results)
		zap.L().Info("pipeline finished",
			zap.String("run_id", run.ID),
			zap.String("status", string(run.Status)),
		)
	}
	return runErr
}

// formatStageResults writes a tabular stage summary to w.
func formatStageResults(out io.Writer, results []model.StageResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STAGE\tSTATUS\tKEPT\tDROPPED\tDETAIL")
	_, _ = fmt.Fprintln(w, "-----\t------\t----\t-------\t------")

	for _, res := range results {
		detail := res.Error
		if detail == "" {
			detail = formatMetrics(res.Metrics)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			res.Name, res.Status, res.Kept, res.Dropped, detail)
	}
	_ = w.Flush()
}

func formatMetrics(m model.Metrics) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%.2f", k, m[k])
	}
	return out
}

func init() {
	runCmd.Flags().StringSliceVar(&runStages, "stages", nil,
		"comma-separated stages to run (collect, normalize, extract, stats, train)")
	runCmd.Flags().StringVar(&runOut, "out", "",
		"override the processed output directory")
	rootCmd.AddCommand(runCmd)
}
