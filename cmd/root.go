package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laborlens/jobmarket-cli/internal/config"
	"github.com/laborlens/jobmarket-cli/internal/pipeline"
	"github.com/laborlens/jobmarket-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "jobmarket",
	Short: "Job market analysis pipeline",
	Long:  "Collects job offers, normalizes them into a canonical dataset, computes salary statistics, and trains a salary prediction model.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initStore opens the configured run store and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initRunner(ctx context.Context) (*pipeline.Runner, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.New(*cfg, st), st, nil
}
