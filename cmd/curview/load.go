package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/dthorne/curview/internal/billing"
	"github.com/dthorne/curview/internal/config"
	"github.com/dthorne/curview/internal/ingest"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <cur-export.csv[.gz]>",
	Short: "Replace the usage store with a CUR export",
	Long:  "Parses an AWS Cost and Usage Report CSV export and replaces the full contents of the usage store with it. The load is transactional: re-running it with the same file leaves the store unchanged.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	loader := ingest.NewLoader(billing.NewStore(pool), cfg.Ingest.BatchSize)

	start := time.Now()
	n, err := loader.LoadFile(ctx, args[0])
	if err != nil {
		return err
	}

	slog.Info("usage data loaded",
		"file", args[0],
		"rows", n,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}
