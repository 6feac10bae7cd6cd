package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dthorne/curview/internal/billing"
	"github.com/dthorne/curview/internal/config"
	"github.com/dthorne/curview/internal/discount"
	"github.com/dthorne/curview/internal/report"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <account-id>",
	Short: "Print the billing summary for a payer account",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	accountID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid account id %q", args[0])
	}

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

	service := billing.NewService(billing.NewStore(pool), discount.NewRegistry(pool))

	text, err := report.ForAccount(ctx, service, accountID)
	if err != nil {
		return err
	}

	fmt.Print(text)
	return nil
}
