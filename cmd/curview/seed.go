package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dthorne/curview/internal/config"
	"github.com/dthorne/curview/internal/discount"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo discount rates",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

const demoAccount uint64 = 836060457634

var demoRates = []struct {
	product  string
	discount string
}{
	{"AmazonS3", "0.12"},
	{"AmazonEC2", "0.5"},
	{"AWSDataTransfer", "0.3"},
	{"AWSGlue", "0.05"},
	{"AmazonGuardDuty", "0.75"},
}

func runSeed(cmd *cobra.Command, args []string) error {
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

	registry := discount.NewRegistry(pool)

	existing, err := registry.List(ctx, demoAccount)
	if err != nil {
		return fmt.Errorf("checking existing rates: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("demo discount rates already exist, skipping seed")
		return nil
	}

	for _, r := range demoRates {
		rate := discount.Rate{
			PayerAccountID: demoAccount,
			Product:        r.product,
			Discount:       decimal.RequireFromString(r.discount),
		}
		if err := registry.Put(ctx, rate); err != nil {
			return fmt.Errorf("seeding rate for %q: %w", r.product, err)
		}
		slog.Info("seeded discount rate", "product", r.product, "discount", r.discount)
	}

	fmt.Printf("\n=== Demo Discounts Seeded ===\n")
	fmt.Printf("Account: %d\n", demoAccount)
	fmt.Printf("Rates:   %d inserted\n", len(demoRates))
	fmt.Printf("\nTry it:\n")
	fmt.Printf("  curview report %d\n", demoAccount)
	fmt.Printf("  curl http://localhost:8080/api/v1/accounts/%d/invoices\n", demoAccount)

	return nil
}
