package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "curview",
	Short: "curview — cloud billing cost and blended discount reports",
	Long:  "curview ingests AWS Cost and Usage Report exports, joins them against negotiated per-product discount rates, and serves per-product cost breakdowns and blended discount summaries by account and invoice.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/curview.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
