package main

import (
	"fmt"

	"github.com/dthorne/curview/internal/auth"
	"github.com/spf13/cobra"
)

var adminKeyCmd = &cobra.Command{
	Use:   "admin-key <key>",
	Short: "Hash an admin key for use in the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashKey(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		fmt.Println("\nSet this as auth.admin_key_hash in the config file,")
		fmt.Println("or export CURVIEW_ADMIN_KEY_HASH.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminKeyCmd)
}
