package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resto-ops/facture-cli/internal/quota"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured extraction API quota",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := quota.New(cfg.Quota.MaxPerMinute, cfg.Quota.MaxPerDay).Status()
		fmt.Printf("per minute: %d\nper day:    %d\n", s.MaxPerMinute, s.MaxPerDay)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
