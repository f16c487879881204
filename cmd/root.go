package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/resto-ops/facture-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "facture",
	Short: "Waste-collection invoice site resolver",
	Long:  "Resolves free-text restaurant/site references from scanned invoices against the reference location dataset and renames invoice PDFs accordingly.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
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
