package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/resto-ops/facture-cli/internal/extract"
	"github.com/resto-ops/facture-cli/internal/ocr"
	"github.com/resto-ops/facture-cli/internal/pipeline"
	"github.com/resto-ops/facture-cli/internal/quota"
)

var (
	renameDryRun bool
	renameReport string
)

var renameCmd = &cobra.Command{
	Use:   "rename DIR",
	Short: "Rename invoice PDFs in a directory from their content",
	Long: `Extracts each PDF's invoice fields, resolves the serviced site and the
collector, and renames the file to <site>-<collector+waste>-<MMYYYY>-<number>.pdf.

Examples:
  facture rename ./invoices --dry-run
  facture rename ./invoices --report run.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initResolver(ctx, cfg)
		if err != nil {
			return err
		}

		extractor, err := extract.NewAnthropic(cfg.Anthropic)
		if err != nil {
			return err
		}

		tracker := quota.New(cfg.Quota.MaxPerMinute, cfg.Quota.MaxPerDay)
		p := pipeline.New(
			ocr.NewPdfToText(cfg.OCR.PdfToTextPath),
			extractor,
			e.Resolver,
			e.Providers,
			tracker,
			cfg.Pipeline.MaxConcurrent,
		)

		report, err := p.RunDir(ctx, args[0], renameDryRun)
		if err != nil {
			return eris.Wrap(err, "rename: run pipeline")
		}

		fmt.Printf("renamed: %d  ambiguous: %d  failed: %d  skipped: %d\n",
			report.Count(pipeline.StatusRenamed),
			report.Count(pipeline.StatusAmbiguous),
			report.Count(pipeline.StatusFailed),
			report.Count(pipeline.StatusSkipped),
		)
		if renameDryRun {
			fmt.Println("dry run: no files were renamed")
		}

		reportPath := renameReport
		if reportPath == "" {
			reportPath = cfg.Pipeline.ReportPath
		}
		if reportPath != "" {
			if err := report.WriteXLSX(reportPath); err != nil {
				return err
			}
			zap.L().Info("report written", zap.String("path", reportPath))
		}

		return nil
	},
}

func init() {
	renameCmd.Flags().BoolVar(&renameDryRun, "dry-run", false, "compute target names without renaming")
	renameCmd.Flags().StringVar(&renameReport, "report", "", "write an XLSX run report to this path")
	rootCmd.AddCommand(renameCmd)
}
