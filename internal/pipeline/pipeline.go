// Package pipeline renames invoice PDFs from their extracted and resolved
// content.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/resto-ops/facture-cli/internal/extract"
	"github.com/resto-ops/facture-cli/internal/model"
	"github.com/resto-ops/facture-cli/internal/ocr"
	"github.com/resto-ops/facture-cli/internal/provider"
	"github.com/resto-ops/facture-cli/internal/quota"
	"github.com/resto-ops/facture-cli/internal/resolver"
)

// FileStatus classifies the outcome for one PDF.
type FileStatus string

const (
	StatusRenamed   FileStatus = "renamed"
	StatusSkipped   FileStatus = "skipped"
	StatusFailed    FileStatus = "failed"
	StatusAmbiguous FileStatus = "ambiguous"
)

// FileResult records the outcome for one PDF. Candidates carries the
// ranked near misses when resolution was ambiguous or failed, so the
// report supports manual review.
type FileResult struct {
	Original   string                 `json:"original"`
	NewName    string                 `json:"new_name,omitempty"`
	Status     FileStatus             `json:"status"`
	Reason     string                 `json:"reason,omitempty"`
	Candidates []model.MatchCandidate `json:"candidates,omitempty"`
}

// Report aggregates one pipeline run.
type Report struct {
	ID         string       `json:"id"`
	DryRun     bool         `json:"dry_run"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Files      []FileResult `json:"files"`
}

// Count returns the number of files with the given status.
func (r *Report) Count(status FileStatus) int {
	var n int
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Pipeline wires OCR, extraction, resolution and provider mapping into the
// rename flow.
type Pipeline struct {
	OCR           ocr.TextReader
	Extractor     extract.Extractor
	Resolver      *resolver.Resolver
	Providers     *provider.Table
	Quota         *quota.Tracker
	MaxConcurrent int

	log *zap.Logger
}

// New builds a Pipeline.
func New(reader ocr.TextReader, ex extract.Extractor, res *resolver.Resolver, providers *provider.Table, q *quota.Tracker, maxConcurrent int) *Pipeline {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pipeline{
		OCR:           reader,
		Extractor:     ex,
		Resolver:      res,
		Providers:     providers,
		Quota:         q,
		MaxConcurrent: maxConcurrent,
		log:           zap.L().With(zap.String("component", "pipeline")),
	}
}

// RunDir processes every *.pdf in dir. With dryRun set, target names are
// computed and reported but nothing is renamed. Files are processed in
// parallel; resolution itself is pure and shares no mutable state.
func (p *Pipeline) RunDir(ctx context.Context, dir string, dryRun bool) (*Report, error) {
	pdfs, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: glob %s", dir)
	}
	sort.Strings(pdfs)

	report := &Report{
		ID:        uuid.New().String(),
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
		Files:     make([]FileResult, len(pdfs)),
	}

	p.log.Info("pipeline run started",
		zap.String("run_id", report.ID),
		zap.Int("files", len(pdfs)),
		zap.Bool("dry_run", dryRun),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.MaxConcurrent)
	for i, pdf := range pdfs {
		g.Go(func() error {
			report.Files[i] = p.processFile(gctx, pdf, dryRun)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now().UTC()
	p.log.Info("pipeline run finished",
		zap.String("run_id", report.ID),
		zap.Int("renamed", report.Count(StatusRenamed)),
		zap.Int("failed", report.Count(StatusFailed)),
		zap.Int("ambiguous", report.Count(StatusAmbiguous)),
		zap.Int("skipped", report.Count(StatusSkipped)),
	)
	return report, nil
}

func (p *Pipeline) processFile(ctx context.Context, pdfPath string, dryRun bool) FileResult {
	result := FileResult{Original: filepath.Base(pdfPath)}

	text, err := p.OCR.ReadText(ctx, pdfPath)
	if err != nil || strings.TrimSpace(text) == "" {
		result.Status = StatusFailed
		result.Reason = "no text extracted"
		if err != nil {
			result.Reason = err.Error()
		}
		return result
	}

	if err := p.Quota.Acquire(ctx); err != nil {
		result.Status = StatusFailed
		result.Reason = err.Error()
		return result
	}

	fields, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		result.Status = StatusFailed
		result.Reason = err.Error()
		return result
	}

	if missing := missingFields(fields); missing != "" {
		result.Status = StatusFailed
		result.Reason = "missing " + missing
		return result
	}

	code, ok := p.Providers.Resolve(fields.ProviderName)
	if !ok {
		result.Status = StatusFailed
		result.Reason = "unknown provider " + fields.ProviderName
		return result
	}

	res := p.Resolver.Resolve(model.QueryBundle{
		RawName:        fields.CompanyName,
		RawAddress:     joinAddress(fields),
		PostalCodeHint: fields.PostalCode,
		ProviderRaw:    fields.ProviderName,
	})
	switch res.Outcome {
	case model.OutcomeAmbiguous:
		result.Status = StatusAmbiguous
		result.Reason = "site resolution ambiguous"
		result.Candidates = res.Candidates
		return result
	case model.OutcomeNotFound:
		result.Status = StatusFailed
		result.Reason = "site not resolved: " + res.Reason
		result.Candidates = res.Candidates
		return result
	}

	monthYear, err := FormatMonthYear(fields.DocumentDate)
	if err != nil {
		result.Status = StatusFailed
		result.Reason = err.Error()
		return result
	}

	combination := p.Providers.CombinationFor(code, fields.WasteTypes)
	result.NewName = BuildFilename(res.Location.CanonicalID, combination, monthYear, fields.DocumentNum)

	target := filepath.Join(filepath.Dir(pdfPath), result.NewName)
	if _, err := os.Stat(target); err == nil {
		result.Status = StatusSkipped
		result.Reason = "target already exists"
		return result
	}

	if !dryRun {
		if err := os.Rename(pdfPath, target); err != nil {
			result.Status = StatusFailed
			result.Reason = err.Error()
			return result
		}
	}

	result.Status = StatusRenamed
	p.log.Info("invoice renamed",
		zap.String("from", result.Original),
		zap.String("to", result.NewName),
		zap.Bool("dry_run", dryRun),
	)
	return result
}

func missingFields(f *model.InvoiceFields) string {
	var missing []string
	if f.CompanyName == "" {
		missing = append(missing, "company name")
	}
	if f.ProviderName == "" {
		missing = append(missing, "provider")
	}
	if f.DocumentDate == "" {
		missing = append(missing, "invoice date")
	}
	if f.DocumentNum == "" {
		missing = append(missing, "invoice number")
	}
	return strings.Join(missing, ", ")
}

func joinAddress(f *model.InvoiceFields) string {
	var parts []string
	for _, s := range []string{f.StreetAddress, f.PostalCode, f.City} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
