package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resto-ops/facture-cli/internal/address"
	"github.com/resto-ops/facture-cli/internal/config"
	"github.com/resto-ops/facture-cli/internal/extract"
	"github.com/resto-ops/facture-cli/internal/model"
	"github.com/resto-ops/facture-cli/internal/normalize"
	"github.com/resto-ops/facture-cli/internal/provider"
	"github.com/resto-ops/facture-cli/internal/quota"
	"github.com/resto-ops/facture-cli/internal/refstore"
	"github.com/resto-ops/facture-cli/internal/resolver"
)

// fakeOCR returns canned text per file and remembers nothing.
type fakeOCR struct {
	text string
	err  error
}

func (f fakeOCR) ReadText(context.Context, string) (string, error) {
	return f.text, f.err
}

func goodFields() model.InvoiceFields {
	return model.InvoiceFields{
		CompanyName:   "QUICK DIJON",
		StreetAddress: "2 PLACE DARCY",
		PostalCode:    "21000",
		City:          "DIJON",
		ProviderName:  "SUEZ RV CENTRE EST",
		DocumentDate:  "15/03/2025",
		DocumentNum:   "FA 2025/0042",
		WasteTypes:    []string{"BIO"},
	}
}

func testResolver(t *testing.T, rows []model.ReferenceLocation) *resolver.Resolver {
	t.Helper()
	names, err := normalize.New(normalize.DefaultAliasTable())
	require.NoError(t, err)
	addrs, err := address.NewExtractor(address.DefaultSuppressionTable())
	require.NoError(t, err)
	store := refstore.NewStore(rows, nil, names)
	cfg := config.MatchingConfig{
		NameThreshold: 0.85,
		NameWeight:    0.4,
		AddressWeight: 0.6,
		TieEpsilon:    0.01,
		PostalMargin:  0.15,
	}
	return resolver.New(store, names, addrs, cfg)
}

func testProviders() *provider.Table {
	return provider.NewTable([]model.ProviderAlias{
		{CanonicalCode: "SUEZ", Aliases: []string{"SUEZ RV"}, Combinations: []string{"SUEZBIO", "SUEZDIB"}},
	}, 0.6)
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func singleSiteRows() []model.ReferenceLocation {
	return []model.ReferenceLocation{
		{CanonicalID: "3001", CanonicalName: "QUICK DIJON", Street: "2 PLACE DARCY", PostalCode: "21000", City: "DIJON"},
	}
}

func newTestPipeline(t *testing.T, ex extract.Extractor, rows []model.ReferenceLocation) *Pipeline {
	t.Helper()
	return New(fakeOCR{text: "invoice text"}, ex, testResolver(t, rows), testProviders(), quota.New(60, 100), 2)
}

func TestRunDir_RenamesResolvedInvoice(t *testing.T) {
	dir := t.TempDir()
	original := writePDF(t, dir, "scan_0001.pdf")

	p := newTestPipeline(t, extract.Static{Fields: goodFields()}, singleSiteRows())
	report, err := p.RunDir(context.Background(), dir, false)
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	f := report.Files[0]
	assert.Equal(t, StatusRenamed, f.Status)
	assert.Equal(t, "3001-SUEZBIO-032025-FA20250042.pdf", f.NewName)

	assert.NoFileExists(t, original)
	assert.FileExists(t, filepath.Join(dir, f.NewName))
	assert.Equal(t, 1, report.Count(StatusRenamed))
}

func TestRunDir_DryRunLeavesFilesAlone(t *testing.T) {
	dir := t.TempDir()
	original := writePDF(t, dir, "scan_0001.pdf")

	p := newTestPipeline(t, extract.Static{Fields: goodFields()}, singleSiteRows())
	report, err := p.RunDir(context.Background(), dir, true)
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, StatusRenamed, report.Files[0].Status)
	assert.Equal(t, "3001-SUEZBIO-032025-FA20250042.pdf", report.Files[0].NewName)
	assert.True(t, report.DryRun)

	assert.FileExists(t, original)
	assert.NoFileExists(t, filepath.Join(dir, report.Files[0].NewName))
}

func TestRunDir_SkipsWhenTargetExists(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "scan_0001.pdf")
	writePDF(t, dir, "3001-SUEZBIO-032025-FA20250042.pdf")

	p := newTestPipeline(t, extract.Static{Fields: goodFields()}, singleSiteRows())
	report, err := p.RunDir(context.Background(), dir, false)
	require.NoError(t, err)

	// The pre-existing target resolves to its own name and is skipped too.
	assert.Equal(t, 2, report.Count(StatusSkipped))
}

func TestRunDir_EmptyTextFails(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "blank.pdf")

	p := newTestPipeline(t, extract.Static{Fields: goodFields()}, singleSiteRows())
	p.OCR = fakeOCR{text: "   "}

	report, err := p.RunDir(context.Background(), dir, false)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, StatusFailed, report.Files[0].Status)
	assert.Equal(t, "no text extracted", report.Files[0].Reason)
}

func TestRunDir_OCRErrorFails(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "broken.pdf")

	p := newTestPipeline(t, extract.Static{Fields: goodFields()}, singleSiteRows())
	p.OCR = fakeOCR{err: errors.New("pdftotext: exit status 1")}

	report, err := p.RunDir(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Files[0].Status)
	assert.Contains(t, report.Files[0].Reason, "pdftotext")
}

func TestRunDir_MissingFieldsFail(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "scan.pdf")

	fields := goodFields()
	fields.DocumentNum = ""
	fields.DocumentDate = ""
	p := newTestPipeline(t, extract.Static{Fields: fields}, singleSiteRows())

	report, err := p.RunDir(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Files[0].Status)
	assert.Contains(t, report.Files[0].Reason, "invoice date")
	assert.Contains(t, report.Files[0].Reason, "invoice number")
}

func TestRunDir_UnknownProviderFails(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "scan.pdf")

	fields := goodFields()
	fields.ProviderName = "RAMASSAGE INCONNU"
	p := newTestPipeline(t, extract.Static{Fields: fields}, singleSiteRows())

	report, err := p.RunDir(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Files[0].Status)
	assert.Contains(t, report.Files[0].Reason, "unknown provider")
}

func TestRunDir_AmbiguousCarriesCandidates(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "scan.pdf")

	rows := []model.ReferenceLocation{
		{CanonicalID: "9001", CanonicalName: "QUICK DIJON", PostalCode: "21000", City: "DIJON"},
		{CanonicalID: "9002", CanonicalName: "QUICK DIJON", PostalCode: "21000", City: "DIJON"},
	}
	fields := goodFields()
	fields.StreetAddress = ""
	p := newTestPipeline(t, extract.Static{Fields: fields}, rows)

	report, err := p.RunDir(context.Background(), dir, false)
	require.NoError(t, err)
	f := report.Files[0]
	assert.Equal(t, StatusAmbiguous, f.Status)
	assert.Empty(t, f.NewName)
	require.Len(t, f.Candidates, 2)
}

func TestRunDir_ExtractorErrorFails(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "scan.pdf")

	p := newTestPipeline(t, extract.Static{Err: errors.New("api unavailable")}, singleSiteRows())

	report, err := p.RunDir(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Files[0].Status)
}

func TestRunDir_QuotaExhaustedFails(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "scan.pdf")

	p := newTestPipeline(t, extract.Static{Fields: goodFields()}, singleSiteRows())
	p.Quota = quota.New(60, 0)

	report, err := p.RunDir(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Files[0].Status)
	assert.Contains(t, report.Files[0].Reason, "budget")
}

func TestRunDir_EmptyDirectory(t *testing.T) {
	p := newTestPipeline(t, extract.Static{Fields: goodFields()}, singleSiteRows())

	report, err := p.RunDir(context.Background(), t.TempDir(), false)
	require.NoError(t, err)
	assert.Empty(t, report.Files)
	assert.NotEmpty(t, report.ID)
}
