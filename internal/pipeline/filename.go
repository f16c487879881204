package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// invoice dates arrive as DD/MM/YYYY; filenames carry MMYYYY.
const (
	invoiceDateLayout = "02/01/2006"
	fileDateLayout    = "012006"
)

// unsafeFilenameRe matches characters that must not reach a filename.
var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FormatMonthYear converts a DD/MM/YYYY invoice date to MMYYYY.
func FormatMonthYear(date string) (string, error) {
	t, err := time.Parse(invoiceDateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", eris.Wrapf(err, "pipeline: parse invoice date %q", date)
	}
	return t.Format(fileDateLayout), nil
}

// BuildFilename assembles the target name:
// <site>-<collector+waste suffix>-<MMYYYY>-<invoice number>.pdf
func BuildFilename(siteID, combination, monthYear, invoiceNumber string) string {
	parts := []string{siteID, combination, monthYear, sanitize(invoiceNumber)}
	return fmt.Sprintf("%s.pdf", strings.Join(parts, "-"))
}

func sanitize(s string) string {
	return unsafeFilenameRe.ReplaceAllString(strings.TrimSpace(s), "")
}
