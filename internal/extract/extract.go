// Package extract turns raw invoice text into best-effort structured
// fields. Presence of any individual field is never guaranteed.
package extract

import (
	"context"

	"github.com/resto-ops/facture-cli/internal/model"
)

// Extractor analyzes invoice text and returns whatever structured fields it
// can find.
type Extractor interface {
	Extract(ctx context.Context, text string) (*model.InvoiceFields, error)
}

// Static returns fixed fields for every call. Used in tests and dry runs
// where no API traffic is wanted.
type Static struct {
	Fields model.InvoiceFields
	Err    error
}

// Extract implements Extractor.
func (s Static) Extract(ctx context.Context, text string) (*model.InvoiceFields, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	f := s.Fields
	return &f, nil
}
