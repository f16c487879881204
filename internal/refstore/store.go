// Package refstore loads the reference location dataset and serves indexed
// lookups over it. The dataset is loaded once and read-only afterwards.
package refstore

import (
	"context"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/resto-ops/facture-cli/internal/model"
	"github.com/resto-ops/facture-cli/internal/normalize"
)

// columns required in every tabular reference source.
var requiredColumns = []string{"identifier", "name", "street_address", "postal_code", "city"}

// headerAliases maps accepted header spellings (cleaned, uppercase) to the
// canonical column. Covers both the documented names and the headers of the
// original French datasets.
var headerAliases = map[string]string{
	"IDENTIFIER":     "identifier",
	"ID":             "identifier",
	"SITE":           "identifier",
	"NAME":           "name",
	"ENTREPRISE":     "name",
	"STREET_ADDRESS": "street_address",
	"STREET":         "street_address",
	"ADRESSE":        "street_address",
	"POSTAL_CODE":    "postal_code",
	"CODE_POSTAL":    "postal_code",
	"CODE POSTAL":    "postal_code",
	"CP":             "postal_code",
	"CITY":           "city",
	"VILLE":          "city",
}

var postalRe = regexp.MustCompile(`^\d{5}$`)

// LoadWarning records a non-fatal defect found in one reference row.
type LoadWarning struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// Source reads raw reference rows from a tabular backend.
type Source interface {
	Load(ctx context.Context) ([]model.ReferenceLocation, []LoadWarning, error)
}

// Store holds the loaded reference locations plus precomputed indexes.
// Read-only after construction; safe for unlimited concurrent readers.
type Store struct {
	locations []model.ReferenceLocation
	byPostal  map[string][]model.ReferenceLocation
	byToken   map[string][]model.ReferenceLocation
	warnings  []LoadWarning
}

// NewStore sanitizes raw rows and builds the lookup indexes:
//   - rows missing identifier or name are skipped, with a warning
//   - a duplicate canonical id keeps the first row, with a warning
//   - a malformed postal code is cleared (never fabricated), with a warning
func NewStore(rows []model.ReferenceLocation, warnings []LoadWarning, names *normalize.Normalizer) *Store {
	s := &Store{
		byPostal: make(map[string][]model.ReferenceLocation),
		byToken:  make(map[string][]model.ReferenceLocation),
		warnings: warnings,
	}

	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		switch {
		case row.CanonicalID == "":
			s.warn(i, "identifier", "empty identifier, row skipped")
			continue
		case row.CanonicalName == "":
			s.warn(i, "name", "empty name, row skipped")
			continue
		case seen[row.CanonicalID]:
			s.warn(i, "identifier", "duplicate identifier "+row.CanonicalID+", row skipped")
			continue
		}
		seen[row.CanonicalID] = true

		if row.PostalCode != "" && !postalRe.MatchString(row.PostalCode) {
			s.warn(i, "postal_code", "malformed postal code "+row.PostalCode+", cleared")
			row.PostalCode = ""
		}

		s.locations = append(s.locations, row)
		if row.PostalCode != "" {
			s.byPostal[row.PostalCode] = append(s.byPostal[row.PostalCode], row)
		}
		for _, tok := range names.Normalize(row.CanonicalName).Tokens() {
			s.byToken[tok] = append(s.byToken[tok], row)
		}
	}

	for _, w := range s.warnings {
		zap.L().Warn("reference row defect",
			zap.Int("row", w.Row),
			zap.String("field", w.Field),
			zap.String("reason", w.Reason),
		)
	}

	return s
}

func (s *Store) warn(row int, field, reason string) {
	s.warnings = append(s.warnings, LoadWarning{Row: row, Field: field, Reason: reason})
}

// All returns every loaded location.
func (s *Store) All() []model.ReferenceLocation { return s.locations }

// Len returns the number of loaded locations.
func (s *Store) Len() int { return len(s.locations) }

// Warnings returns the defects recorded during load.
func (s *Store) Warnings() []LoadWarning { return s.warnings }

// ByPostalCode returns the locations registered under a postal code.
func (s *Store) ByPostalCode(code string) []model.ReferenceLocation {
	return s.byPostal[code]
}

// ByNameToken returns the locations whose normalized name contains the
// given token.
func (s *Store) ByNameToken(token string) []model.ReferenceLocation {
	return s.byToken[token]
}

// Loader guards a Source behind a single lazy load. Concurrent callers
// block on one load instead of loading twice.
type Loader struct {
	src   Source
	names *normalize.Normalizer

	once  sync.Once
	store *Store
	err   error
}

// NewLoader wraps a source for lazy, once-only loading.
func NewLoader(src Source, names *normalize.Normalizer) *Loader {
	return &Loader{src: src, names: names}
}

// Get loads the store on first call and returns the cached store after.
func (l *Loader) Get(ctx context.Context) (*Store, error) {
	l.once.Do(func() {
		rows, warnings, err := l.src.Load(ctx)
		if err != nil {
			l.err = err
			return
		}
		l.store = NewStore(rows, warnings, l.names)
		zap.L().Info("reference data loaded",
			zap.Int("locations", l.store.Len()),
			zap.Int("warnings", len(l.store.Warnings())),
		)
	})
	return l.store, l.err
}
