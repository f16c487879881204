package refstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/resto-ops/facture-cli/internal/model"
)

// SQLiteSource reads reference locations from a SQLite table with columns
// identifier, name, street_address, postal_code, city.
type SQLiteSource struct {
	DSN   string
	Table string // default "locations"
}

// Load implements Source.
func (s SQLiteSource) Load(ctx context.Context) ([]model.ReferenceLocation, []LoadWarning, error) {
	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return nil, nil, eris.Wrap(err, "refstore: sqlite open")
	}
	defer db.Close()

	table := s.Table
	if table == "" {
		table = "locations"
	}

	query := fmt.Sprintf(
		`SELECT identifier, name, street_address, postal_code, city FROM %q ORDER BY identifier`, table)
	dbRows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "refstore: sqlite query %s", table)
	}
	defer dbRows.Close()

	return scanLocations(dbRows)
}

// rowScanner is the subset of sql.Rows shared with pgx result sets.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLocations(rows rowScanner) ([]model.ReferenceLocation, []LoadWarning, error) {
	var (
		out      []model.ReferenceLocation
		warnings []LoadWarning
		rowNum   int
	)
	for rows.Next() {
		rowNum++
		var loc model.ReferenceLocation
		var street, postal, city sql.NullString
		if err := rows.Scan(&loc.CanonicalID, &loc.CanonicalName, &street, &postal, &city); err != nil {
			warnings = append(warnings, LoadWarning{Row: rowNum, Reason: "unscannable row: " + err.Error()})
			continue
		}
		loc.Street = street.String
		loc.PostalCode = postal.String
		loc.City = city.String
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "refstore: rows iteration")
	}
	return out, warnings, nil
}
