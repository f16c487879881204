package refstore

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/resto-ops/facture-cli/internal/model"
)

// CSVSource reads reference locations from a delimited file. The original
// datasets are semicolon-delimited exports with a UTF-8 BOM; both are
// handled.
type CSVSource struct {
	Path      string
	Delimiter rune // default ';'
}

// Load implements Source.
func (c CSVSource) Load(ctx context.Context) ([]model.ReferenceLocation, []LoadWarning, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "refstore: open %s", c.Path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = c.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1 // allow ragged rows; handled per row

	header, err := reader.Read()
	if err != nil {
		return nil, nil, eris.Wrapf(err, "refstore: read header of %s", c.Path)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "refstore: %s", c.Path)
	}

	var (
		rows     []model.ReferenceLocation
		warnings []LoadWarning
	)
	for rowNum := 1; ; rowNum++ {
		if ctx.Err() != nil {
			return nil, nil, eris.Wrap(ctx.Err(), "refstore: load cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// One malformed row must not abort a 900-row load.
			warnings = append(warnings, LoadWarning{Row: rowNum, Reason: "unparseable row: " + err.Error()})
			continue
		}

		rows = append(rows, rowFromRecord(record, cols))
	}

	return rows, warnings, nil
}

// mapHeader resolves the column index of each required field, tolerating
// the accepted header spellings. Every required column must be present.
func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(requiredColumns))
	for i, h := range header {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\uFEFF")
		key := strings.ToUpper(strings.ReplaceAll(h, "-", "_"))
		if canonical, ok := headerAliases[key]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

func rowFromRecord(record []string, cols map[string]int) model.ReferenceLocation {
	field := func(name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	return model.ReferenceLocation{
		CanonicalID:   field("identifier"),
		CanonicalName: field("name"),
		Street:        field("street_address"),
		PostalCode:    field("postal_code"),
		City:          field("city"),
	}
}
