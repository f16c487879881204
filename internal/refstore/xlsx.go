package refstore

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/resto-ops/facture-cli/internal/model"
)

// XLSXSource reads reference locations from the first sheet of an XLSX
// workbook. Row 1 is the header.
type XLSXSource struct {
	Path      string
	SheetName string // if set, overrides the first sheet
}

// Load implements Source.
func (x XLSXSource) Load(ctx context.Context) ([]model.ReferenceLocation, []LoadWarning, error) {
	f, err := xlsx.OpenFile(x.Path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "refstore: open %s", x.Path)
	}

	sheet, err := x.sheet(f)
	if err != nil {
		return nil, nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, nil, eris.Errorf("refstore: %s: empty sheet", x.Path)
	}

	cols, err := mapHeader(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, nil, eris.Wrapf(err, "refstore: %s", x.Path)
	}

	var rows []model.ReferenceLocation
	for _, row := range sheet.Rows[1:] {
		if ctx.Err() != nil {
			return nil, nil, eris.Wrap(ctx.Err(), "refstore: load cancelled")
		}
		rows = append(rows, rowFromRecord(rowToStrings(row), cols))
	}

	return rows, nil, nil
}

func (x XLSXSource) sheet(f *xlsx.File) (*xlsx.Sheet, error) {
	if x.SheetName != "" {
		sheet, ok := f.Sheet[x.SheetName]
		if !ok {
			return nil, eris.Errorf("refstore: %s: sheet %q not found", x.Path, x.SheetName)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("refstore: %s: workbook has no sheets", x.Path)
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
