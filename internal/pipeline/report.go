package pipeline

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteXLSX exports the run report as a workbook: one summary sheet and one
// row per file with outcome, target name and near-miss candidates.
func (r *Report) WriteXLSX(path string) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "pipeline: add summary sheet")
	}
	addRow(summary, "Run ID", r.ID)
	addRow(summary, "Dry run", fmt.Sprintf("%t", r.DryRun))
	addRow(summary, "Started", r.StartedAt.Format("2006-01-02 15:04:05"))
	addRow(summary, "Finished", r.FinishedAt.Format("2006-01-02 15:04:05"))
	addRow(summary, "Renamed", fmt.Sprintf("%d", r.Count(StatusRenamed)))
	addRow(summary, "Ambiguous", fmt.Sprintf("%d", r.Count(StatusAmbiguous)))
	addRow(summary, "Failed", fmt.Sprintf("%d", r.Count(StatusFailed)))
	addRow(summary, "Skipped", fmt.Sprintf("%d", r.Count(StatusSkipped)))

	files, err := f.AddSheet("Files")
	if err != nil {
		return eris.Wrap(err, "pipeline: add files sheet")
	}
	addRow(files, "Original", "New Filename", "Status", "Reason", "Candidates")
	for _, fr := range r.Files {
		addRow(files, fr.Original, fr.NewName, string(fr.Status), fr.Reason, candidateSummary(fr))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "pipeline: save report %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func candidateSummary(fr FileResult) string {
	s := ""
	for i, c := range fr.Candidates {
		if i > 0 {
			s += "; "
		}
		s += fmt.Sprintf("%s %s (%.2f)", c.Location.CanonicalID, c.Location.CanonicalName, c.CombinedScore)
	}
	return s
}
