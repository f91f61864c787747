package report

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/schoolrecords/core/grade"
)

const gradesSheet = "Grades"

var gradesHeader = []interface{}{
	"ID", "Student ID", "Student", "Professor ID", "Subject", "Value", "Term", "Recorded At", "Comments",
}

// StudentNames resolves student names for the export; unknown IDs are left blank.
type StudentNames map[int]string

// WriteGrades writes grades as an xlsx workbook with a single "Grades" sheet.
func WriteGrades(w io.Writer, grades []grade.Grade, names StudentNames) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", gradesSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err = f.SetSheetRow(gradesSheet, "A1", &gradesHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err = f.SetRowStyle(gradesSheet, 1, 1, style); err != nil {
		return errors.Wrap(err, "styling header")
	}

	for i, g := range grades {
		var comments string
		if g.Comments != nil {
			comments = *g.Comments
		}
		row := []interface{}{
			g.ID, g.StudentID, names[g.StudentID], g.ProfessorID, g.Subject, g.Value, g.Term,
			g.RecordedAt.UTC().Format("2006-01-02 15:04"), comments,
		}
		if err = f.SetSheetRow(gradesSheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return errors.Wrapf(err, "writing grade %d", g.ID)
		}
	}

	if err = f.SetPanes(gradesSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return errors.Wrap(err, "freezing header")
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}
