package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/grade"
)

func TestWriteGrades(t *testing.T) {
	at := time.Date(2024, 11, 5, 9, 30, 0, 0, time.UTC)
	grades := []grade.Grade{
		{ID: 1, StudentID: 4, ProfessorID: 2, Subject: "Math", Value: 87.5, Term: "T1", RecordedAt: at},
		{ID: 2, StudentID: 5, ProfessorID: 2, Subject: "Physics", Value: 42, Term: "T1", RecordedAt: at, Comments: core.StringPtr("retake")},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, WriteGrades(buf, grades, StudentNames{4: "Ann Lee"}))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(gradesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Student ID", "Student", "Professor ID", "Subject", "Value", "Term", "Recorded At", "Comments"}, rows[0])
	assert.Equal(t, []string{"1", "4", "Ann Lee", "2", "Math", "87.5", "T1", "2024-11-05 09:30"}, rows[1])
	assert.Equal(t, []string{"2", "5", "", "2", "Physics", "42", "T1", "2024-11-05 09:30", "retake"}, rows[2])
}

func TestWriteGrades_Empty(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteGrades(buf, nil, nil))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(gradesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
