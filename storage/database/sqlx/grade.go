package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/query"
)

const (
	gradeTable   = "grades"
	gradeColumns = "id, student_id, professor_id, subject, value, term, comments, recorded_at, created_at, updated_at"
)

type gradeRepository struct {
	exec core.DBExecutor
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(exec core.DBExecutor) grade.Repository {
	return &gradeRepository{exec: exec}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q := `INSERT INTO ` + gradeTable + ` (student_id, professor_id, subject, value, term, comments, recorded_at, created_at, updated_at)
	VALUES (:student_id, :professor_id, :subject, :value, :term, :comments, :recorded_at, :created_at, :updated_at)
	RETURNING id`
	q, args, err := sqlx.Named(q, g)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "binding grade")
	}
	if err = repo.exec.GetContext(ctx, &g.ID, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, spec query.Spec) ([]grade.Grade, int, error) {
	grades := make([]grade.Grade, 0)
	total, err := querySpec(ctx, repo.exec, &grades, gradeColumns, gradeTable, spec)
	if err != nil {
		return nil, 0, err
	}
	return grades, total, nil
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id int) (grade.Grade, error) {
	var g grade.Grade
	q := "SELECT " + gradeColumns + " FROM " + gradeTable + " WHERE id = $1"
	if err := repo.exec.GetContext(ctx, &g, q, id); err != nil {
		if err == sql.ErrNoRows {
			return grade.Grade{}, grade.ErrNotFound
		}
		return grade.Grade{}, errors.Wrap(err, "finding grade by ID")
	}
	return g, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q := `UPDATE ` + gradeTable + ` SET subject = :subject, value = :value, term = :term, comments = :comments,
	recorded_at = :recorded_at, updated_at = :updated_at
	WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.exec, q, g)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.Grade{}, grade.ErrNotFound
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) error {
	res, err := repo.exec.ExecContext(ctx, "DELETE FROM "+gradeTable+" WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.ErrNotFound
	}
	return nil
}
