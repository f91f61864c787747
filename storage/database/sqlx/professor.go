package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/query"
)

const (
	professorTable   = "professors"
	professorColumns = "id, user_id, first_name, last_name, email, department, hire_date, is_active, created_at, updated_at"

	pgForeignKeyViolation = "23503"
)

type professorRepository struct {
	exec core.DBExecutor
}

var _ professor.Repository = (*professorRepository)(nil)

func NewProfessorRepository(exec core.DBExecutor) professor.Repository {
	return &professorRepository{exec: exec}
}

func (repo *professorRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return professor.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *professorRepository) get(ctx context.Context, msg, where string, arg interface{}) (professor.Professor, error) {
	var p professor.Professor
	q := "SELECT " + professorColumns + " FROM " + professorTable + " WHERE " + where
	if err := repo.exec.GetContext(ctx, &p, q, arg); err != nil {
		return professor.Professor{}, repo.trapNoRowsErr(err, msg)
	}
	return p, nil
}

func (repo *professorRepository) CreateProfessor(ctx context.Context, p professor.Professor) (professor.Professor, error) {
	q := `INSERT INTO ` + professorTable + ` (user_id, first_name, last_name, email, department, hire_date, is_active, created_at, updated_at)
	VALUES (:user_id, :first_name, :last_name, :email, :department, :hire_date, :is_active, :created_at, :updated_at)
	RETURNING id`
	q, args, err := sqlx.Named(q, p)
	if err != nil {
		return professor.Professor{}, errors.Wrap(err, "binding professor")
	}
	if err = repo.exec.GetContext(ctx, &p.ID, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return professor.Professor{}, errors.Wrap(err, "inserting professor")
	}
	return p, nil
}

func (repo *professorRepository) QueryProfessors(ctx context.Context, spec query.Spec) ([]professor.Professor, int, error) {
	professors := make([]professor.Professor, 0)
	total, err := querySpec(ctx, repo.exec, &professors, professorColumns, professorTable, spec)
	if err != nil {
		return nil, 0, err
	}
	return professors, total, nil
}

func (repo *professorRepository) GetProfessorByID(ctx context.Context, id int) (professor.Professor, error) {
	return repo.get(ctx, "finding professor by ID", "id = $1", id)
}

func (repo *professorRepository) GetProfessorByUserID(ctx context.Context, userID int) (professor.Professor, error) {
	return repo.get(ctx, "finding professor by user ID", "user_id = $1", userID)
}

func (repo *professorRepository) UpdateProfessor(ctx context.Context, p professor.Professor) (professor.Professor, error) {
	q := `UPDATE ` + professorTable + ` SET user_id = :user_id, first_name = :first_name, last_name = :last_name,
	email = :email, department = :department, hire_date = :hire_date, is_active = :is_active, updated_at = :updated_at
	WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.exec, q, p)
	if err != nil {
		return professor.Professor{}, errors.Wrap(err, "updating professor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return professor.Professor{}, professor.ErrNotFound
	}
	return p, nil
}

func (repo *professorRepository) DeleteProfessor(ctx context.Context, id int) error {
	res, err := repo.exec.ExecContext(ctx, "DELETE FROM "+professorTable+" WHERE id = $1", id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return professor.ErrHasGrades
		}
		return errors.Wrap(err, "deleting professor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return professor.ErrNotFound
	}
	return nil
}
