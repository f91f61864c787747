package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
)

const (
	studentTable   = "students"
	studentColumns = "id, user_id, first_name, last_name, email, birth_date, enrollment_date, year_level, is_active, created_at, updated_at"
)

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(exec core.DBExecutor) student.Repository {
	return &studentRepository{exec: exec}
}

func (repo *studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *studentRepository) get(ctx context.Context, msg, where string, arg interface{}) (student.Student, error) {
	var s student.Student
	q := "SELECT " + studentColumns + " FROM " + studentTable + " WHERE " + where
	if err := repo.exec.GetContext(ctx, &s, q, arg); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, msg)
	}
	return s, nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `INSERT INTO ` + studentTable + ` (user_id, first_name, last_name, email, birth_date, enrollment_date, year_level, is_active, created_at, updated_at)
	VALUES (:user_id, :first_name, :last_name, :email, :birth_date, :enrollment_date, :year_level, :is_active, :created_at, :updated_at)
	RETURNING id`
	q, args, err := sqlx.Named(q, s)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "binding student")
	}
	if err = repo.exec.GetContext(ctx, &s.ID, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, spec query.Spec) ([]student.Student, int, error) {
	students := make([]student.Student, 0)
	total, err := querySpec(ctx, repo.exec, &students, studentColumns, studentTable, spec)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	return repo.get(ctx, "finding student by ID", "id = $1", id)
}

func (repo *studentRepository) GetStudentByUserID(ctx context.Context, userID int) (student.Student, error) {
	return repo.get(ctx, "finding student by user ID", "user_id = $1", userID)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `UPDATE ` + studentTable + ` SET user_id = :user_id, first_name = :first_name, last_name = :last_name,
	email = :email, birth_date = :birth_date, enrollment_date = :enrollment_date, year_level = :year_level,
	is_active = :is_active, updated_at = :updated_at
	WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.exec, q, s)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	res, err := repo.exec.ExecContext(ctx, "DELETE FROM "+studentTable+" WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}
