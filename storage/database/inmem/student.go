package inmemdb

import (
	"context"

	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	tbl := repo.db.student
	tbl.Lock()
	defer tbl.Unlock()

	s.ID = tbl.nextID()
	tbl.rows[s.ID] = s
	return s, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, spec query.Spec) ([]student.Student, int, error) {
	tbl := repo.db.student
	tbl.RLock()
	defer tbl.RUnlock()

	students, total := student.Fields.Apply(tbl.all(), spec)
	return students, total, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	if s, ok := repo.db.student.get(id); ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUserID(_ context.Context, userID int) (student.Student, error) {
	s, ok := repo.db.student.find(func(s student.Student) bool { return s.UserID != nil && *s.UserID == userID })
	if ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	if !repo.db.student.replace(s.ID, s) {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

// DeleteStudent deletes the student along with their grades.
func (repo *studentRepository) DeleteStudent(_ context.Context, id int) error {
	if !repo.db.student.delete(id) {
		return student.ErrNotFound
	}

	grades := repo.db.grade
	grades.Lock()
	defer grades.Unlock()
	for gid, g := range grades.rows {
		if g.StudentID == id {
			delete(grades.rows, gid)
		}
	}
	return nil
}
