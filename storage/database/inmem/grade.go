package inmemdb

import (
	"context"

	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/query"
)

type gradeRepository struct {
	db *table[grade.Grade]
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.ID = repo.db.nextID()
	repo.db.rows[g.ID] = g
	return g, nil
}

func (repo *gradeRepository) QueryGrades(_ context.Context, spec query.Spec) ([]grade.Grade, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades, total := grade.Fields.Apply(repo.db.all(), spec)
	return grades, total, nil
}

func (repo *gradeRepository) GetGradeByID(_ context.Context, id int) (grade.Grade, error) {
	if g, ok := repo.db.get(id); ok {
		return g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	if !repo.db.replace(g.ID, g) {
		return grade.Grade{}, grade.ErrNotFound
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(_ context.Context, id int) error {
	if !repo.db.delete(id) {
		return grade.ErrNotFound
	}
	return nil
}
