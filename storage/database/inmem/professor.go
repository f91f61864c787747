package inmemdb

import (
	"context"

	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/query"
)

type professorRepository struct {
	db *DB
}

var _ professor.Repository = (*professorRepository)(nil)

func NewProfessorRepository(db *DB) professor.Repository {
	return &professorRepository{db: db}
}

func (repo *professorRepository) CreateProfessor(_ context.Context, p professor.Professor) (professor.Professor, error) {
	tbl := repo.db.professor
	tbl.Lock()
	defer tbl.Unlock()

	p.ID = tbl.nextID()
	tbl.rows[p.ID] = p
	return p, nil
}

func (repo *professorRepository) QueryProfessors(_ context.Context, spec query.Spec) ([]professor.Professor, int, error) {
	tbl := repo.db.professor
	tbl.RLock()
	defer tbl.RUnlock()

	professors, total := professor.Fields.Apply(tbl.all(), spec)
	return professors, total, nil
}

func (repo *professorRepository) GetProfessorByID(_ context.Context, id int) (professor.Professor, error) {
	if p, ok := repo.db.professor.get(id); ok {
		return p, nil
	}
	return professor.Professor{}, professor.ErrNotFound
}

func (repo *professorRepository) GetProfessorByUserID(_ context.Context, userID int) (professor.Professor, error) {
	p, ok := repo.db.professor.find(func(p professor.Professor) bool { return p.UserID != nil && *p.UserID == userID })
	if ok {
		return p, nil
	}
	return professor.Professor{}, professor.ErrNotFound
}

func (repo *professorRepository) UpdateProfessor(_ context.Context, p professor.Professor) (professor.Professor, error) {
	if !repo.db.professor.replace(p.ID, p) {
		return professor.Professor{}, professor.ErrNotFound
	}
	return p, nil
}

func (repo *professorRepository) DeleteProfessor(_ context.Context, id int) error {
	if _, hasGrades := repo.db.grade.find(func(g grade.Grade) bool { return g.ProfessorID == id }); hasGrades {
		return professor.ErrHasGrades
	}
	if !repo.db.professor.delete(id) {
		return professor.ErrNotFound
	}
	return nil
}
