package grade

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
)

var (
	// errors
	ErrNotFound          = errors.New("grade not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrProfessorNotFound = errors.New("professor not found")
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		QueryGrades(ctx context.Context, spec query.Spec) ([]Grade, int, error)
		GetGradeByID(ctx context.Context, id int) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id int) error
	}

	Service interface {
		// CheckRefs checks that the student and the professor of a new grade exist.
		CheckRefs(ctx context.Context, studentID, professorID int) error
		Record(ctx context.Context, ng NewGrade) (Grade, error)
		Query(ctx context.Context, spec query.Spec) ([]Grade, int, error)
		GetByID(ctx context.Context, id int) (Grade, error)
		Update(ctx context.Context, g Grade, ug UpdateGrade) (Grade, error)
		Delete(ctx context.Context, id int) error
		StudentReport(ctx context.Context, studentID int) (Report, error)
	}

	service struct {
		repo     Repository
		stdSvc   student.Service
		profSvc  professor.Service
		passMark float64
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, stdSvc student.Service, profSvc professor.Service, conf *core.Config) Service {
	return &service{
		repo:     repo,
		stdSvc:   stdSvc,
		profSvc:  profSvc,
		passMark: conf.Grades.PassMark,
	}
}

func (svc *service) CheckRefs(ctx context.Context, studentID, professorID int) error {
	var fields []core.FieldError

	if _, err := svc.stdSvc.GetByID(ctx, studentID); err != nil {
		if errors.Cause(err) != student.ErrNotFound {
			return errors.Wrap(err, "finding student by ID")
		}
		fields = append(fields, core.FieldError{Field: "student_id", Error: ErrStudentNotFound.Error()})
	}
	if _, err := svc.profSvc.GetByID(ctx, professorID); err != nil {
		if errors.Cause(err) != professor.ErrNotFound {
			return errors.Wrap(err, "finding professor by ID")
		}
		fields = append(fields, core.FieldError{Field: "professor_id", Error: ErrProfessorNotFound.Error()})
	}

	if len(fields) > 0 {
		return core.NewValidationError(nil, fields...)
	}
	return nil
}

func (svc *service) Record(ctx context.Context, ng NewGrade) (Grade, error) {
	now := time.Now().UTC()
	g := Grade{
		StudentID:   ng.StudentID,
		ProfessorID: ng.ProfessorID,
		Subject:     ng.Subject,
		Value:       round2(*ng.Value),
		Term:        ng.Term,
		Comments:    ng.Comments,
		RecordedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ng.RecordedAt != nil {
		g.RecordedAt = ng.RecordedAt.UTC()
	}
	return svc.repo.CreateGrade(ctx, g)
}

func (svc *service) Query(ctx context.Context, spec query.Spec) ([]Grade, int, error) {
	return svc.repo.QueryGrades(ctx, spec)
}

func (svc *service) GetByID(ctx context.Context, id int) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, g Grade, ug UpdateGrade) (Grade, error) {
	g = ug.apply(g)
	g.Value = round2(g.Value)
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, g)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteGrade(ctx, id)
}

// StudentReport averages all the grades of a student, overall and per subject.
// A student without grades has an overall average of 0 and does not pass.
func (svc *service) StudentReport(ctx context.Context, studentID int) (Report, error) {
	std, err := svc.stdSvc.GetByID(ctx, studentID)
	if err != nil {
		return Report{}, err
	}

	var spec query.Spec // no paging
	spec.Restrict(query.Eq(Fields.MustLookup("student_id"), float64(studentID)))
	grades, _, err := svc.repo.QueryGrades(ctx, spec)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying grades")
	}

	rep := Report{Student: std, Subjects: []SubjectAverage{}, PassMark: svc.passMark}
	if len(grades) == 0 {
		return rep, nil
	}

	type acc struct {
		sum   float64
		count int
	}
	var (
		total     float64
		bySubject = make(map[string]*acc)
	)
	for _, g := range grades {
		total += g.Value
		a, ok := bySubject[g.Subject]
		if !ok {
			a = new(acc)
			bySubject[g.Subject] = a
		}
		a.sum += g.Value
		a.count++
	}

	for subject, a := range bySubject {
		rep.Subjects = append(rep.Subjects, SubjectAverage{
			Subject: subject,
			Average: round2(a.sum / float64(a.count)),
			Count:   a.count,
		})
	}
	sort.Slice(rep.Subjects, func(i, j int) bool { return rep.Subjects[i].Subject < rep.Subjects[j].Subject })

	rep.Count = len(grades)
	rep.Overall = round2(total / float64(len(grades)))
	rep.Passed = rep.Overall >= svc.passMark
	return rep, nil
}

// round2 rounds to the 2 decimals grade values are stored with.
func round2(f float64) float64 { return math.Round(f*100) / 100 }
