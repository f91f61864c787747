package grade

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
)

type Grade struct {
	ID          int       `json:"id" db:"id"`
	StudentID   int       `json:"student_id" db:"student_id"`
	ProfessorID int       `json:"professor_id" db:"professor_id"`
	Subject     string    `json:"subject" db:"subject"`
	Value       float64   `json:"value" db:"value"`
	Term        string    `json:"term" db:"term"`
	Comments    *string   `json:"comments" db:"comments"`
	RecordedAt  time.Time `json:"recorded_at" db:"recorded_at"` // UTC
	CreatedAt   time.Time `json:"created_at" db:"created_at"`   // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`   // UTC
}

// Fields lists the fields grades can be filtered and sorted on.
var Fields = query.NewFieldSet[Grade]().
	Add("id", "id", query.Number, func(g Grade) interface{} { return g.ID }).
	Add("student_id", "student_id", query.Number, func(g Grade) interface{} { return g.StudentID }).
	Add("professor_id", "professor_id", query.Number, func(g Grade) interface{} { return g.ProfessorID }).
	Add("subject", "subject", query.String, func(g Grade) interface{} { return g.Subject }).
	Add("value", "value", query.Number, func(g Grade) interface{} { return g.Value }).
	Add("term", "term", query.String, func(g Grade) interface{} { return g.Term }).
	Add("recorded_at", "recorded_at", query.Date, func(g Grade) interface{} { return g.RecordedAt })

// NewGrade contains information needed to record a Grade.
type NewGrade struct {
	StudentID   int        `json:"student_id" validate:"required,gt=0"`
	ProfessorID int        `json:"professor_id" validate:"required,gt=0"`
	Subject     string     `json:"subject" validate:"required,notblank,max=100"`
	Value       *float64   `json:"value" validate:"required,min=0,max=100"`
	Term        string     `json:"term" validate:"max=20"`
	Comments    *string    `json:"comments" validate:"omitempty,max=1000"`
	RecordedAt  *time.Time `json:"recorded_at"` // defaults to now
}

func (ng *NewGrade) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	ng.Subject = core.CleanString(ng.Subject)
	ng.Term = core.CleanString(ng.Term)

	if err := validate.Struct(ng); err != nil {
		return err
	}
	return svc.CheckRefs(ctx, ng.StudentID, ng.ProfessorID)
}

// UpdateGrade holds the fields to change; nil ones are left untouched.
// The student and professor of a grade cannot change.
type UpdateGrade struct {
	Subject    *string    `json:"subject" validate:"omitempty,notblank,max=100"`
	Value      *float64   `json:"value" validate:"omitempty,min=0,max=100"`
	Term       *string    `json:"term" validate:"omitempty,max=20"`
	Comments   *string    `json:"comments" validate:"omitempty,max=1000"`
	RecordedAt *time.Time `json:"recorded_at"`
}

func (ug *UpdateGrade) Validate(validate *validator.Validate) error {
	if ug.Subject != nil {
		*ug.Subject = core.CleanString(*ug.Subject)
	}
	if ug.Term != nil {
		*ug.Term = core.CleanString(*ug.Term)
	}
	return validate.Struct(ug)
}

func (ug UpdateGrade) apply(g Grade) Grade {
	if ug.Subject != nil {
		g.Subject = *ug.Subject
	}
	if ug.Value != nil {
		g.Value = *ug.Value
	}
	if ug.Term != nil {
		g.Term = *ug.Term
	}
	if ug.Comments != nil {
		g.Comments = ug.Comments
	}
	if ug.RecordedAt != nil {
		g.RecordedAt = ug.RecordedAt.UTC()
	}
	return g
}

type SubjectAverage struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Report sums up the grades of a student.
type Report struct {
	Student  student.Student  `json:"student"`
	Subjects []SubjectAverage `json:"subjects"`
	Overall  float64          `json:"overall"`
	Count    int              `json:"count"`
	PassMark float64          `json:"pass_mark"`
	Passed   bool             `json:"passed"`
}
