package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/query"
)

const (
	MinYearLevel = 1
	MaxYearLevel = 13
)

type Student struct {
	ID             int        `json:"id" db:"id"`
	UserID         *int       `json:"user_id" db:"user_id"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	Email          string     `json:"email" db:"email"`
	BirthDate      *time.Time `json:"birth_date" db:"birth_date"`
	EnrollmentDate time.Time  `json:"enrollment_date" db:"enrollment_date"`
	YearLevel      int        `json:"year_level" db:"year_level"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"` // UTC
}

func (s Student) FullName() string { return s.FirstName + " " + s.LastName }

// Fields lists the fields students can be filtered and sorted on.
var Fields = query.NewFieldSet[Student]().
	Add("id", "id", query.Number, func(s Student) interface{} { return s.ID }).
	Add("user_id", "user_id", query.Number, func(s Student) interface{} {
		if s.UserID == nil {
			return nil
		}
		return *s.UserID
	}).
	Add("first_name", "first_name", query.String, func(s Student) interface{} { return s.FirstName }).
	Add("last_name", "last_name", query.String, func(s Student) interface{} { return s.LastName }).
	Add("email", "email", query.String, func(s Student) interface{} { return s.Email }).
	Add("birth_date", "birth_date", query.Date, func(s Student) interface{} {
		if s.BirthDate == nil {
			return nil
		}
		return *s.BirthDate
	}).
	Add("enrollment_date", "enrollment_date", query.Date, func(s Student) interface{} { return s.EnrollmentDate }).
	Add("year_level", "year_level", query.Number, func(s Student) interface{} { return s.YearLevel }).
	Add("is_active", "is_active", query.Bool, func(s Student) interface{} { return s.IsActive }).
	Add("created_at", "created_at", query.Date, func(s Student) interface{} { return s.CreatedAt })

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	UserID         *int       `json:"user_id" validate:"omitempty,gt=0"`
	FirstName      string     `json:"first_name" validate:"required,notblank,max=100"`
	LastName       string     `json:"last_name" validate:"required,notblank,max=100"`
	Email          string     `json:"email" validate:"omitempty,email"`
	BirthDate      *time.Time `json:"birth_date"`
	EnrollmentDate time.Time  `json:"enrollment_date" validate:"required"`
	YearLevel      int        `json:"year_level" validate:"required,min=1,max=13"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.UserID != nil {
		return svc.CheckUserLink(ctx, *ns.UserID)
	}
	return nil
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Nil fields are left untouched.
type UpdateStudent struct {
	UserID         *int       `json:"user_id" validate:"omitempty,gt=0"`
	FirstName      *string    `json:"first_name" validate:"omitempty,notblank,max=100"`
	LastName       *string    `json:"last_name" validate:"omitempty,notblank,max=100"`
	Email          *string    `json:"email" validate:"omitempty,email"`
	BirthDate      *time.Time `json:"birth_date"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
	YearLevel      *int       `json:"year_level" validate:"omitempty,min=1,max=13"`
	IsActive       *bool      `json:"is_active"`
}

func (us *UpdateStudent) Validate(ctx context.Context, orig Student, validate *validator.Validate, svc Service) error {
	if us.FirstName != nil {
		*us.FirstName = core.CleanString(*us.FirstName)
	}
	if us.LastName != nil {
		*us.LastName = core.CleanString(*us.LastName)
	}
	if us.Email != nil {
		*us.Email = core.CleanString(*us.Email, true /* lower */)
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	if us.UserID != nil && (orig.UserID == nil || *orig.UserID != *us.UserID) {
		return svc.CheckUserLink(ctx, *us.UserID)
	}
	return nil
}

func (us UpdateStudent) apply(s Student) Student {
	if us.UserID != nil {
		s.UserID = us.UserID
	}
	if us.FirstName != nil {
		s.FirstName = *us.FirstName
	}
	if us.LastName != nil {
		s.LastName = *us.LastName
	}
	if us.Email != nil {
		s.Email = *us.Email
	}
	if us.BirthDate != nil {
		s.BirthDate = us.BirthDate
	}
	if us.EnrollmentDate != nil {
		s.EnrollmentDate = *us.EnrollmentDate
	}
	if us.YearLevel != nil {
		s.YearLevel = *us.YearLevel
	}
	if us.IsActive != nil {
		s.IsActive = *us.IsActive
	}
	return s
}
