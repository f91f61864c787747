package professor

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/query"
)

type Professor struct {
	ID         int        `json:"id" db:"id"`
	UserID     *int       `json:"user_id" db:"user_id"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	Email      string     `json:"email" db:"email"`
	Department string     `json:"department" db:"department"`
	HireDate   *time.Time `json:"hire_date" db:"hire_date"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"` // UTC
}

func (p Professor) FullName() string { return p.FirstName + " " + p.LastName }

// Fields lists the fields professors can be filtered and sorted on.
var Fields = query.NewFieldSet[Professor]().
	Add("id", "id", query.Number, func(p Professor) interface{} { return p.ID }).
	Add("user_id", "user_id", query.Number, func(p Professor) interface{} {
		if p.UserID == nil {
			return nil
		}
		return *p.UserID
	}).
	Add("first_name", "first_name", query.String, func(p Professor) interface{} { return p.FirstName }).
	Add("last_name", "last_name", query.String, func(p Professor) interface{} { return p.LastName }).
	Add("email", "email", query.String, func(p Professor) interface{} { return p.Email }).
	Add("department", "department", query.String, func(p Professor) interface{} { return p.Department }).
	Add("hire_date", "hire_date", query.Date, func(p Professor) interface{} {
		if p.HireDate == nil {
			return nil
		}
		return *p.HireDate
	}).
	Add("is_active", "is_active", query.Bool, func(p Professor) interface{} { return p.IsActive }).
	Add("created_at", "created_at", query.Date, func(p Professor) interface{} { return p.CreatedAt })

type NewProfessor struct {
	UserID     *int       `json:"user_id" validate:"omitempty,gt=0"`
	FirstName  string     `json:"first_name" validate:"required,notblank,max=100"`
	LastName   string     `json:"last_name" validate:"required,notblank,max=100"`
	Email      string     `json:"email" validate:"omitempty,email"`
	Department string     `json:"department" validate:"max=100"`
	HireDate   *time.Time `json:"hire_date"`
}

func (np *NewProfessor) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	np.FirstName = core.CleanString(np.FirstName)
	np.LastName = core.CleanString(np.LastName)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.Department = core.CleanString(np.Department)

	if err := validate.Struct(np); err != nil {
		return err
	}
	if np.UserID != nil {
		return svc.CheckUserLink(ctx, *np.UserID)
	}
	return nil
}

// UpdateProfessor holds the fields to change; nil ones are left untouched.
type UpdateProfessor struct {
	UserID     *int       `json:"user_id" validate:"omitempty,gt=0"`
	FirstName  *string    `json:"first_name" validate:"omitempty,notblank,max=100"`
	LastName   *string    `json:"last_name" validate:"omitempty,notblank,max=100"`
	Email      *string    `json:"email" validate:"omitempty,email"`
	Department *string    `json:"department" validate:"omitempty,max=100"`
	HireDate   *time.Time `json:"hire_date"`
	IsActive   *bool      `json:"is_active"`
}

func (up *UpdateProfessor) Validate(ctx context.Context, orig Professor, validate *validator.Validate, svc Service) error {
	for _, s := range []*string{up.FirstName, up.LastName, up.Department} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if up.Email != nil {
		*up.Email = core.CleanString(*up.Email, true /* lower */)
	}

	if err := validate.Struct(up); err != nil {
		return err
	}
	if up.UserID != nil && (orig.UserID == nil || *orig.UserID != *up.UserID) {
		return svc.CheckUserLink(ctx, *up.UserID)
	}
	return nil
}

func (up UpdateProfessor) apply(p Professor) Professor {
	if up.UserID != nil {
		p.UserID = up.UserID
	}
	if up.FirstName != nil {
		p.FirstName = *up.FirstName
	}
	if up.LastName != nil {
		p.LastName = *up.LastName
	}
	if up.Email != nil {
		p.Email = *up.Email
	}
	if up.Department != nil {
		p.Department = *up.Department
	}
	if up.HireDate != nil {
		p.HireDate = up.HireDate
	}
	if up.IsActive != nil {
		p.IsActive = *up.IsActive
	}
	return p
}
