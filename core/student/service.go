package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("student not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUserLinked   = errors.New("this user is already linked to a student")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryStudents(ctx context.Context, spec query.Spec) ([]Student, int, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByUserID(ctx context.Context, userID int) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudent(ctx context.Context, id int) error
	}

	Service interface {
		// CheckUserLink checks that userID can be linked to a student.
		CheckUserLink(ctx context.Context, userID int) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Query(ctx context.Context, spec query.Spec) ([]Student, int, error)
		GetByID(ctx context.Context, id int) (Student, error)
		GetByUserID(ctx context.Context, userID int) (Student, error)
		Update(ctx context.Context, s Student, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo    Repository
		userSvc user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, userSvc user.Service) Service {
	return &service{repo: repo, userSvc: userSvc}
}

func (svc *service) CheckUserLink(ctx context.Context, userID int) error {
	invalid := func(err error) error {
		return core.NewValidationError(err, core.FieldError{Field: "user_id", Error: err.Error()})
	}

	if _, err := svc.userSvc.GetByID(ctx, userID); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return invalid(ErrUserNotFound)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	_, err := svc.repo.GetStudentByUserID(ctx, userID)
	switch errors.Cause(err) {
	case nil:
		return invalid(ErrUserLinked)
	case ErrNotFound:
		return nil
	default:
		return errors.Wrap(err, "finding student by user ID")
	}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	return svc.repo.CreateStudent(ctx, Student{
		UserID:         ns.UserID,
		FirstName:      ns.FirstName,
		LastName:       ns.LastName,
		Email:          ns.Email,
		BirthDate:      ns.BirthDate,
		EnrollmentDate: ns.EnrollmentDate.UTC(),
		YearLevel:      ns.YearLevel,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (svc *service) Query(ctx context.Context, spec query.Spec) ([]Student, int, error) {
	return svc.repo.QueryStudents(ctx, spec)
}

func (svc *service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) GetByUserID(ctx context.Context, userID int) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

func (svc *service) Update(ctx context.Context, s Student, us UpdateStudent) (Student, error) {
	s = us.apply(s)
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteStudent(ctx, id)
}
