package professor

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
	ErrNotFound     = errors.New("professor not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUserLinked   = errors.New("this user is already linked to a professor")
	ErrHasGrades    = errors.New("professor has recorded grades")
)

type (
	Repository interface {
		CreateProfessor(ctx context.Context, p Professor) (Professor, error)
		QueryProfessors(ctx context.Context, spec query.Spec) ([]Professor, int, error)
		GetProfessorByID(ctx context.Context, id int) (Professor, error)
		GetProfessorByUserID(ctx context.Context, userID int) (Professor, error)
		UpdateProfessor(ctx context.Context, p Professor) (Professor, error)
		// DeleteProfessor returns ErrHasGrades when grades still reference the professor.
		DeleteProfessor(ctx context.Context, id int) error
	}

	Service interface {
		CheckUserLink(ctx context.Context, userID int) error
		Create(ctx context.Context, np NewProfessor) (Professor, error)
		Query(ctx context.Context, spec query.Spec) ([]Professor, int, error)
		GetByID(ctx context.Context, id int) (Professor, error)
		GetByUserID(ctx context.Context, userID int) (Professor, error)
		Update(ctx context.Context, p Professor, up UpdateProfessor) (Professor, error)
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
	_, err := svc.repo.GetProfessorByUserID(ctx, userID)
	switch errors.Cause(err) {
	case nil:
		return invalid(ErrUserLinked)
	case ErrNotFound:
		return nil
	default:
		return errors.Wrap(err, "finding professor by user ID")
	}
}

func (svc *service) Create(ctx context.Context, np NewProfessor) (Professor, error) {
	now := time.Now().UTC()
	return svc.repo.CreateProfessor(ctx, Professor{
		UserID:     np.UserID,
		FirstName:  np.FirstName,
		LastName:   np.LastName,
		Email:      np.Email,
		Department: np.Department,
		HireDate:   np.HireDate,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *service) Query(ctx context.Context, spec query.Spec) ([]Professor, int, error) {
	return svc.repo.QueryProfessors(ctx, spec)
}

func (svc *service) GetByID(ctx context.Context, id int) (Professor, error) {
	return svc.repo.GetProfessorByID(ctx, id)
}

func (svc *service) GetByUserID(ctx context.Context, userID int) (Professor, error) {
	return svc.repo.GetProfessorByUserID(ctx, userID)
}

func (svc *service) Update(ctx context.Context, p Professor, up UpdateProfessor) (Professor, error) {
	p = up.apply(p)
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfessor(ctx, p)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	err := svc.repo.DeleteProfessor(ctx, id)
	if errors.Cause(err) == ErrHasGrades {
		return core.NewValidationError(err)
	}
	return err
}
