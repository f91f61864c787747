package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/student"
	"github.com/trezcool/schoolrecords/core/user"
)

// NopLogger is a core.Logger recording error messages only.
type NopLogger struct{ Errors []string }

func (l *NopLogger) Debug(string, ...interface{}) {}
func (l *NopLogger) Info(string, ...interface{}) {}
func (l *NopLogger) Warn(string, ...interface{}) {}
func (l *NopLogger) Error(msg string, _ ...interface{}) { l.Errors = append(l.Errors, msg) }
func (l *NopLogger) Fatal(msg string, _ ...interface{}) { l.Errors = append(l.Errors, msg) }

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if roles == nil {
		roles = []string{}
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, first, last string, yearLevel int, userID *int) student.Student {
	t.Helper()
	now := time.Now().UTC()
	s, err := repo.CreateStudent(context.Background(), student.Student{
		UserID:         userID,
		FirstName:      first,
		LastName:       last,
		EnrollmentDate: time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC),
		YearLevel:      yearLevel,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return s
}

func CreateProfessor(t *testing.T, repo professor.Repository, first, last, department string, userID *int) professor.Professor {
	t.Helper()
	now := time.Now().UTC()
	p, err := repo.CreateProfessor(context.Background(), professor.Professor{
		UserID:     userID,
		FirstName:  first,
		LastName:   last,
		Department: department,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("createProfessor() failed: %v", err)
	}
	return p
}

func CreateGrade(t *testing.T, repo grade.Repository, studentID, professorID int, subject string, value float64) grade.Grade {
	t.Helper()
	now := time.Now().UTC()
	g, err := repo.CreateGrade(context.Background(), grade.Grade{
		StudentID:   studentID,
		ProfessorID: professorID,
		Subject:     subject,
		Value:       value,
		Term:        "T1",
		RecordedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("createGrade() failed: %v", err)
	}
	return g
}
