package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
	"github.com/trezcool/schoolrecords/core/user"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func newRegexpMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var studentCols = []string{
	"id", "user_id", "first_name", "last_name", "email", "birth_date", "enrollment_date",
	"year_level", "is_active", "created_at", "updated_at",
}

func TestStudentRepository_QueryStudents(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	spec := query.Spec{
		Page:     1,
		PageSize: 2,
		Filter: query.Filter{Clauses: []query.Clause{
			{Field: student.Fields.MustLookup("year_level"), Operator: query.OpEquals, Value: float64(3)},
		}},
	}

	mock.ExpectQuery("SELECT COUNT(*) FROM students WHERE (year_level = $1::numeric)").
		WithArgs(float64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT " + studentColumns + " FROM students WHERE (year_level = $1::numeric) ORDER BY id ASC LIMIT $2 OFFSET $3").
		WithArgs(float64(3), 2, 0).
		WillReturnRows(sqlmock.NewRows(studentCols).
			AddRow(1, 7, "Ann", "Lee", "ann@school.test", nil, now, 3, true, now, now).
			AddRow(2, nil, "Bob", "Kay", "", now, now, 3, false, now, now))

	students, total, err := repo.QueryStudents(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, students, 2)
	assert.Equal(t, "Ann", students[0].FirstName)
	require.NotNil(t, students[0].UserID)
	assert.Equal(t, 7, *students[0].UserID)
	assert.Nil(t, students[0].BirthDate)
	assert.Nil(t, students[1].UserID)
	assert.False(t, students[1].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetStudentByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT " + studentColumns + " FROM students WHERE id = $1").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(studentCols))

	_, err := repo.GetStudentByID(context.Background(), 42)
	assert.Equal(t, student.ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_CreateStudent(t *testing.T) {
	db, mock := newRegexpMockDB(t)
	repo := NewStudentRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO students \(user_id, first_name, .*\)\s+VALUES \(\$1, \$2, .*\$10\)\s+RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	s, err := repo.CreateStudent(context.Background(), student.Student{
		FirstName:      "Ann",
		LastName:       "Lee",
		EnrollmentDate: now,
		YearLevel:      4,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, s.ID)
	assert.Equal(t, "Ann", s.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_DeleteStudentNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec("DELETE FROM students WHERE id = $1").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.Equal(t, student.ErrNotFound, repo.DeleteStudent(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfessorRepository_DeleteProfessorWithGrades(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfessorRepository(db)

	mock.ExpectExec("DELETE FROM professors WHERE id = $1").
		WithArgs(3).
		WillReturnError(&pq.Error{Code: pgForeignKeyViolation})

	assert.Equal(t, professor.ErrHasGrades, repo.DeleteProfessor(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepository_QueryGradesScoped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGradeRepository(db)
	now := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)

	var spec query.Spec
	spec.Restrict(query.Eq(grade.Fields.MustLookup("student_id"), float64(9)))

	mock.ExpectQuery("SELECT COUNT(*) FROM grades WHERE student_id = $1::numeric").
		WithArgs(float64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT " + gradeColumns + " FROM grades WHERE student_id = $1::numeric ORDER BY id ASC").
		WithArgs(float64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "student_id", "professor_id", "subject", "value", "term", "comments", "recorded_at", "created_at", "updated_at",
		}).AddRow(4, 9, 2, "Math", []byte("87.50"), "T1", nil, now, now, now))

	grades, total, err := repo.QueryGrades(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, grades, 1)
	assert.Equal(t, 87.5, grades[0].Value)
	assert.Nil(t, grades[0].Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CheckUniqueness(t *testing.T) {
	const q = "SELECT " + userColumns + " FROM users" +
		" WHERE ((username <> '' AND username = $1) OR (email <> '' AND email = $2)) AND NOT (id = ANY($3))"
	cols := []string{"id", "name", "username", "email", "is_active", "roles", "password_hash", "created_at", "updated_at", "last_login"}
	now := time.Now().UTC()

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		exclude []user.User
		want    error
	}{
		{
			name: "unique",
			rows: sqlmock.NewRows(cols),
			want: nil,
		},
		{
			name: "username taken",
			rows: sqlmock.NewRows(cols).AddRow(1, "Ann", "ann", "other@school.test", true, "{student:}", []byte("x"), now, now, nil),
			want: user.ErrUsernameExists,
		},
		{
			name:    "email taken",
			rows:    sqlmock.NewRows(cols).AddRow(2, "Bob", nil, "ann@school.test", true, "{}", []byte("x"), now, now, nil),
			exclude: []user.User{{ID: 1}},
			want:    user.ErrEmailExists,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db)

			excl := pq.Int64Array{}
			for _, u := range tc.exclude {
				excl = append(excl, int64(u.ID))
			}
			mock.ExpectQuery(q).WithArgs("ann", "ann@school.test", excl).WillReturnRows(tc.rows)

			err := repo.CheckUniqueness(context.Background(), "ann", "ann@school.test", tc.exclude...)
			assert.Equal(t, tc.want, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetUserByUsernameOrEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT "+userColumns+" FROM users WHERE username = $1 OR email = $1 LIMIT 1").
		WithArgs("ann").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "username", "email", "is_active", "roles", "password_hash", "created_at", "updated_at", "last_login",
		}).AddRow(1, "Ann", "ann", nil, true, "{admin:,teacher:}", []byte("hash"), now, now, now))

	usr, err := repo.GetUserByUsernameOrEmail(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, "ann", usr.Username)
	assert.Equal(t, "", usr.Email)
	assert.Equal(t, []string{"admin:", "teacher:"}, usr.Roles)
	assert.True(t, usr.IsAdmin())
	require.NotNil(t, usr.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = repo.GetUserByUsernameOrEmail(context.Background(), "")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestUserRepository_DeleteUsersByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("DELETE FROM users WHERE id = ANY($1)").
		WithArgs(pq.Int64Array{1, 2}).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteUsersByID(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `100\%\_a\\b`, likeEscaper.Replace(`100%_a\b`))
}
