package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/user"
)

const (
	userTable   = "users"
	userColumns = "id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login"
)

type userRow struct {
	ID           int            `db:"id"`
	Name         string         `db:"name"`
	Username     sql.NullString `db:"username"`
	Email        sql.NullString `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    *time.Time     `db:"last_login"`
}

func (r userRow) user() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive,
		Roles:        []string(r.Roles),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	if r.LastLogin != nil {
		ll := r.LastLogin.UTC()
		usr.LastLogin = &ll
	}
	return usr
}

// nullable stores empty usernames and emails as NULL so that they escape the unique indexes.
func nullable(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) user.Repository {
	return &userRepository{exec: exec}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo *userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) get(ctx context.Context, msg, where string, args ...interface{}) (user.User, error) {
	var row userRow
	q := "SELECT " + userColumns + " FROM " + userTable + " WHERE " + where + " LIMIT 1"
	if err := repo.exec.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, msg)
	}
	return row.user(), nil
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excl := make(pq.Int64Array, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		excl = append(excl, int64(u.ID))
	}

	var rows []userRow
	q := "SELECT " + userColumns + " FROM " + userTable +
		" WHERE ((username <> '' AND username = $1) OR (email <> '' AND email = $2)) AND NOT (id = ANY($3))"
	if err := repo.exec.SelectContext(ctx, &rows, q, username, email, excl); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, r := range rows {
		if username != "" && r.Username.String == username {
			return user.ErrUsernameExists
		}
	}
	if len(rows) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO ` + userTable + ` (name, username, email, is_active, roles, password_hash, created_at, updated_at)
	VALUES (:name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at)
	RETURNING id`
	q, args, err := sqlx.Named(q, toUserRow(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "binding user")
	}
	if err = repo.exec.GetContext(ctx, &usr.ID, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, spec query.Spec) ([]user.User, int, error) {
	var rows []userRow
	total, err := querySpec(ctx, repo.exec, &rows, userColumns, userTable, spec)
	if err != nil {
		return nil, 0, err
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users, total, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.get(ctx, "finding user by ID", "id = $1", id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if email == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.get(ctx, "finding user by email", "email = $1", email)
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	if username == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.get(ctx, "finding user by username or email", "username = $1 OR email = $1", username)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE ` + userTable + ` SET name = :name, username = :username, email = :email,
	is_active = :is_active, roles = :roles, password_hash = :password_hash, updated_at = :updated_at
	WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.exec, q, toUserRow(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id int, at time.Time) error {
	if _, err := repo.exec.ExecContext(ctx, "UPDATE "+userTable+" SET last_login = $1 WHERE id = $2", at.UTC(), id); err != nil {
		return errors.Wrap(err, "setting last login")
	}
	return nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	arr := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, int64(id))
	}
	if _, err := repo.exec.ExecContext(ctx, "DELETE FROM "+userTable+" WHERE id = ANY($1)", arr); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func toUserRow(usr user.User) userRow {
	roles := pq.StringArray(usr.Roles)
	if roles == nil {
		roles = pq.StringArray{}
	}
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     nullable(usr.Username),
		Email:        nullable(usr.Email),
		IsActive:     usr.IsActive,
		Roles:        roles,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    usr.LastLogin,
	}
}
