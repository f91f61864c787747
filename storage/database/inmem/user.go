package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
	"github.com/trezcool/schoolrecords/core/user"
)

type userRepository struct {
	db   *table[user.User]
	root *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user, root: db}
}

func (repo *userRepository) CheckUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	excluded := make(map[int]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}

	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.all() {
		if excluded[usr.ID] {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = repo.db.nextID()
	repo.db.rows[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, spec query.Spec) ([]user.User, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users, total := user.Fields.Apply(repo.db.all(), spec)
	return users, total, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	if usr, ok := repo.db.get(id); ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	if email == "" {
		return user.User{}, user.ErrNotFound
	}
	if usr, ok := repo.db.find(func(u user.User) bool { return u.Email == email }); ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(_ context.Context, username string) (user.User, error) {
	if username == "" {
		return user.User{}, user.ErrNotFound
	}
	usr, ok := repo.db.find(func(u user.User) bool { return u.Username == username || u.Email == username })
	if ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.rows[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	// last login is only set through SetLastLogin
	usr.LastLogin = orig.LastLogin
	usr.CreatedAt = orig.CreatedAt
	repo.db.rows[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, id int, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.rows[id]
	if !ok {
		return user.ErrNotFound
	}
	at = at.UTC()
	usr.LastLogin = &at
	repo.db.rows[id] = usr
	return nil
}

// DeleteUsersByID deletes users and unlinks the students and professors they were linked to.
func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...int) error {
	deleted := make(map[int]bool, len(ids))
	for _, id := range ids {
		if repo.db.delete(id) {
			deleted[id] = true
		}
	}
	if len(deleted) == 0 {
		return nil
	}

	unlink(repo.root.student, deleted, func(s *student.Student) **int { return &s.UserID })
	unlink(repo.root.professor, deleted, func(p *professor.Professor) **int { return &p.UserID })
	return nil
}

func unlink[T any](tbl *table[T], userIDs map[int]bool, userID func(*T) **int) {
	tbl.Lock()
	defer tbl.Unlock()

	for id, row := range tbl.rows {
		ref := userID(&row)
		if *ref != nil && userIDs[**ref] {
			*ref = nil
			tbl.rows[id] = row
		}
	}
}
