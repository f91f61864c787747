package inmemdb

import (
	"sort"
	"sync"

	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/student"
	"github.com/trezcool/schoolrecords/core/user"
)

type (
	// DB is an in-memory store, used by tests and for local development.
	DB struct {
		user      *table[user.User]
		student   *table[student.Student]
		professor *table[professor.Professor]
		grade     *table[grade.Grade]
	}

	table[T any] struct {
		sync.RWMutex
		rows  map[int]T
		pkSeq int
	}
)

func Open() *DB {
	return &DB{
		user:      newTable[user.User](),
		student:   newTable[student.Student](),
		professor: newTable[professor.Professor](),
		grade:     newTable[grade.Grade](),
	}
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int]T)}
}

// nextID must be called with the write lock held.
func (t *table[T]) nextID() int {
	t.pkSeq++
	return t.pkSeq
}

// all returns the rows ordered by primary key, the default order of every query.
// Must be called with a lock held.
func (t *table[T]) all() []T {
	ids := make([]int, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	rows := make([]T, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, t.rows[id])
	}
	return rows
}

// find returns the first row, in primary key order, matching pred.
func (t *table[T]) find(pred func(T) bool) (T, bool) {
	t.RLock()
	defer t.RUnlock()

	for _, row := range t.all() {
		if pred(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) get(id int) (T, bool) {
	t.RLock()
	defer t.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

// replace overwrites an existing row and reports whether it existed.
func (t *table[T]) replace(id int, row T) bool {
	t.Lock()
	defer t.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = row
	return true
}

func (t *table[T]) delete(id int) bool {
	t.Lock()
	defer t.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}
