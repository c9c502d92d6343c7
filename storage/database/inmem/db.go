package inmemdb

import (
	"sync"

	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/session"
	"github.com/nbaobe/portal/core/user"
)

type (
	DB struct {
		user    *userTable
		ref     *refTable
		session *sessionTable
	}

	userTable struct {
		table map[string]*user.User
		order []string // insertion order
		mutex sync.RWMutex
	}

	refTable struct {
		colleges []refdata.College
		programs []refdata.Program
		mutex    sync.RWMutex
	}

	sessionTable struct {
		table map[string]session.Session
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		ref:     &refTable{},
		session: &sessionTable{table: make(map[string]session.Session)},
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.order = nil
	db.user.mutex.Unlock()

	db.ref.mutex.Lock()
	db.ref.colleges, db.ref.programs = nil, nil
	db.ref.mutex.Unlock()

	db.session.mutex.Lock()
	db.session.table = make(map[string]session.Session)
	db.session.mutex.Unlock()
}
