package inmemdb

import (
	"context"
	"time"

	"github.com/nbaobe/portal/core/session"
)

type sessionStore struct {
	db *sessionTable
}

var _ session.Store = (*sessionStore)(nil) // interface compliance check

func NewSessionStore(db *DB) *sessionStore {
	return &sessionStore{db: db.session}
}

func (store *sessionStore) SaveSession(_ context.Context, sess session.Session) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()
	store.db.table[sess.ID] = sess
	return nil
}

func (store *sessionStore) GetSession(_ context.Context, id string) (session.Session, error) {
	store.db.mutex.RLock()
	defer store.db.mutex.RUnlock()

	if sess, ok := store.db.table[id]; ok {
		return sess, nil
	}
	return session.Session{}, session.ErrNotFound
}

func (store *sessionStore) DeleteSession(_ context.Context, id string) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()

	if _, ok := store.db.table[id]; !ok {
		return session.ErrNotFound
	}
	delete(store.db.table, id)
	return nil
}

func (store *sessionStore) DeleteSessionsBefore(_ context.Context, t time.Time) (int64, error) {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()

	var n int64
	for id, sess := range store.db.table {
		if sess.CreatedAt.Before(t) {
			delete(store.db.table, id)
			n++
		}
	}
	return n, nil
}
