package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/nbaobe/portal/core/session"
)

const sessionColumns = `id, user_id, username, name, role, college_id, program_id, program_name, batch, created_at`

type sessionStore struct {
	db *sqlx.DB
}

var _ session.Store = (*sessionStore)(nil) // interface compliance check

func NewSessionStore(db *sqlx.DB) *sessionStore {
	return &sessionStore{db: db}
}

func (store *sessionStore) SaveSession(ctx context.Context, sess session.Session) error {
	q := `INSERT INTO sessions (` + sessionColumns + `)
		VALUES (:id, :user_id, :username, :name, :role, :college_id, :program_id, :program_name, :batch, :created_at)`
	if _, err := store.db.NamedExecContext(ctx, q, sess); err != nil {
		return errors.Wrap(err, "inserting session")
	}
	return nil
}

func (store *sessionStore) GetSession(ctx context.Context, id string) (session.Session, error) {
	var sess session.Session
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	if err := store.db.GetContext(ctx, &sess, q, id); err != nil {
		if err == sql.ErrNoRows {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "selecting session")
	}
	return sess, nil
}

func (store *sessionStore) DeleteSession(ctx context.Context, id string) error {
	res, err := store.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (store *sessionStore) DeleteSessionsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := store.db.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < $1`, t)
	if err != nil {
		return 0, errors.Wrap(err, "deleting expired sessions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting expired sessions")
	}
	return n, nil
}
