// Package session authenticates users for the login screen and keeps their sessions.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/login"
	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")
	ErrNoLogin  = errors.New("no successful login to commit")

	NowFunc = time.Now // mockable
)

type (
	// Session is what a logged in user works with until logout.
	Session struct {
		ID          string    `json:"id" db:"id"`
		UserID      string    `json:"user_id" db:"user_id"`
		Username    string    `json:"username" db:"username"`
		Name        string    `json:"name" db:"name"`
		Role        string    `json:"role" db:"role"`
		CollegeID   string    `json:"college_id" db:"college_id"`
		ProgramID   string    `json:"program_id,omitempty" db:"program_id"`
		ProgramName string    `json:"program_name,omitempty" db:"program_name"`
		Batch       string    `json:"batch,omitempty" db:"batch"`
		CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	}

	Store interface {
		SaveSession(ctx context.Context, sess Session) error
		GetSession(ctx context.Context, id string) (Session, error)
		DeleteSession(ctx context.Context, id string) error
		// DeleteSessionsBefore removes the sessions created before t and returns how many it removed.
		DeleteSessionsBefore(ctx context.Context, t time.Time) (int64, error)
	}

	Service struct {
		users  *user.Service
		refs   *refdata.Service
		store  Store
		logger core.Logger
		ttl    time.Duration // zero keeps sessions until logout
	}

	Option func(*Service)
)

// WithTTL expires sessions ttl after they were committed.
func WithTTL(ttl time.Duration) Option {
	return func(svc *Service) {
		svc.ttl = ttl
	}
}

func NewService(users *user.Service, refs *refdata.Service, store Store, logger core.Logger, opts ...Option) *Service {
	svc := &Service{users: users, refs: refs, store: store, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Snapshot loads the reference data the login screen works with.
func (svc *Service) Snapshot(ctx context.Context) (login.Data, error) {
	colleges, err := svc.refs.Colleges(ctx)
	if err != nil {
		return login.Data{}, pkgerrors.Wrap(err, "loading colleges")
	}
	programs, err := svc.refs.Programs(ctx)
	if err != nil {
		return login.Data{}, pkgerrors.Wrap(err, "loading programs")
	}
	users, err := svc.users.QueryAll(ctx)
	if err != nil {
		return login.Data{}, pkgerrors.Wrap(err, "loading users")
	}
	return login.Data{Colleges: colleges, Users: users, Programs: programs}, nil
}

// NewContext returns the login.App for one request.
func (svc *Service) NewContext(ctx context.Context) (*Context, error) {
	data, err := svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Context{svc: svc, data: data}, nil
}

// Commit stores the session of the last successful login made with c.
func (svc *Service) Commit(ctx context.Context, c *Context) (Session, error) {
	if c == nil || c.pending == nil {
		return Session{}, ErrNoLogin
	}
	sess := *c.pending
	sess.ID = uuid.NewString()
	sess.CreatedAt = NowFunc().UTC()
	if err := svc.store.SaveSession(ctx, sess); err != nil {
		return Session{}, pkgerrors.Wrap(err, "saving session")
	}

	if svc.ttl > 0 {
		if _, err := svc.store.DeleteSessionsBefore(ctx, sess.CreatedAt.Add(-svc.ttl)); err != nil {
			svc.logger.Error("pruning expired sessions", err)
		}
	}
	return sess, nil
}

// Get returns an unexpired session; expired ones are deleted and reported as ErrNotFound.
func (svc *Service) Get(ctx context.Context, id string) (Session, error) {
	sess, err := svc.store.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if svc.expired(sess) {
		if err = svc.End(ctx, id); err != nil {
			svc.logger.Error("deleting expired session", err)
		}
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (svc *Service) expired(sess Session) bool {
	return svc.ttl > 0 && !sess.CreatedAt.After(NowFunc().UTC().Add(-svc.ttl))
}

// End deletes the session; ending an unknown session is not an error.
func (svc *Service) End(ctx context.Context, id string) error {
	if err := svc.store.DeleteSession(ctx, id); err != nil && err != ErrNotFound {
		return err
	}
	return nil
}

// Context implements login.App on top of the Service, for a single request.
type Context struct {
	svc     *Service
	data    login.Data
	pending *Session
}

var _ login.App = (*Context)(nil) // interface compliance check

// Login checks the credentials; the college must be one of the loaded colleges.
func (c *Context) Login(ctx context.Context, username, password, college string) (bool, error) {
	if _, ok := refdata.FindCollege(c.data.Colleges, college); !ok {
		return false, nil
	}

	usr, err := c.svc.users.GetByUsername(ctx, username)
	if err != nil {
		if err == user.ErrNotFound {
			return false, nil
		}
		return false, pkgerrors.Wrap(err, "fetching user")
	}
	if !usr.IsActive || usr.CheckPassword(password) != nil {
		return false, nil
	}

	if _, err = c.svc.users.SetLastLogin(ctx, usr); err != nil {
		c.svc.logger.Error("setting last login", err, usr.Person())
	}

	c.pending = &Session{
		UserID:    usr.ID,
		Username:  usr.Username,
		Name:      usr.Name,
		Role:      usr.Role,
		CollegeID: college,
	}
	return true, nil
}

// SetProgramAndBatch preselects the program and batch of the logged in user.
func (c *Context) SetProgramAndBatch(program refdata.Program, batch string) {
	if c.pending == nil {
		return
	}
	c.pending.ProgramID = program.ID
	c.pending.ProgramName = program.Name
	c.pending.Batch = batch
}

func (c *Context) Data() login.Data {
	return c.data
}

// Pending returns the session built by the last successful login, if any.
func (c *Context) Pending() (Session, bool) {
	if c.pending == nil {
		return Session{}, false
	}
	return *c.pending, true
}
