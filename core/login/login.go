// Package login implements the login screen: the credential form and the demo quick logins.
package login

import (
	"context"
	"errors"

	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/user"
)

const (
	// DefaultCollege is selected when no college is loaded.
	DefaultCollege = "CUIET"
	// QuickLoginCollege is the college every quick login is made against.
	QuickLoginCollege = "CUIET"
	// DemoBatch is the batch preselected for the demo program co-ordinator.
	DemoBatch = "2025-2029"

	HomePath = "/"
)

// inline messages
const (
	MsgInvalidCredentials = "Invalid username or password."
	MsgUserNotFound       = "Could not find user or password."
	MsgQuickLoginFailed   = "Quick login failed for %s."
	MsgUnavailable        = "Login is temporarily unavailable. Please try again."
)

var ErrUnknownCollege = errors.New("unknown college")

type (
	// Data is the read-only reference snapshot the screen works with.
	Data struct {
		Colleges []refdata.College `json:"colleges"`
		Users    []user.User       `json:"-"`
		Programs []refdata.Program `json:"programs"`
	}

	// App is the authentication service the screen delegates to.
	App interface {
		// Login reports whether the credentials are valid for the college.
		// A non-nil error means the check could not be made.
		Login(ctx context.Context, username, password, college string) (bool, error)
		SetProgramAndBatch(program refdata.Program, batch string)
		Data() Data
	}

	Navigator interface {
		Navigate(path string)
	}

	// NavigatorFunc adapts a function to a Navigator.
	NavigatorFunc func(path string)

	// PostLoginHook runs after a successful quick login, before navigating.
	PostLoginHook func(ctx context.Context, app App, usr *user.User)
)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// FindUserByUsername returns the user with the given username in the snapshot.
func (d Data) FindUserByUsername(username string) *user.User {
	for i := range d.Users {
		if d.Users[i].Username == username {
			usr := d.Users[i]
			return &usr
		}
	}
	return nil
}

// FindUserByID returns the user with the given id in the snapshot.
func (d Data) FindUserByID(id string) *user.User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			usr := d.Users[i]
			return &usr
		}
	}
	return nil
}

// ProgramBatchHook preselects the user's program, looked up by ProgramID, with the given batch.
// Nothing happens when the program is unknown.
func ProgramBatchHook(batch string) PostLoginHook {
	return func(_ context.Context, app App, usr *user.User) {
		if program, ok := refdata.FindProgram(app.Data().Programs, usr.ProgramID); ok {
			app.SetProgramAndBatch(program, batch)
		}
	}
}

// DefaultPostLoginHooks preselects the demo batch for the demo program co-ordinator.
func DefaultPostLoginHooks(batch string) map[string]PostLoginHook {
	if batch == "" {
		batch = DemoBatch
	}
	return map[string]PostLoginHook{
		"pc_ece": ProgramBatchHook(batch),
	}
}
