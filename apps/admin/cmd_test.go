package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/nbaobe/portal/core/user"
	inmemdb "github.com/nbaobe/portal/storage/database/inmem"
	"github.com/nbaobe/portal/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	svcs := testutil.NewServices()
	usrRepo = inmemdb.NewUserRepository(svcs.DB)

	return &commandLine{
		usrSvc:   svcs.UserSvc,
		refSvc:   svcs.RefSvc,
		validate: testutil.NewValidator(),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	anyErr     bool
	extra      interface{}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
		}
	case tt.wantErr != nil:
		if errors.Cause(err) != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "migrate: in memory", args: []string{"migrate", "up"}, wantErr: errNoDatabase},
		{name: "seed: no file", args: []string{"seed"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	defer db.Close()
	cli.db = db

	origMigrate := migrateFunc
	defer func() { migrateFunc = origMigrate }()

	migrateFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	fp := filepath.Join(t.TempDir(), "fixtures.yaml")
	data := []byte(`
colleges:
  - id: CUIET
    name: Chitkara University Institute of Engineering and Technology
programs:
  - id: P_ECE
    name: B.E. Electronics and Communication Engineering
    college_id: CUIET
users:
  - username: hod
    password: secret
    name: Dr. Head
    role: Department
    college_id: CUIET
`)
	if err := os.WriteFile(fp, data, 0o600); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	tests := []cliTest{
		{name: "missing file", args: []string{"seed", "-file", filepath.Join(t.TempDir(), "nope.yaml")}, anyErr: true},
		{name: "seed", args: []string{"seed", "-file", fp}},
		{name: "seed again", args: []string{"seed", "-file", fp}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.anyErr {
				assert.Error(t, err)
				return
			}
			checkErr(t, tt, err)
		})
	}

	colleges, err := cli.refSvc.Colleges(context.Background())
	if err != nil {
		t.Fatalf("Colleges() failed: %v", err)
	}
	assert.Len(t, colleges, 1)

	usr, err := cli.usrSvc.GetByUsername(context.Background(), "hod")
	if err != nil {
		t.Fatalf("GetByUsername() failed: %v", err)
	}
	assert.NoError(t, usr.CheckPassword("secret"))
	assert.False(t, usr.HasQuickLogin())
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	testutil.CreateUser(t, usrRepo, "U1", "Taken", "taken", "pwd", user.RoleTeacher, true, false)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "missing role", args: []string{"adduser", "-username", "newbie", "-name", "New"}, extra: extra{pwd: "pwd"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-username", "newbie", "-name", "New", "-role", user.RoleTeacher}, wantErr: errHelp},
		{
			name: "invalid role", args: []string{"adduser", "-username", "newbie", "-name", "New", "-role", "Dean"},
			extra: extra{pwd: "pwd"}, anyErr: true,
		},
		{
			name: "username taken", args: []string{"adduser", "-username", "taken", "-name", "New", "-role", user.RoleTeacher},
			extra: extra{pwd: "pwd"}, anyErr: true,
		},
		{
			name: "create", args: []string{"adduser", "-username", "NewBie", "-name", "New Bie", "-role", user.RoleProgramCoordinator, "-program", "P_ECE", "-college", "CUIET"},
			extra: extra{pwd: "pwd"},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.anyErr {
				assert.Error(t, err)
				return
			}
			checkErr(t, tt, err)
		})
	}

	usr, err := cli.usrSvc.GetByUsername(context.Background(), "newbie")
	if err != nil {
		t.Fatalf("GetByUsername() failed: %v", err)
	}
	assert.Equal(t, "New Bie", usr.Name)
	assert.Equal(t, user.RoleProgramCoordinator, usr.Role)
	assert.Equal(t, "P_ECE", usr.ProgramID)
	assert.Equal(t, "CUIET", usr.CollegeID)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("pwd"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "U1", "User", "awe", "mdr", user.RoleTeacher, true, false)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset (case-insensitive)", args: []string{"resetpassword", "-username", " AWE "}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkErr(t, tt, err)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
				assert.NoError(t, refreshedUsr.CheckPassword(pwd))
			}
		})
	}
}
