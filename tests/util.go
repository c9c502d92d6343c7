package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/login"
	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/user"
	"github.com/nbaobe/portal/storage/database/inmem"
)

// NewValidator returns a validator with every custom tag registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	login.InitValidators(validate, translator)
	return validate
}

// Services groups the services backed by one in-memory DB.
type Services struct {
	DB      *inmemdb.DB
	UserSvc *user.Service
	RefSvc  *refdata.Service
}

func NewServices() Services {
	db := inmemdb.Open()
	return Services{
		DB:      db,
		UserSvc: user.NewService(inmemdb.NewUserRepository(db)),
		RefSvc:  refdata.NewService(inmemdb.NewRefdataRepository(db)),
	}
}

// CreateUser stores a user directly; pwd doubles as its quick login credential when quick is set.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	id, name, uname, pwd, role string,
	isActive, quick bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        id,
		Name:      name,
		Username:  uname,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
		if quick {
			usr.Password = pwd
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateCollege stores a college, failing the test on error.
func CreateCollege(t *testing.T, repo refdata.Repository, id, name string) refdata.College {
	c, err := repo.CreateCollege(context.Background(), refdata.College{ID: id, Name: name})
	if err != nil {
		t.Fatalf("createCollege() failed: %v", err)
	}
	return c
}

// CreateProgram stores a program, failing the test on error.
func CreateProgram(t *testing.T, repo refdata.Repository, id, name, collegeID string) refdata.Program {
	p, err := repo.CreateProgram(context.Background(), refdata.Program{ID: id, Name: name, CollegeID: collegeID})
	if err != nil {
		t.Fatalf("createProgram() failed: %v", err)
	}
	return p
}
