package user

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/nbaobe/portal/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")

	// minimum go-difflib ratio for a fuzzy search hit
	searchMinRatio = .6

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(uname string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, exclUsers...); err != nil {
		if err == ErrUsernameExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	id := nu.ID
	if id == "" {
		id = uuid.NewString()
	}
	usr := User{
		ID:        id,
		Username:  nu.Username,
		Name:      nu.Name,
		Role:      nu.Role,
		ProgramID: nu.ProgramID,
		CollegeID: nu.CollegeID,
		IsActive:  true,
		CreatedAt: NowFunc().UTC(),
	}
	if nu.QuickLogin {
		usr.Password = nu.Password
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, core.CleanString(id))
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := NowFunc().UTC()
	usr.LastLogin = &now
	return svc.repo.UpdateUser(ctx, usr)
}

// SetPassword replaces the user's password; a demo quick-login credential is kept in sync.
func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	if usr.Password != "" {
		usr.Password = pwd
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// Search returns the users whose name or username contains term (case-insensitive)
// or is similar enough to it, sorted by name.
func (svc *Service) Search(ctx context.Context, term string) ([]User, error) {
	users, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	term = core.CleanString(term, true /* lower */)

	found := make([]User, 0, len(users))
	for _, usr := range users {
		if term == "" || matches(term, strings.ToLower(usr.Name)) || matches(term, usr.Username) {
			found = append(found, usr)
		}
	}
	SortByName(found)
	return found, nil
}

func matches(term, attr string) bool {
	if strings.Contains(attr, term) {
		return true
	}
	ratio := difflib.NewMatcher(strings.Split(term, ""), strings.Split(attr, "")).Ratio()
	return ratio >= searchMinRatio
}

// SortByName sorts users alphabetically by display name, in place.
func SortByName(users []User) {
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].Name) < strings.ToLower(users[j].Name)
	})
}
