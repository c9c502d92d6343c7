package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/user"
	"github.com/nbaobe/portal/storage/database/inmem"
	"github.com/nbaobe/portal/tests"
)

func newService() (*user.Service, user.Repository) {
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return user.NewService(repo), repo
}

func TestNewUser_Validate(t *testing.T) {
	validate := testutil.NewValidator()
	svc, repo := newService()
	testutil.CreateUser(t, repo, "1", "Admin", "admin", "x", user.RoleAdmin, true, true)

	tests := []struct {
		name       string
		nu         user.NewUser
		wantFields []string
	}{
		{name: "valid", nu: user.NewUser{Name: "Bob", Username: " Bob_1 ", Password: "pwd", Role: user.RoleTeacher}},
		{name: "missing fields", nu: user.NewUser{}, wantFields: []string{"name", "username", "password", "role"}},
		{name: "short username", nu: user.NewUser{Name: "Bob", Username: "bo", Password: "pwd", Role: user.RoleTeacher}, wantFields: []string{"username"}},
		{name: "bad username", nu: user.NewUser{Name: "Bob", Username: "bob-1", Password: "pwd", Role: user.RoleTeacher}, wantFields: []string{"username"}},
		{name: "bad role", nu: user.NewUser{Name: "Bob", Username: "bob", Password: "pwd", Role: "Student"}, wantFields: []string{"role"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(validate, svc)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			fields := core.TranslateFieldErrors(err.(validator.ValidationErrors), core.NewTranslator())
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
			assert.Len(t, fields, len(tt.wantFields))
		})
	}

	t.Run("username taken", func(t *testing.T) {
		nu := user.NewUser{Name: "Other", Username: "ADMIN", Password: "pwd", Role: user.RoleTeacher}
		err := nu.Validate(validate, svc)

		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "want *core.ValidationError; got %T", err)
		assert.Equal(t, []core.FieldError{{Field: "username", Error: user.ErrUsernameExists.Error()}}, vErr.Fields)
	})
}

func TestService_Create(t *testing.T) {
	svc, _ := newService()
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	user.NowFunc = func() time.Time { return now }
	defer func() { user.NowFunc = time.Now }()

	t.Run("quick login", func(t *testing.T) {
		usr, err := svc.Create(context.Background(), user.NewUser{
			ID: "U1", Name: "PC", Username: "pc_ece", Password: "pwd", Role: user.RoleProgramCoordinator,
			ProgramID: "P_ECE", QuickLogin: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "U1", usr.ID)
		assert.True(t, usr.IsActive)
		assert.Equal(t, now, usr.CreatedAt)
		assert.Equal(t, "pwd", usr.Password)
		assert.True(t, usr.HasQuickLogin())
		assert.NoError(t, usr.CheckPassword("pwd"))
	})

	t.Run("regular", func(t *testing.T) {
		usr, err := svc.Create(context.Background(), user.NewUser{Name: "T", Username: "teacher", Password: "pwd", Role: user.RoleTeacher})
		require.NoError(t, err)
		assert.NotEmpty(t, usr.ID)
		assert.Empty(t, usr.Password)
		assert.False(t, usr.HasQuickLogin())
		assert.Error(t, usr.CheckPassword("wrong"))
	})
}

func TestService_GetByUsername(t *testing.T) {
	svc, repo := newService()
	admin := testutil.CreateUser(t, repo, "1", "Admin", "admin", "x", user.RoleAdmin, true, true)

	got, err := svc.GetByUsername(context.Background(), "  AdMin ")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	_, err = svc.GetByUsername(context.Background(), "nobody")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_SetLastLogin(t *testing.T) {
	svc, repo := newService()
	admin := testutil.CreateUser(t, repo, "1", "Admin", "admin", "x", user.RoleAdmin, true, true)
	assert.Nil(t, admin.LastLogin)

	usr, err := svc.SetLastLogin(context.Background(), admin)
	require.NoError(t, err)
	require.NotNil(t, usr.LastLogin)

	stored, _ := svc.GetByID(context.Background(), "1")
	assert.Equal(t, usr.LastLogin, stored.LastLogin)
}

func TestService_SetPassword(t *testing.T) {
	svc, repo := newService()
	quick := testutil.CreateUser(t, repo, "1", "Admin", "admin", "x", user.RoleAdmin, true, true)
	plain := testutil.CreateUser(t, repo, "2", "Teacher", "teacher", "x", user.RoleTeacher, true, false)

	usr, err := svc.SetPassword(context.Background(), quick, "new")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("new"))
	assert.Equal(t, "new", usr.Password)

	usr, err = svc.SetPassword(context.Background(), plain, "new")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("new"))
	assert.Empty(t, usr.Password)
}

func TestService_Search(t *testing.T) {
	svc, repo := newService()
	amit := testutil.CreateUser(t, repo, "1", "Amit Singh", "teacher_ece1", "x", user.RoleTeacher, true, true)
	meera := testutil.CreateUser(t, repo, "2", "Dr. Meera Sharma", "dept_cuiet", "x", user.RoleDepartment, true, true)
	admin := testutil.CreateUser(t, repo, "3", "administrator", "admin", "x", user.RoleAdmin, true, true)

	tests := []struct {
		term string
		want []user.User
	}{
		{term: "", want: []user.User{admin, amit, meera}},
		{term: "MEERA", want: []user.User{meera}},
		{term: "teacher", want: []user.User{amit}},
		{term: "admn", want: []user.User{admin}}, // fuzzy
		{term: "zzzz", want: []user.User{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := svc.Search(context.Background(), tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRolePriority(t *testing.T) {
	assert.Greater(t, user.RolePriority(user.RoleAdmin), user.RolePriority(user.RoleDepartment))
	assert.Greater(t, user.RolePriority(user.RoleDepartment), user.RolePriority(user.RoleProgramCoordinator))
	assert.Greater(t, user.RolePriority(user.RoleProgramCoordinator), user.RolePriority(user.RoleTeacher))
	assert.Zero(t, user.RolePriority("Student"))
}

func TestUser_QuickLoginOption(t *testing.T) {
	usr := user.User{ID: "1", Name: "Amit Singh", Role: user.RoleTeacher}
	assert.Equal(t, user.QuickLoginOption{ID: "1", Label: "Amit Singh (Teacher)"}, usr.QuickLoginOption())

	var nilUsr *user.User
	assert.False(t, nilUsr.HasQuickLogin())
}
