package fixtures

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbaobe/portal/core/login"
	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/user"
	"github.com/nbaobe/portal/tests"
)

func TestDemo(t *testing.T) {
	f, err := Demo()
	require.NoError(t, err)

	assert.True(t, f.QuickLogin)
	require.NotEmpty(t, f.Colleges)
	assert.Equal(t, "CUIET", f.Colleges[0].ID)

	// every shortcut has a user
	usernames := make(map[string]user.NewUser, len(f.Users))
	for _, nu := range f.Users {
		usernames[nu.Username] = nu
	}
	for _, sc := range login.Shortcuts {
		assert.Contains(t, usernames, sc.Username, sc.Label)
	}
	assert.Equal(t, "P_ECE", usernames["pc_ece"].ProgramID)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		want    Fixtures
	}{
		{name: "empty", yaml: ""},
		{
			name: "full",
			yaml: `
colleges: [{id: C1, name: One}]
programs: [{id: P1, name: Prog, college_id: C1}]
users:
  - {id: U1, username: bob, password: pwd, name: Bob, role: Teacher, program_id: P1}
`,
		},
		{name: "unknown key", yaml: "schools: []", wantErr: true},
		{name: "malformed", yaml: "colleges: {", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Load(strings.NewReader(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("failed! err = %v; wantErr %v", err, tt.wantErr)
			}
			if tt.name == "full" {
				assert.Equal(t, "One", f.Colleges[0].Name)
				assert.Equal(t, "C1", f.Programs[0].CollegeID)
				assert.Equal(t, user.NewUser{ID: "U1", Username: "bob", Password: "pwd", Name: "Bob", Role: "Teacher", ProgramID: "P1"}, f.Users[0])
			}
		})
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	srvcs := testutil.NewServices()
	validate := testutil.NewValidator()

	f, err := Demo()
	require.NoError(t, err)

	res, err := Seed(ctx, f, validate, srvcs.RefSvc, srvcs.UserSvc)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Colleges: len(f.Colleges), Programs: len(f.Programs), Users: len(f.Users)}, res)

	pc, err := srvcs.UserSvc.GetByUsername(ctx, "pc_ece")
	require.NoError(t, err)
	assert.True(t, pc.HasQuickLogin())
	assert.NoError(t, pc.CheckPassword("password"))

	// seeding again skips what exists
	res, err = Seed(ctx, f, validate, srvcs.RefSvc, srvcs.UserSvc)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, res)

	t.Run("invalid user", func(t *testing.T) {
		bad := Fixtures{Users: []user.NewUser{{Username: "x", Name: "X", Password: "p", Role: "Student"}}}
		_, err := Seed(ctx, bad, validate, srvcs.RefSvc, srvcs.UserSvc)
		assert.Error(t, err)
	})

	t.Run("program of unknown college", func(t *testing.T) {
		bad := Fixtures{Programs: []refdata.Program{{ID: "P_NEW", Name: "New", CollegeID: "NOPE"}}}
		_, err := Seed(ctx, bad, validate, srvcs.RefSvc, srvcs.UserSvc)
		assert.Error(t, err)
	})
}
