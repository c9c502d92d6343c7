package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/nbaobe/portal/core"
)

// Roles
const (
	RoleAdmin              = "Administrator"
	RoleDepartment         = "Department"
	RoleProgramCoordinator = "Program Co-ordinator"
	RoleTeacher            = "Teacher"
)

var (
	AllRoles = []string{RoleAdmin, RoleDepartment, RoleProgramCoordinator, RoleTeacher}

	rolePriorities = map[string]int{
		RoleAdmin:              40,
		RoleDepartment:         30,
		RoleProgramCoordinator: 20,
		RoleTeacher:            10,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

type User struct {
	ID        string `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	Name      string `json:"name" db:"name"`
	Role      string `json:"role" db:"role"`
	ProgramID string `json:"program_id,omitempty" db:"program_id"`
	CollegeID string `json:"college_id,omitempty" db:"college_id"`
	IsActive  bool   `json:"is_active" db:"is_active"`

	// Password is the demo credential used by quick logins; only seeded demo users carry one.
	Password     string `json:"-" db:"demo_password"`
	PasswordHash []byte `json:"-" db:"password_hash"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"` // UTC
	LastLogin *time.Time `json:"last_login,omitempty" db:"last_login"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// HasQuickLogin reports whether the user can be logged in without typing credentials.
func (u *User) HasQuickLogin() bool {
	return u != nil && u.Password != ""
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) Person() core.Person {
	return core.Person{ID: u.ID, Username: u.Username}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	Username  string `json:"username" yaml:"username" validate:"required,min=3,alphanum_"`
	Password  string `json:"password" yaml:"password" validate:"required"`
	Role      string `json:"role" yaml:"role" validate:"required,role"`
	ProgramID string `json:"program_id" yaml:"program_id"`
	CollegeID string `json:"college_id" yaml:"college_id"`

	// QuickLogin keeps Password as the demo quick-login credential.
	QuickLogin bool `json:"quick_login" yaml:"quick_login"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.ProgramID = core.CleanString(nu.ProgramID)
	nu.CollegeID = core.CleanString(nu.CollegeID)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Username)
}

// QuickLoginOption is one entry of the "select any user" dropdown.
type QuickLoginOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (u User) QuickLoginOption() QuickLoginOption {
	return QuickLoginOption{ID: u.ID, Label: u.Name + " (" + u.Role + ")"}
}
