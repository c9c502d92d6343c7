package login

import "github.com/nbaobe/portal/core/user"

// QuickSelectPlaceholder is the label of the dropdown's empty entry.
const QuickSelectPlaceholder = "-- Select a User --"

// Shortcut is a one-click demo login.
type Shortcut struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Username string `json:"username"`
}

var (
	ShortcutTeacher    = Shortcut{Key: "teacher", Label: "Teacher (ECE)", Username: "teacher_ece1"}
	ShortcutPC         = Shortcut{Key: "pc", Label: "PC (ECE)", Username: "pc_ece"}
	ShortcutDepartment = Shortcut{Key: "department", Label: "Department", Username: "dept_cuiet"}
	ShortcutAdmin      = Shortcut{Key: "admin", Label: "Admin", Username: "admin"}

	// Shortcuts in display order.
	Shortcuts = []Shortcut{ShortcutTeacher, ShortcutPC, ShortcutDepartment, ShortcutAdmin}
)

func ShortcutByKey(key string) (Shortcut, bool) {
	for _, s := range Shortcuts {
		if s.Key == key {
			return s, true
		}
	}
	return Shortcut{}, false
}

// SortedQuickLoginOptions lists users by display name (case-insensitive, stable).
// users is left untouched.
func SortedQuickLoginOptions(users []user.User) []user.QuickLoginOption {
	sorted := make([]user.User, len(users))
	copy(sorted, users)
	user.SortByName(sorted)

	opts := make([]user.QuickLoginOption, 0, len(sorted))
	for _, usr := range sorted {
		opts = append(opts, usr.QuickLoginOption())
	}
	return opts
}
