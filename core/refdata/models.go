package refdata

// College is an institution users log in to.
type College struct {
	ID   string `json:"id" db:"id" yaml:"id" validate:"required"`
	Name string `json:"name" db:"name" yaml:"name" validate:"required"`
}

// Program is an academic program offered by a College.
type Program struct {
	ID        string `json:"id" db:"id" yaml:"id" validate:"required"`
	Name      string `json:"name" db:"name" yaml:"name" validate:"required"`
	CollegeID string `json:"college_id" db:"college_id" yaml:"college_id"`
}

// FindCollege returns the College with the given id.
func FindCollege(colleges []College, id string) (College, bool) {
	for _, c := range colleges {
		if c.ID == id {
			return c, true
		}
	}
	return College{}, false
}

// FindProgram returns the Program with the given id.
func FindProgram(programs []Program, id string) (Program, bool) {
	if id == "" {
		return Program{}, false
	}
	for _, p := range programs {
		if p.ID == id {
			return p, true
		}
	}
	return Program{}, false
}
