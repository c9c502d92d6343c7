// Package fixtures loads reference data and users from YAML files.
package fixtures

import (
	"bytes"
	"context"
	_ "embed"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nbaobe/portal/core"
	"github.com/nbaobe/portal/core/refdata"
	"github.com/nbaobe/portal/core/user"
)

//go:embed demo.yaml
var demoYAML []byte

type Fixtures struct {
	// QuickLogin keeps the users' passwords as quick login credentials.
	QuickLogin bool              `yaml:"quick_login"`
	Colleges   []refdata.College `yaml:"colleges"`
	Programs   []refdata.Program `yaml:"programs"`
	Users      []user.NewUser    `yaml:"users"`
}

// Load decodes fixtures; unknown keys are rejected.
func Load(r io.Reader) (Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return Fixtures{}, errors.Wrap(err, "decoding fixtures")
	}
	return f, nil
}

func LoadFile(path string) (Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fixtures{}, errors.Wrap(err, "opening fixtures")
	}
	defer func() { _ = file.Close() }()
	return Load(file)
}

// Demo returns the built-in demo data.
func Demo() (Fixtures, error) {
	return Load(bytes.NewReader(demoYAML))
}

// SeedResult counts what Seed created; existing records are skipped.
type SeedResult struct {
	Colleges int
	Programs int
	Users    int
}

// Seed creates the colleges, then the programs, then the users of f.
func Seed(ctx context.Context, f Fixtures, validate *validator.Validate, refSvc *refdata.Service, usrSvc *user.Service) (SeedResult, error) {
	var res SeedResult

	for _, c := range f.Colleges {
		if _, err := refSvc.CreateCollege(ctx, validate, c); err != nil {
			if errors.Cause(err) == refdata.ErrCollegeExists {
				continue
			}
			return res, errors.Wrapf(err, "creating college %q", c.ID)
		}
		res.Colleges++
	}

	for _, p := range f.Programs {
		if _, err := refSvc.CreateProgram(ctx, validate, p); err != nil {
			if errors.Cause(err) == refdata.ErrProgramExists {
				continue
			}
			return res, errors.Wrapf(err, "creating program %q", p.ID)
		}
		res.Programs++
	}

	for _, nu := range f.Users {
		if _, err := usrSvc.GetByUsername(ctx, nu.Username); err == nil {
			continue
		} else if err != user.ErrNotFound {
			return res, errors.Wrapf(err, "fetching user %q", nu.Username)
		}

		nu.QuickLogin = nu.QuickLogin || f.QuickLogin
		if err := nu.Validate(validate, usrSvc); err != nil {
			return res, errors.Wrapf(describe(err), "validating user %q", nu.Username)
		}
		if _, err := usrSvc.Create(ctx, nu); err != nil {
			return res, errors.Wrapf(err, "creating user %q", nu.Username)
		}
		res.Users++
	}
	return res, nil
}

// describe flattens validator errors into a readable error.
func describe(err error) error {
	vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return err
	}
	flds := make([]core.FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		flds = append(flds, core.FieldError{Field: fe.Field(), Error: fe.Tag()})
	}
	return core.NewValidationError(nil, flds...)
}
