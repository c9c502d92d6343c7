package refdata

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/nbaobe/portal/core"
)

var (
	// errors
	ErrNotFound      = errors.New("reference data not found")
	ErrCollegeExists = errors.New("a college with this id already exists")
	ErrProgramExists = errors.New("a program with this id already exists")
)

type (
	Repository interface {
		QueryColleges(ctx context.Context) ([]College, error)
		QueryPrograms(ctx context.Context) ([]Program, error)
		CreateCollege(ctx context.Context, college College) (College, error)
		CreateProgram(ctx context.Context, program Program) (Program, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Colleges returns every college in insertion order.
func (svc *Service) Colleges(ctx context.Context) ([]College, error) {
	return svc.repo.QueryColleges(ctx)
}

func (svc *Service) Programs(ctx context.Context) ([]Program, error) {
	return svc.repo.QueryPrograms(ctx)
}

func (svc *Service) College(ctx context.Context, id string) (College, error) {
	colleges, err := svc.repo.QueryColleges(ctx)
	if err != nil {
		return College{}, err
	}
	if c, ok := FindCollege(colleges, id); ok {
		return c, nil
	}
	return College{}, ErrNotFound
}

func (svc *Service) Program(ctx context.Context, id string) (Program, error) {
	programs, err := svc.repo.QueryPrograms(ctx)
	if err != nil {
		return Program{}, err
	}
	if p, ok := FindProgram(programs, id); ok {
		return p, nil
	}
	return Program{}, ErrNotFound
}

func (svc *Service) CreateCollege(ctx context.Context, validate *validator.Validate, c College) (College, error) {
	c.ID = core.CleanString(c.ID)
	c.Name = core.CleanString(c.Name)
	if err := validate.Struct(c); err != nil {
		return College{}, err
	}
	return svc.repo.CreateCollege(ctx, c)
}

func (svc *Service) CreateProgram(ctx context.Context, validate *validator.Validate, p Program) (Program, error) {
	p.ID = core.CleanString(p.ID)
	p.Name = core.CleanString(p.Name)
	p.CollegeID = core.CleanString(p.CollegeID)
	if err := validate.Struct(p); err != nil {
		return Program{}, err
	}
	if p.CollegeID != "" {
		if _, err := svc.College(ctx, p.CollegeID); err != nil {
			if err == ErrNotFound {
				return Program{}, core.NewValidationError(nil, core.FieldError{Field: "college_id", Error: "unknown college"})
			}
			return Program{}, err
		}
	}
	return svc.repo.CreateProgram(ctx, p)
}
