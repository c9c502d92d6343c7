package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/nbaobe/portal/core/refdata"
)

type refdataRepository struct {
	db *sqlx.DB
}

var _ refdata.Repository = (*refdataRepository)(nil) // interface compliance check

func NewRefdataRepository(db *sqlx.DB) *refdataRepository {
	return &refdataRepository{db: db}
}

func (repo *refdataRepository) QueryColleges(ctx context.Context) ([]refdata.College, error) {
	colleges := make([]refdata.College, 0)
	if err := repo.db.SelectContext(ctx, &colleges, `SELECT id, name FROM colleges ORDER BY position`); err != nil {
		return nil, errors.Wrap(err, "selecting colleges")
	}
	return colleges, nil
}

func (repo *refdataRepository) QueryPrograms(ctx context.Context) ([]refdata.Program, error) {
	programs := make([]refdata.Program, 0)
	q := `SELECT id, name, COALESCE(college_id, '') AS college_id FROM programs ORDER BY position`
	if err := repo.db.SelectContext(ctx, &programs, q); err != nil {
		return nil, errors.Wrap(err, "selecting programs")
	}
	return programs, nil
}

func (repo *refdataRepository) CreateCollege(ctx context.Context, college refdata.College) (refdata.College, error) {
	if _, err := repo.db.NamedExecContext(ctx, `INSERT INTO colleges (id, name) VALUES (:id, :name)`, college); err != nil {
		if isUniqueViolation(err) {
			return refdata.College{}, refdata.ErrCollegeExists
		}
		return refdata.College{}, errors.Wrap(err, "inserting college")
	}
	return college, nil
}

func (repo *refdataRepository) CreateProgram(ctx context.Context, program refdata.Program) (refdata.Program, error) {
	q := `INSERT INTO programs (id, name, college_id) VALUES (:id, :name, NULLIF(:college_id, ''))`
	if _, err := repo.db.NamedExecContext(ctx, q, program); err != nil {
		if isUniqueViolation(err) {
			return refdata.Program{}, refdata.ErrProgramExists
		}
		return refdata.Program{}, errors.Wrap(err, "inserting program")
	}
	return program, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}
