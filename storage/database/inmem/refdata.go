package inmemdb

import (
	"context"

	"github.com/nbaobe/portal/core/refdata"
)

type refdataRepository struct {
	db *refTable
}

var _ refdata.Repository = (*refdataRepository)(nil) // interface compliance check

func NewRefdataRepository(db *DB) *refdataRepository {
	return &refdataRepository{db: db.ref}
}

func (repo *refdataRepository) QueryColleges(context.Context) ([]refdata.College, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]refdata.College{}, repo.db.colleges...), nil
}

func (repo *refdataRepository) QueryPrograms(context.Context) ([]refdata.Program, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]refdata.Program{}, repo.db.programs...), nil
}

func (repo *refdataRepository) CreateCollege(_ context.Context, college refdata.College) (refdata.College, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := refdata.FindCollege(repo.db.colleges, college.ID); ok {
		return refdata.College{}, refdata.ErrCollegeExists
	}
	repo.db.colleges = append(repo.db.colleges, college)
	return college, nil
}

func (repo *refdataRepository) CreateProgram(_ context.Context, program refdata.Program) (refdata.Program, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := refdata.FindProgram(repo.db.programs, program.ID); ok {
		return refdata.Program{}, refdata.ErrProgramExists
	}
	repo.db.programs = append(repo.db.programs, program)
	return program, nil
}
