package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/clinicore/backend/internal/domain/lending"
)

// GormUnitOfWork implements lending.UnitOfWork on top of a GORM transaction.
// All repositories handed to the callback share the same transaction, so a
// row lock taken through one of them holds for the whole unit.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos lending.TransactionalRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &transactionalRepositories{
			loans:     NewGormLoanRepository(tx),
			schedules: NewGormLoanScheduleRepository(tx),
		})
	})
}

type transactionalRepositories struct {
	loans     *GormLoanRepository
	schedules *GormLoanScheduleRepository
}

func (t *transactionalRepositories) Loans() lending.LoanRepository {
	return t.loans
}

func (t *transactionalRepositories) Schedules() lending.LoanScheduleRepository {
	return t.schedules
}

var _ lending.UnitOfWork = (*GormUnitOfWork)(nil)
