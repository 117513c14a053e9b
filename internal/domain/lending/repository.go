package lending

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicore/backend/internal/domain/shared"
)

// LoanFilter narrows loan listings beyond the shared pagination filter.
type LoanFilter struct {
	shared.Filter
	Status       *LoanStatus
	BorrowerType *BorrowerType
}

// LoanRepository is the persistence port for loan aggregates.
type LoanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	FindByNumber(ctx context.Context, loanNumber string) (*Loan, error)
	// FindByIDForUpdate acquires a row lock on the loan for the duration of
	// the surrounding transaction, serializing mutations per loan.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error)
	FindAll(ctx context.Context, filter LoanFilter) ([]*Loan, error)
	Count(ctx context.Context, filter LoanFilter) (int64, error)
	Save(ctx context.Context, loan *Loan) error
	NextLoanNumber(ctx context.Context) (string, error)
}

// LoanScheduleRepository is the persistence port for schedule rows.
type LoanScheduleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LoanSchedule, error)
	FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]*LoanSchedule, error)
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*LoanSchedule, error)
	Save(ctx context.Context, schedule *LoanSchedule) error
	SaveBatch(ctx context.Context, schedules []*LoanSchedule) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// UnitOfWork runs fn inside a single database transaction. Repositories
// obtained through the callback's accessors share that transaction, so a
// FindByIDForUpdate lock held at the start covers every write in fn.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the lending repositories bound to the
// unit of work's transaction.
type TransactionalRepositories interface {
	Loans() LoanRepository
	Schedules() LoanScheduleRepository
}
