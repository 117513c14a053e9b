package lending

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/clinicore/backend/internal/domain/lending"
	"github.com/clinicore/backend/internal/domain/shared"
)

// MockLoanRepository is a mock implementation of lending.LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByNumber(ctx context.Context, loanNumber string) (*lending.Loan, error) {
	args := m.Called(ctx, loanNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]*lending.Loan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) Count(ctx context.Context, filter lending.LoanFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) NextLoanNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockScheduleRepository is a mock implementation of lending.LoanScheduleRepository
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.LoanSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.LoanSchedule), args.Error(1)
}

func (m *MockScheduleRepository) FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]*lending.LoanSchedule, error) {
	args := m.Called(ctx, loanID)
	// allow expectations to supply the rows lazily, after earlier calls in
	// the same test have mutated them
	if provider, ok := args.Get(0).(func() []*lending.LoanSchedule); ok {
		return provider(), args.Error(1)
	}
	return args.Get(0).([]*lending.LoanSchedule), args.Error(1)
}

func (m *MockScheduleRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*lending.LoanSchedule, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.LoanSchedule), args.Error(1)
}

func (m *MockScheduleRepository) Save(ctx context.Context, schedule *lending.LoanSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) SaveBatch(ctx context.Context, schedules []*lending.LoanSchedule) error {
	args := m.Called(ctx, schedules)
	return args.Error(0)
}

func (m *MockScheduleRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// stubRepos satisfies lending.TransactionalRepositories over the mocks
type stubRepos struct {
	loans     lending.LoanRepository
	schedules lending.LoanScheduleRepository
}

func (r stubRepos) Loans() lending.LoanRepository             { return r.loans }
func (r stubRepos) Schedules() lending.LoanScheduleRepository { return r.schedules }

// stubUnitOfWork runs the callback directly against the stub repositories
type stubUnitOfWork struct {
	repos stubRepos
}

func (u stubUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos lending.TransactionalRepositories) error) error {
	return fn(ctx, u.repos)
}

// recordingPublisher captures published events for assertions
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// fixedClock pins "today" for deterministic status derivation
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
